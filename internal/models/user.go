// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account. Staff and superusers may moderate
// comments; everyone else only owns their own posts and comments.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email       string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Posts    []Post    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Comments []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// CanModerate reports whether the user may approve comments.
func (u *User) CanModerate() bool {
	return u.IsStaff || u.IsSuperuser
}
