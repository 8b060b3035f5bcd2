package models

import "time"

// Comment represents a reader comment on a post. A comment exists in storage
// immediately on submission but is invisible to readers until a staff member
// flips IsModerated. The transition is one-way: there is no un-moderation.
type Comment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Text        string `gorm:"type:text;not null" json:"text"`
	IsModerated bool   `gorm:"not null;default:false;index" json:"is_moderated"`

	PostID uint `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`

	CreatedAt time.Time `json:"created_at"`
}
