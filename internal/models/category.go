package models

import "time"

// Category is a shared reference vocabulary for posts. It has no owner and
// no lifecycle beyond create/read.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Posts []Post `gorm:"many2many:post_categories" json:"-"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
