package models

import "time"

// Post represents a blog post.
//
// Slug is derived from the title the first time the record is saved and is
// never regenerated afterwards, even when the title changes. URLs stay stable
// at the cost of a possibly stale slug.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Slug     string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	ImageURL string `json:"image_url,omitempty"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	Categories []Category `gorm:"many2many:post_categories" json:"categories"`

	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->" json:"comments_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetailURL returns the canonical API path for the post.
func (p *Post) DetailURL() string {
	return "/api/posts/" + p.Slug
}
