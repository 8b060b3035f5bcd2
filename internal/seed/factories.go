// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options tune demo data generation.
type Options struct {
	Users      int
	Categories int
	Posts      int
	// CommentsPerPost is the maximum; each post gets a random count up to it.
	CommentsPerPost int
	// SkipBcrypt stores plaintext passwords for faster local seeding.
	SkipBcrypt bool
}

func (o Options) withDefaults() Options {
	if o.Users <= 0 {
		o.Users = 8
	}
	if o.Categories <= 0 {
		o.Categories = 5
	}
	if o.Posts <= 0 {
		o.Posts = 24
	}
	if o.CommentsPerPost <= 0 {
		o.CommentsPerPost = 4
	}
	return o
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts.withDefaults(),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory persists a category with a unique generated name.
func (f *Factory) CreateCategory(overrides ...func(*models.Category)) (*models.Category, error) {
	category := &models.Category{
		Name: fmt.Sprintf("%s %d", gofakeit.BuzzWord(), gofakeit.Number(10, 9999)),
	}
	for _, override := range overrides {
		override(category)
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreatePost persists a post authored by user, attached to the given
// categories. The slug comes from the title, the same way the API derives it.
func (f *Factory) CreatePost(user *models.User, categories []models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	title := fmt.Sprintf("%s %d", gofakeit.Sentence(4), gofakeit.Number(10, 9999))
	post := &models.Post{
		Title:      title,
		Content:    gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Slug:       validation.Slugify(title),
		ImageURL:   fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		AuthorID:   user.ID,
		Categories: categories,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post by user. Roughly two thirds of
// generated comments are pre-approved so listings have visible content.
func (f *Factory) CreateComment(post *models.Post, user *models.User, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:        gofakeit.Sentence(12),
		IsModerated: f.rng.Intn(3) != 0,
		PostID:      post.ID,
		UserID:      user.ID,
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
