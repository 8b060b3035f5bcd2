package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Demo fills the database with a believable blog: users, categories, posts
// spread over the last three months, and a mix of approved and pending
// comments. Safe to call repeatedly; it is a no-op once posts exist.
func Demo(db *gorm.DB, opts Options) error {
	opts = opts.withDefaults()

	var existing int64
	if err := db.Model(&models.Post{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if existing > 0 {
		log.Printf("seed: %d posts already present, skipping demo seed", existing)
		return nil
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}
	// One staff account so moderation can be demonstrated.
	if _, err := f.CreateUser(func(u *models.User) {
		u.IsStaff = true
	}); err != nil {
		return fmt.Errorf("seed staff user: %w", err)
	}

	categories := make([]models.Category, 0, opts.Categories)
	for i := 0; i < opts.Categories; i++ {
		cat, err := f.CreateCategory()
		if err != nil {
			return fmt.Errorf("seed category: %w", err)
		}
		categories = append(categories, *cat)
	}

	for i := 0; i < opts.Posts; i++ {
		author := users[f.rng.Intn(len(users))]
		// one or two categories per post
		cats := []models.Category{categories[f.rng.Intn(len(categories))]}
		if f.rng.Intn(2) == 0 {
			other := categories[f.rng.Intn(len(categories))]
			if other.ID != cats[0].ID {
				cats = append(cats, other)
			}
		}

		post, err := f.CreatePost(author, cats)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}

		for j := 0; j < f.rng.Intn(opts.CommentsPerPost+1); j++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	log.Printf("seed: created %d users, %d categories, %d posts", opts.Users+1, opts.Categories, opts.Posts)
	return nil
}
