// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, query string) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	ReplaceCategories(ctx context.Context, post *models.Post, categories []models.Category) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePostLists(ctx)
	return nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(slug)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.applyCommentsCount(r.db.WithContext(ctx)).
			Preload("Author").
			Preload("Categories").
			Where("posts.slug = ?", slug).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applySearch(r.applyCommentsCount(r.db.WithContext(ctx)), query).
		Preload("Author").
		Preload("Categories").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.applySearch(r.db.WithContext(ctx).Model(&models.Post{}), query).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// applySearch adds the case-insensitive substring match over title and
// content. LOWER + LIKE behaves the same on PostgreSQL and sqlite, unlike
// ILIKE.
func (r *postRepository) applySearch(db *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return db
	}
	like := "%" + strings.ToLower(query) + "%"
	return db.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", like, like)
}

// applyCommentsCount selects posts plus the number of visible comments in a
// single query. Only moderated comments count.
func (r *postRepository) applyCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.is_moderated) as comments_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Categories").Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) ReplaceCategories(ctx context.Context, post *models.Post, categories []models.Category) error {
	if err := r.db.WithContext(ctx).Model(post).Association("Categories").Replace(categories); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

// Delete removes a post, its comments, and its category join rows in one
// transaction so the delete also works on databases without enforced foreign
// keys.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_categories WHERE post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}
