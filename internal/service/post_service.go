// Package service holds the business rules between handlers and repositories.
package service

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
)

// DefaultPageSize matches the classic six-posts-per-page listing.
const DefaultPageSize = 6

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	commentRepo  repository.CommentRepository
	notifier     *notifications.Notifier
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Content     string
	ImageURL    string
	CategoryIDs []uint
}

type UpdatePostInput struct {
	UserID      uint
	Slug        string
	Title       string
	Content     string
	ImageURL    string
	CategoryIDs []uint
}

type ListPostsInput struct {
	Query    string
	Page     int
	PageSize int
}

// PostPage is one page of the post listing.
type PostPage struct {
	Posts    []*models.Post `json:"posts"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// PostDetail is a post together with its visible comments.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	commentRepo repository.CommentRepository,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		commentRepo:  commentRepo,
		notifier:     notifier,
	}
}

// CreatePost publishes a new post. The slug is derived from the title here,
// once, and never changes afterwards. The subscriber broadcast is synchronous:
// if it fails, the post stays saved but the caller gets the delivery error.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	slug := validation.Slugify(in.Title)
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError("Title does not produce a usable URL slug")
	}

	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Slug:       slug,
		ImageURL:   in.ImageURL,
		AuthorID:   in.AuthorID,
		Categories: categories,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Reload to pick up the author for the response and the alert body.
	created, err := s.postRepo.GetBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NewPostAlert(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// ListPosts returns one page of posts, optionally filtered by a
// case-insensitive substring match over title and content.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = DefaultPageSize
	}

	var page PostPage
	key := cache.PostsListKey(in.Query, in.Page, in.PageSize)
	err := cache.Aside(ctx, key, &page, cache.ListTTL, func() error {
		offset := (in.Page - 1) * in.PageSize
		posts, err := s.postRepo.List(ctx, in.Query, in.PageSize, offset)
		if err != nil {
			return err
		}
		total, err := s.postRepo.Count(ctx, in.Query)
		if err != nil {
			return err
		}
		page = PostPage{Posts: posts, Total: total, Page: in.Page, PageSize: in.PageSize}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPost returns a post with its moderated comments. Pending comments are
// invisible to everyone, including their authors.
func (s *PostService) GetPost(ctx context.Context, slug string) (*PostDetail, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListModeratedByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// UpdatePost edits a post's title, content, image, and categories. Only the
// author may edit, and the slug keeps its original value regardless of title
// changes.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.ImageURL = in.ImageURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if in.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceCategories(ctx, post, categories); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetBySlug(ctx, post.Slug)
}

// DeletePost removes a post and its comments. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, userID uint, slug string) error {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post)
}

func (s *PostService) resolveCategories(ctx context.Context, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	categories, err := s.categoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(uniqueIDs(ids)) {
		return nil, models.NewValidationError("One or more categories do not exist")
	}
	return categories, nil
}

func validatePostFields(title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
