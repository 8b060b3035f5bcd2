package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
)

// ErrEmptyComment marks a comment submission with no text. Callers redirect
// back to the post without saving anything and without surfacing an error.
var ErrEmptyComment = errors.New("comment text is empty")

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifier    *notifications.Notifier
}

type CreateCommentInput struct {
	UserID uint
	Slug   string
	Text   string
}

type ModerateCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// CreateComment stores a new comment awaiting moderation. The author alert is
// sent before returning: delivery problems are logged inside the notifier and
// never reach the commenter.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyComment
	}

	comment := &models.Comment{
		Text:        in.Text,
		IsModerated: false,
		PostID:      post.ID,
		UserID:      in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if user, userErr := s.userRepo.GetByID(ctx, in.UserID); userErr == nil {
		comment.User = *user
	}

	s.notifier.NewCommentAlert(ctx, post, comment)

	return comment, nil
}

// ModerateComment approves a pending comment, making it publicly visible.
// Restricted to staff and superusers. Approval is one way.
func (s *CommentService) ModerateComment(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CanModerate() {
		return nil, models.NewForbiddenError("Only staff can moderate comments")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if !comment.IsModerated {
		if err := s.commentRepo.Moderate(ctx, comment.ID); err != nil {
			return nil, err
		}
		comment.IsModerated = true
		// The visible comment count on the post just changed.
		cache.InvalidatePost(ctx, comment.Post.Slug)
	}

	return comment, nil
}
