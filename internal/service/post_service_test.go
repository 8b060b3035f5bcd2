package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPostService(postRepo *MockPostRepository, catRepo *MockCategoryRepository, commentRepo *MockCommentRepository, mailer *recordingMailer, subscribers []string) *PostService {
	notifier := notifications.NewNotifier(mailer, subscribers, "http://localhost:8086")
	return NewPostService(postRepo, catRepo, commentRepo, notifier)
}

func TestCreatePost_DerivesSlugFromTitle(t *testing.T) {
	postRepo := new(MockPostRepository)
	catRepo := new(MockCategoryRepository)
	commentRepo := new(MockCommentRepository)
	mailer := &recordingMailer{}
	svc := newPostService(postRepo, catRepo, commentRepo, mailer, nil)

	var captured *models.Post
	postRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*models.Post)
		captured.ID = 1
	}).Return(nil)
	postRepo.On("GetBySlug", mock.Anything, "hello-world").Return(&models.Post{
		ID:     1,
		Title:  "Hello World",
		Slug:   "hello-world",
		Author: models.User{Username: "alice"},
	}, nil)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Title:    "Hello World",
		Content:  "First post body",
	})
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "hello-world", captured.Slug)
	assert.Equal(t, "hello-world", post.Slug)
}

func TestCreatePost_ValidationFailsBeforeRepo(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"missing title", CreatePostInput{AuthorID: 1, Content: "body"}},
		{"missing content", CreatePostInput{AuthorID: 1, Title: "Title"}},
		{"title produces no slug", CreatePostInput{AuthorID: 1, Title: "!!!", Content: "body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tt.input)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
	postRepo.AssertNotCalled(t, "Create")
}

func TestCreatePost_UnknownCategoryRejected(t *testing.T) {
	postRepo := new(MockPostRepository)
	catRepo := new(MockCategoryRepository)
	svc := newPostService(postRepo, catRepo, new(MockCommentRepository), &recordingMailer{}, nil)

	catRepo.On("GetByIDs", mock.Anything, []uint{1, 99}).Return([]models.Category{{ID: 1, Name: "golang"}}, nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID:    1,
		Title:       "Hello",
		Content:     "body",
		CategoryIDs: []uint{1, 99},
	})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	postRepo.AssertNotCalled(t, "Create")
}

func TestCreatePost_BroadcastFailureSurfacesAfterSave(t *testing.T) {
	postRepo := new(MockPostRepository)
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), mailer, []string{"sub@example.com"})

	postRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	postRepo.On("GetBySlug", mock.Anything, "hello").Return(&models.Post{
		ID: 1, Title: "Hello", Slug: "hello",
	}, nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Title:    "Hello",
		Content:  "body",
	})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeMailDelivery, appErr.Code)
	// The post was saved before the broadcast was attempted.
	postRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdatePost_OnlyAuthorMayEdit(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	postRepo.On("GetBySlug", mock.Anything, "hello-world").Return(&models.Post{
		ID: 1, Slug: "hello-world", AuthorID: 2,
	}, nil)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 1,
		Slug:   "hello-world",
		Title:  "Edited",
	})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	postRepo.AssertNotCalled(t, "Update")
}

func TestUpdatePost_SlugStaysFrozenWhenTitleChanges(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	existing := &models.Post{ID: 1, Title: "Hello World", Slug: "hello-world", AuthorID: 1}
	postRepo.On("GetBySlug", mock.Anything, "hello-world").Return(existing, nil)

	var updated *models.Post
	postRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.Post)
	}).Return(nil)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  1,
		Slug:    "hello-world",
		Title:   "A Completely Different Title",
		Content: "new body",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "A Completely Different Title", updated.Title)
	assert.Equal(t, "hello-world", updated.Slug)
}

func TestDeletePost_OnlyAuthorMayDelete(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	postRepo.On("GetBySlug", mock.Anything, "hello-world").Return(&models.Post{
		ID: 1, Slug: "hello-world", AuthorID: 2,
	}, nil)

	err := svc.DeletePost(context.Background(), 1, "hello-world")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeForbidden, appErr.Code)
	postRepo.AssertNotCalled(t, "Delete")
}

func TestListPosts_DefaultsPageSize(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	postRepo.On("List", mock.Anything, "", DefaultPageSize, 0).Return([]*models.Post{}, nil)
	postRepo.On("Count", mock.Anything, "").Return(int64(0), nil)

	page, err := svc.ListPosts(context.Background(), ListPostsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}

func TestListPosts_CacheKeyedByPageSize(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	postRepo := new(MockPostRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), new(MockCommentRepository), &recordingMailer{}, nil)

	postRepo.On("List", mock.Anything, "", 50, 0).
		Return([]*models.Post{{ID: 1}, {ID: 2}}, nil).Once()
	postRepo.On("List", mock.Anything, "", DefaultPageSize, 0).
		Return([]*models.Post{{ID: 1}}, nil).Once()
	postRepo.On("Count", mock.Anything, "").Return(int64(2), nil)

	wide, err := svc.ListPosts(context.Background(), ListPostsInput{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, wide.PageSize)
	assert.Len(t, wide.Posts, 2)

	// Same page with the default size must not be served from the wide
	// page's cache entry.
	narrow, err := svc.ListPosts(context.Background(), ListPostsInput{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, narrow.PageSize)
	assert.Len(t, narrow.Posts, 1)
	postRepo.AssertNumberOfCalls(t, "List", 2)
}

func TestGetPost_IncludesOnlyModeratedComments(t *testing.T) {
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	svc := newPostService(postRepo, new(MockCategoryRepository), commentRepo, &recordingMailer{}, nil)

	postRepo.On("GetBySlug", mock.Anything, "hello-world").Return(&models.Post{ID: 1, Slug: "hello-world"}, nil)
	commentRepo.On("ListModeratedByPost", mock.Anything, uint(1)).Return([]*models.Comment{
		{ID: 2, Text: "approved", IsModerated: true},
	}, nil)

	detail, err := svc.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.True(t, detail.Comments[0].IsModerated)
}
