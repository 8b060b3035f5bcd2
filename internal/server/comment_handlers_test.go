package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func postJSON(app *fiber.App, path string, payload any) (*http.Response, error) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return app.Test(req)
}

func TestCreateComment_EmptyTextRedirectsWithoutSaving(t *testing.T) {
	s, deps := newTestServer(nil)
	app := authedApp(3)
	app.Post("/api/posts/:slug/comments", s.CreateComment)

	deps.postRepo.On("GetBySlug", mock.Anything, "hello-world").
		Return(&models.Post{ID: 1, Slug: "hello-world"}, nil)

	resp, err := postJSON(app, "/api/posts/hello-world/comments", map[string]string{"text": "   "})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/posts/hello-world", resp.Header.Get("Location"))
	deps.commentRepo.AssertNotCalled(t, "Create")
}

func TestCreateComment_MalformedBodyRedirectsWithoutSaving(t *testing.T) {
	s, deps := newTestServer(nil)
	app := authedApp(3)
	app.Post("/api/posts/:slug/comments", s.CreateComment)

	deps.postRepo.On("GetBySlug", mock.Anything, "hello-world").
		Return(&models.Post{ID: 1, Slug: "hello-world"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/hello-world/comments",
		bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/posts/hello-world", resp.Header.Get("Location"))
	deps.commentRepo.AssertNotCalled(t, "Create")
}

func TestCreateComment_HeldForModeration(t *testing.T) {
	s, deps := newTestServer(nil)
	app := authedApp(3)
	app.Post("/api/posts/:slug/comments", s.CreateComment)

	deps.postRepo.On("GetBySlug", mock.Anything, "hello-world").
		Return(&models.Post{
			ID:     1,
			Slug:   "hello-world",
			Title:  "Hello World",
			Author: models.User{ID: 2, Username: "alice", Email: "alice@example.com"},
		}, nil)
	deps.commentRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Comment).ID = 7
	}).Return(nil)
	deps.userRepo.On("GetByID", mock.Anything, uint(3)).
		Return(&models.User{ID: 3, Username: "bob"}, nil)

	resp, err := postJSON(app, "/api/posts/hello-world/comments", map[string]string{"text": "Great post"})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comment))
	assert.False(t, comment.IsModerated)

	// The author alert goes out before the response.
	deps.mailer.mu.Lock()
	defer deps.mailer.mu.Unlock()
	assert.Len(t, deps.mailer.sent, 1)
}

func TestCreateComment_UnknownPostGets404(t *testing.T) {
	s, deps := newTestServer(nil)
	app := authedApp(3)
	app.Post("/api/posts/:slug/comments", s.CreateComment)

	deps.postRepo.On("GetBySlug", mock.Anything, "missing").
		Return(nil, models.NewNotFoundError("Post", "missing"))

	resp, err := postJSON(app, "/api/posts/missing/comments", map[string]string{"text": "hi"})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModerateComment(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		mockSetup      func(deps *testDeps)
		expectedStatus int
	}{
		{
			name:           "Non-Staff Forbidden",
			user:           &models.User{ID: 1},
			mockSetup:      func(deps *testDeps) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "Staff Approves",
			user: &models.User{ID: 1, IsStaff: true},
			mockSetup: func(deps *testDeps) {
				deps.commentRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Comment{
					ID:   5,
					Post: models.Post{ID: 1, Slug: "hello-world"},
				}, nil)
				deps.commentRepo.On("Moderate", mock.Anything, uint(5)).Return(nil)
			},
			expectedStatus: http.StatusSeeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, deps := newTestServer(nil)
			app := authedApp(1)
			app.Post("/api/comments/:id/moderate", s.ModerateComment)

			deps.userRepo.On("GetByID", mock.Anything, uint(1)).Return(tt.user, nil)
			tt.mockSetup(deps)

			req := httptest.NewRequest(http.MethodPost, "/api/comments/5/moderate", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusSeeOther {
				assert.Equal(t, "/api/posts/hello-world", resp.Header.Get("Location"))
			}
		})
	}
}

func TestModerateComment_BadIDGets400(t *testing.T) {
	s, _ := newTestServer(nil)
	app := authedApp(1)
	app.Post("/api/comments/:id/moderate", s.ModerateComment)

	req := httptest.NewRequest(http.MethodPost, "/api/comments/not-a-number/moderate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
