package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"image_url"`
	CategoryIDs []uint `json:"category_ids"`
}

// GetPosts handles GET /api/posts. The optional ?q= parameter filters by a
// case-insensitive substring match over title and content.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)

	result, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:slug. The response includes the post and
// its approved comments.
func (s *Server) GetPost(c *fiber.Ctx) error {
	detail, err := s.postService.GetPost(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts. Publishing also emails the subscriber
// list; if that broadcast fails the post is saved but the response is 502.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, errInvalidBody())
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug. Only the author may edit; the slug
// never changes even when the title does.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, errInvalidBody())
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		Slug:        c.Params("slug"),
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug. Only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), c.Params("slug")); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
