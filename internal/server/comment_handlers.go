package server

import (
	"errors"

	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:slug/comments. New comments are held
// for moderation and stay invisible until approved. An empty submission is
// silently dropped: the client is redirected back to the post with nothing
// saved and no error shown.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	// An unparseable body counts as an empty submission; the slug still has
	// to resolve before the redirect.
	_ = c.BodyParser(&req)

	slug := c.Params("slug")
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		Slug:   slug,
		Text:   req.Text,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyComment) {
			return c.Redirect("/api/posts/"+slug, fiber.StatusSeeOther)
		}
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ModerateComment handles POST /api/comments/:id/moderate. Staff and
// superusers only. Approval is one way; approving an already-approved
// comment is a no-op. On success the client is sent back to the post.
func (s *Server) ModerateComment(c *fiber.Ctx) error {
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentService.ModerateComment(c.UserContext(), service.ModerateCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(comment.Post.DetailURL(), fiber.StatusSeeOther)
}
