package server

import (
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategory handles POST /api/categories. Staff only.
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, errInvalidBody())
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return respondServiceError(c, models.NewValidationError("Name is required"))
	}
	if len(name) > 100 {
		return respondServiceError(c, models.NewValidationError("Name too long (max 100 characters)"))
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(c.UserContext(), category); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
