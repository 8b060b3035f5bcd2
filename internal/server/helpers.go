package server

import (
	"errors"
	"strconv"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 50

// parsePagination reads page and page_size query params. Pages are 1-based;
// the default page size is six posts, matching the public listing.
func parsePagination(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("page_size", strconv.Itoa(service.DefaultPageSize)))
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// parseUintParam parses a numeric route parameter.
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(v), nil
}

// respondServiceError maps an application error to its HTTP status.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case models.CodeForbidden:
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		case models.CodeMailDelivery:
			return models.RespondWithError(c, fiber.StatusBadGateway, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

func errInvalidBody() error {
	return models.NewValidationError("Invalid request body")
}

// currentUserID returns the authenticated user's ID from locals.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
