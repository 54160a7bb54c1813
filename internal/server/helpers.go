package server

import (
	"errors"
	"log/slog"

	"devhub/internal/middleware"
	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten indicates a helper already committed the response.
// Handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

var errRealtimeUnavailable = errors.New("realtime delivery is not configured")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 400 response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body. On failure it writes a 400 response and
// returns errResponseWritten.
func (s *Server) parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError writes err with the status its code maps to. Server errors
// are logged with their cause, which never reaches the client.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}
