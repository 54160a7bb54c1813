package server

import (
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitContact handles POST /api/contact
// @Summary Contact a developer
// @Description Anyone may contact a developer whose profile accepts contact requests
// @Tags contact
// @Accept json
// @Produce json
// @Param request body service.SubmitContactInput true "Contact request"
// @Success 201 {object} models.ContactRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /contact [post]
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req service.SubmitContactInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	created, err := s.contacts.Submit(ctx, identityOf(c), req)
	if err != nil {
		return s.respondError(c, err)
	}

	s.contactRequestReceived(ctx, created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListContactRequests handles GET /api/contact-requests
// @Summary Contact request inbox
// @Tags contact
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ContactRequest
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /contact-requests [get]
func (s *Server) ListContactRequests(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	requests, err := s.contacts.ListForDeveloper(c.UserContext(), identityOf(c), page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(requests)
}

// MarkContactRequestRead handles PUT /api/contact-requests/:id/read
// @Summary Mark a contact request read
// @Tags contact
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact request ID"
// @Success 200 {object} models.ContactRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /contact-requests/{id}/read [put]
func (s *Server) MarkContactRequestRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := s.contacts.MarkRead(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(req)
}
