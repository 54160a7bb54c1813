package server

import (
	"devhub/internal/models"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and its profile. The role is fixed at registration.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration request"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	if !c.Is("json") {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content-Type must be application/json"))
	}
	var req service.RegisterInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if _, err := s.auth.Register(c.UserContext(), req); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": service.RegistrationMessage})
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate and return a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} object{message=string,session=identity.Session}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	session, err := s.auth.Login(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"session": session,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)
	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
