package server

import (
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile
// @Summary Current profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profiles.Me(c.UserContext(), identityOf(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/profile
// @Summary Update the current profile
// @Description The role cannot be changed
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.profiles.Update(c.UserContext(), identityOf(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// ListMySkills handles GET /api/profile/skills
// @Summary List own skills
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Skill
// @Failure 403 {object} models.ErrorResponse
// @Router /profile/skills [get]
func (s *Server) ListMySkills(c *fiber.Ctx) error {
	skills, err := s.skills.List(c.UserContext(), identityOf(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(skills)
}

// AddSkill handles POST /api/profile/skills
// @Summary Add a skill
// @Description Adding an existing skill returns it unchanged
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{skill=string} true "Skill"
// @Success 200 {object} models.Skill
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profile/skills [post]
func (s *Server) AddSkill(c *fiber.Ctx) error {
	var req struct {
		Skill string `json:"skill"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	skill, err := s.skills.Add(c.UserContext(), identityOf(c), req.Skill)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(skill)
}

// RemoveSkill handles DELETE /api/profile/skills/:id
// @Summary Remove a skill
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Skill ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/skills/{id} [delete]
func (s *Server) RemoveSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.skills.Remove(c.UserContext(), identityOf(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Skill removed"})
}

// ListDevelopers handles GET /api/developers
// @Summary Developer directory
// @Tags developers
// @Produce json
// @Success 200 {array} models.Profile
// @Router /developers [get]
func (s *Server) ListDevelopers(c *fiber.Ctx) error {
	devs, err := s.profiles.ListDevelopers(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(devs)
}

// GetDeveloper handles GET /api/developers/:id
// @Summary Developer profile
// @Description Includes the contact email only when the developer accepts contact
// @Tags developers
// @Produce json
// @Param id path int true "Developer ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /developers/{id} [get]
func (s *Server) GetDeveloper(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	dev, err := s.profiles.GetDeveloper(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(dev)
}

