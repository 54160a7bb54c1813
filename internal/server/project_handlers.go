package server

import (
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProjects handles GET /api/projects
// @Summary List projects
// @Description Newest first by default; sort=popular orders by upvotes, sort=discussed by comments
// @Tags projects
// @Produce json
// @Param sort query string false "latest, popular or discussed"
// @Param developer_id query int false "Only projects of this developer"
// @Param q query string false "Search title and description"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Router /projects [get]
func (s *Server) ListProjects(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	developerID := c.QueryInt("developer_id", 0)
	if developerID < 0 {
		developerID = 0
	}

	projects, err := s.projects.List(c.UserContext(), service.ListProjectsInput{
		DeveloperID: uint(developerID),
		Query:       c.Query("q"),
		Sort:        c.Query("sort"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(projects)
}

// GetProject handles GET /api/projects/:id
// @Summary Get a project
// @Description Project with developer, comments and the caller's upvote flag
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projects.Get(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(project)
}

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateProjectInput true "Project"
// @Success 200 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req service.CreateProjectInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projects.Create(c.UserContext(), identityOf(c), req)
	if err != nil {
		return s.respondError(c, err)
	}

	s.projectCreated(c.UserContext(), project)
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body service.UpdateProjectInput true "Fields to change"
// @Success 200 {object} models.Project
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [put]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateProjectInput
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projects.Update(c.UserContext(), identityOf(c), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projects.Delete(c.UserContext(), identityOf(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}
