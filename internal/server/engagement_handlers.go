package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/projects/:id/comments
// @Summary List comments
// @Tags engagement
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.ledger.ListComments(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/projects/:id/comments
// @Summary Comment on a project
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	comment, err := s.ledger.AddComment(ctx, identityOf(c), id, req.Content)
	if err != nil {
		return s.respondError(c, err)
	}

	if owner, err := s.projects.OwnerOf(ctx, id); err == nil {
		s.commentCreated(ctx, owner, comment)
	}
	return c.JSON(comment)
}

// GetUpvoteStatus handles GET /api/projects/:id/upvote
// @Summary Whether the caller upvoted a project
// @Tags engagement
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} object{upvoted=bool}
// @Router /projects/{id}/upvote [get]
func (s *Server) GetUpvoteStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	upvoted, err := s.ledger.HasUpvoted(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"upvoted": upvoted})
}

// AddUpvote handles POST /api/projects/:id/upvote
// @Summary Upvote a project
// @Description Upvoting twice is a no-op. Anonymous callers get 401, not 403.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string,upvotes_count=int}
// @Failure 401 {object} models.ErrorResponse "Not authenticated"
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/upvote [post]
func (s *Server) AddUpvote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	caller := identityOf(c)
	res, err := s.ledger.AddUpvote(ctx, caller, id)
	if err != nil {
		return s.respondError(c, err)
	}

	message := "Project upvoted"
	if res.Changed {
		if owner, err := s.projects.OwnerOf(ctx, id); err == nil {
			s.projectUpvoted(ctx, owner, caller.AccountID, id, res.UpvotesCount)
		}
	} else {
		message = "Project already upvoted"
	}
	return c.JSON(fiber.Map{
		"message":       message,
		"upvoted":       res.Upvoted,
		"upvotes_count": res.UpvotesCount,
	})
}

// RemoveUpvote handles DELETE /api/projects/:id/upvote
// @Summary Remove an upvote
// @Description Removing a missing upvote is a no-op. Anonymous callers get 401, not 403.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string,upvotes_count=int}
// @Failure 401 {object} models.ErrorResponse "Not authenticated"
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id}/upvote [delete]
func (s *Server) RemoveUpvote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.ledger.RemoveUpvote(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":       "Upvote removed",
		"upvoted":       res.Upvoted,
		"upvotes_count": res.UpvotesCount,
	})
}
