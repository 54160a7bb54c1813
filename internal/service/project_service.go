// Package service holds the application's use cases. Every mutating call
// takes the caller's authz.Identity explicitly and consults the gate before
// touching the store.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"devhub/internal/authz"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

const maxTitleLen = 200

// ProjectService owns project records and their ownership rules.
type ProjectService struct {
	projects   repository.ProjectRepository
	engagement repository.EngagementRepository
}

// CreateProjectInput is the payload of a new project.
type CreateProjectInput struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"notblank"`
	GithubURL   *string `json:"github_url" validate:"omitempty,weburl"`
	LiveURL     *string `json:"live_url" validate:"omitempty,weburl"`
}

// UpdateProjectInput is a partial update; nil fields are left untouched and
// an empty URL clears it.
type UpdateProjectInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GithubURL   *string `json:"github_url"`
	LiveURL     *string `json:"live_url"`
}

// ListProjectsInput filters and pages a project listing.
type ListProjectsInput struct {
	DeveloperID uint
	Query       string
	Sort        string
	Limit       int
	Offset      int
}

func NewProjectService(projects repository.ProjectRepository, engagement repository.EngagementRepository) *ProjectService {
	return &ProjectService{projects: projects, engagement: engagement}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *ProjectService) Create(ctx context.Context, id authz.Identity, in CreateProjectInput) (*models.Project, error) {
	if err := authz.Authorize(id, authz.ProjectCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.GithubURL = trimmedOrNil(in.GithubURL)
	in.LiveURL = trimmedOrNil(in.LiveURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	project := &models.Project{
		DeveloperID: id.AccountID,
		Title:       in.Title,
		Description: in.Description,
		GithubURL:   in.GithubURL,
		LiveURL:     in.LiveURL,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (in UpdateProjectInput) changes() (map[string]any, error) {
	updates := map[string]any{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("title is required")
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, models.NewValidationError("title must be at most 200 characters")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, models.NewValidationError("description is required")
		}
		updates["description"] = desc
	}
	for column, raw := range map[string]*string{"github_url": in.GithubURL, "live_url": in.LiveURL} {
		if raw == nil {
			continue
		}
		v := trimmedOrNil(raw)
		if v == nil {
			updates[column] = nil
			continue
		}
		if err := validation.ValidateURL(*v); err != nil {
			return nil, models.NewValidationError(column + " must be an absolute http(s) URL")
		}
		updates[column] = *v
	}
	return updates, nil
}

// Update applies a partial update when the caller owns the project. The
// write is a single statement conditioned on ownership; the owner is only
// read afterwards to explain a refusal.
func (s *ProjectService) Update(ctx context.Context, id authz.Identity, projectID uint, in UpdateProjectInput) (*models.Project, error) {
	if err := authz.Authorize(id, authz.ProjectUpdate, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}
	updates, err := in.changes()
	if err != nil {
		return nil, err
	}

	ok, err := s.projects.UpdateOwned(ctx, projectID, id.AccountID, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.explainRefusal(ctx, id, authz.ProjectUpdate, projectID)
	}
	return s.projects.GetByID(ctx, projectID)
}

// Delete removes the project with its upvotes and comments when the caller
// owns it.
func (s *ProjectService) Delete(ctx context.Context, id authz.Identity, projectID uint) error {
	if err := authz.Authorize(id, authz.ProjectDelete, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return err
	}

	ok, err := s.projects.DeleteOwned(ctx, projectID, id.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return s.explainRefusal(ctx, id, authz.ProjectDelete, projectID)
	}
	return nil
}

func (s *ProjectService) explainRefusal(ctx context.Context, id authz.Identity, action authz.Action, projectID uint) error {
	owner, err := s.projects.OwnerOf(ctx, projectID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(id, action, authz.Resource{OwnerID: owner}); err != nil {
		return err
	}
	// Owned by the caller but gone by the time the write ran.
	return models.NewNotFoundError("Project", projectID)
}

// Get returns the project detail with comments and the caller's upvote flag.
func (s *ProjectService) Get(ctx context.Context, id authz.Identity, projectID uint) (*models.Project, error) {
	project, err := s.projects.GetDetail(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if id.Authenticated() {
		upvoted, err := s.engagement.HasUpvoted(ctx, projectID, id.AccountID)
		if err != nil {
			return nil, err
		}
		project.Upvoted = upvoted
	}
	return project, nil
}

// OwnerOf returns the developer that owns the project.
func (s *ProjectService) OwnerOf(ctx context.Context, projectID uint) (uint, error) {
	return s.projects.OwnerOf(ctx, projectID)
}

func (s *ProjectService) List(ctx context.Context, in ListProjectsInput) ([]*models.Project, error) {
	switch in.Sort {
	case "", repository.SortLatest, repository.SortPopular, repository.SortDiscussed:
	default:
		return nil, models.NewValidationError("sort must be one of: latest, popular, discussed")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	if limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	projects, err := s.projects.List(ctx, repository.ProjectFilter{
		DeveloperID: in.DeveloperID,
		Query:       in.Query,
		Sort:        in.Sort,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}
