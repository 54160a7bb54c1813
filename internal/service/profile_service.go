package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"devhub/internal/authz"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"

	"golang.org/x/sync/errgroup"
)

const (
	maxNameLen = 100
	maxBioLen  = 1000
)

// AccountEmailer resolves the login email behind a profile.
type AccountEmailer interface {
	AccountEmail(ctx context.Context, id uint) (string, error)
}

// ProfileService serves profiles and the public developer directory.
type ProfileService struct {
	profiles repository.ProfileRepository
	projects repository.ProjectRepository
	skills   repository.SkillRepository
	accounts AccountEmailer
}

// UpdateProfileInput is a partial profile update. Role is not updatable.
type UpdateProfileInput struct {
	Name           *string `json:"name"`
	Bio            *string `json:"bio"`
	GithubURL      *string `json:"github_url"`
	LinkedinURL    *string `json:"linkedin_url"`
	AvatarURL      *string `json:"avatar_url"`
	ContactVisible *bool   `json:"contact_visible"`
}

func NewProfileService(
	profiles repository.ProfileRepository,
	projects repository.ProjectRepository,
	skills repository.SkillRepository,
	accounts AccountEmailer,
) *ProfileService {
	return &ProfileService{profiles: profiles, projects: projects, skills: skills, accounts: accounts}
}

// Me returns the caller's own profile with projects.
func (s *ProfileService) Me(ctx context.Context, id authz.Identity) (*models.Profile, error) {
	if !id.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return s.profiles.GetWithProjects(ctx, id.AccountID)
}

func (in UpdateProfileInput) changes() (map[string]any, error) {
	updates := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("name is required")
		}
		if utf8.RuneCountInString(name) > maxNameLen {
			return nil, models.NewValidationError("name must be at most 100 characters")
		}
		updates["name"] = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLen {
			return nil, models.NewValidationError("bio must be at most 1000 characters")
		}
		updates["bio"] = bio
	}
	urls := []struct {
		column string
		value  *string
	}{
		{"github_url", in.GithubURL},
		{"linkedin_url", in.LinkedinURL},
		{"avatar_url", in.AvatarURL},
	}
	for _, u := range urls {
		if u.value == nil {
			continue
		}
		v := strings.TrimSpace(*u.value)
		if v != "" && validation.ValidateURL(v) != nil {
			return nil, models.NewValidationError(u.column + " must be an absolute http(s) URL")
		}
		updates[u.column] = v
	}
	if in.ContactVisible != nil {
		updates["contact_visible"] = *in.ContactVisible
	}
	return updates, nil
}

// Update changes the caller's own profile.
func (s *ProfileService) Update(ctx context.Context, id authz.Identity, in UpdateProfileInput) (*models.Profile, error) {
	if err := authz.Authorize(id, authz.ProfileUpdate, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}
	updates, err := in.changes()
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.profiles.Update(ctx, id.AccountID, updates); err != nil {
			return nil, err
		}
	}
	return s.profiles.GetByID(ctx, id.AccountID)
}

// ListDevelopers returns every developer ordered by name.
func (s *ProfileService) ListDevelopers(ctx context.Context) ([]models.Profile, error) {
	devs, err := s.profiles.ListDevelopers(ctx)
	if err != nil {
		return nil, err
	}
	if devs == nil {
		devs = []models.Profile{}
	}
	return devs, nil
}

// GetDeveloper returns a developer profile with projects and skills. The
// contact email is only included when the developer accepts contact or the
// caller is the developer.
func (s *ProfileService) GetDeveloper(ctx context.Context, id authz.Identity, developerID uint) (*models.Profile, error) {
	var (
		profile  *models.Profile
		projects []*models.Project
		skills   []models.Skill
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetByID(gctx, developerID)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projects.List(gctx, repository.ProjectFilter{
			DeveloperID: developerID,
			Limit:       repository.MaxPageSize,
		})
		return err
	})
	g.Go(func() error {
		var err error
		skills, err = s.skills.List(gctx, developerID)
		return err
	})
	if err := g.Wait(); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Developer", developerID)
		}
		return nil, err
	}
	if !profile.IsDeveloper() {
		return nil, models.NewNotFoundError("Developer", developerID)
	}

	profile.Projects = make([]models.Project, 0, len(projects))
	for _, p := range projects {
		profile.Projects = append(profile.Projects, *p)
	}
	profile.Skills = skills
	if profile.Skills == nil {
		profile.Skills = []models.Skill{}
	}
	profile.ProjectsCount = len(projects)

	if CanContact(profile) || id.AccountID == profile.ID {
		email, err := s.accounts.AccountEmail(ctx, profile.ID)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		profile.ContactEmail = email
	}
	return profile, nil
}
