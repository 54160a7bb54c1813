package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"devhub/internal/authz"
	"devhub/internal/models"
	"devhub/internal/repository"
)

const maxSkillLen = 50

// SkillService lets developers manage the skills on their own profile.
type SkillService struct {
	skills repository.SkillRepository
}

func NewSkillService(skills repository.SkillRepository) *SkillService {
	return &SkillService{skills: skills}
}

func (s *SkillService) List(ctx context.Context, id authz.Identity) ([]models.Skill, error) {
	if err := authz.Authorize(id, authz.SkillManage, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}
	skills, err := s.skills.List(ctx, id.AccountID)
	if err != nil {
		return nil, err
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	return skills, nil
}

// Add attaches a skill. Adding a skill the developer already has returns the
// existing one.
func (s *SkillService) Add(ctx context.Context, id authz.Identity, label string) (*models.Skill, error) {
	if err := authz.Authorize(id, authz.SkillManage, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, models.NewValidationError("skill is required")
	}
	if utf8.RuneCountInString(label) > maxSkillLen {
		return nil, models.NewValidationError("skill must be at most 50 characters")
	}

	skill, _, err := s.skills.Add(ctx, id.AccountID, label)
	return skill, err
}

// Remove deletes one of the caller's skills.
func (s *SkillService) Remove(ctx context.Context, id authz.Identity, skillID uint) error {
	if err := authz.Authorize(id, authz.SkillManage, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return err
	}
	ok, err := s.skills.DeleteOwned(ctx, skillID, id.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Skill", skillID)
	}
	return nil
}
