package repository

import (
	"context"

	"devhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRepository defines persistence operations for developer skills.
type SkillRepository interface {
	List(ctx context.Context, developerID uint) ([]models.Skill, error)
	// Add inserts the skill unless the developer already has it, in which
	// case the existing row is returned with created=false.
	Add(ctx context.Context, developerID uint, label string) (skill *models.Skill, created bool, err error)
	DeleteOwned(ctx context.Context, id, developerID uint) (bool, error)
}

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository returns a new SkillRepository implementation.
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) List(ctx context.Context, developerID uint) ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.WithContext(ctx).
		Where("developer_id = ?", developerID).
		Order("skill ASC").
		Find(&skills).Error
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return skills, nil
}

func (r *skillRepository) Add(ctx context.Context, developerID uint, label string) (*models.Skill, bool, error) {
	skill := &models.Skill{DeveloperID: developerID, Skill: label}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(skill)
	if res.Error != nil {
		return nil, false, models.NewUpstreamError(res.Error)
	}
	if res.RowsAffected == 1 {
		return skill, true, nil
	}

	var existing models.Skill
	err := r.db.WithContext(ctx).
		Where("developer_id = ? AND skill = ?", developerID, label).
		First(&existing).Error
	if err != nil {
		return nil, false, models.NewUpstreamError(err)
	}
	return &existing, false, nil
}

func (r *skillRepository) DeleteOwned(ctx context.Context, id, developerID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND developer_id = ?", id, developerID).
		Delete(&models.Skill{})
	if res.Error != nil {
		return false, models.NewUpstreamError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

