package repository

import (
	"context"
	"log/slog"

	"devhub/internal/cache"
	"devhub/internal/database"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetWithProjects(ctx context.Context, id uint) (*models.Profile, error)
	GetRole(ctx context.Context, id uint) (models.Role, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	ListDevelopers(ctx context.Context) ([]models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("insert", "profiles")()

	if err := r.db.WithContext(ctx).Omit("Projects", "Skills").Create(profile).Error; err != nil {
		return models.NewUpstreamError(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, id).Error
	if database.IsNotFound(err) {
		return nil, models.NewNotFoundError("Profile", id)
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetWithProjects(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id ASC")
		}).
		First(&profile, id).Error
	if database.IsNotFound(err) {
		return nil, models.NewNotFoundError("Profile", id)
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &profile, nil
}

// GetRole returns the profile role through the cache. Roles never change, so
// the entry is never invalidated.
func (r *profileRepository) GetRole(ctx context.Context, id uint) (models.Role, error) {
	var role models.Role
	err := cache.Aside(ctx, cache.ProfileRoleKey(id), &role, cache.ProfileRoleTTL, func() error {
		var profile models.Profile
		err := r.db.WithContext(ctx).Select("id", "role").First(&profile, id).Error
		if database.IsNotFound(err) {
			return models.NewNotFoundError("Profile", id)
		}
		if err != nil {
			return models.NewUpstreamError(err)
		}
		role = profile.Role
		return nil
	})
	if err != nil {
		return "", err
	}
	return role, nil
}

func (r *profileRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	defer observability.TrackQuery("update", "profiles")()

	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.NewUpstreamError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", id)
	}
	r.invalidateCards(ctx, id)
	return nil
}

// invalidateCards drops cached project details that embed the profile, either
// as the developer card or as a comment author.
func (r *profileRepository) invalidateCards(ctx context.Context, id uint) {
	var projectIDs []uint
	err := r.db.WithContext(ctx).
		Raw("SELECT id FROM projects WHERE developer_id = ? UNION SELECT project_id FROM comments WHERE user_id = ?", id, id).
		Scan(&projectIDs).Error
	if err != nil {
		middleware.Logger.Warn("Skipping project cache invalidation",
			slog.Uint64("profile_id", uint64(id)),
			slog.String("error", err.Error()))
		return
	}
	for _, projectID := range projectIDs {
		cache.InvalidateProject(ctx, projectID)
	}
}

// ListDevelopers returns developer profiles ordered by name with their
// project counts.
func (r *profileRepository) ListDevelopers(ctx context.Context) ([]models.Profile, error) {
	defer observability.TrackQuery("select", "profiles")()

	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("profiles.*, (SELECT COUNT(*) FROM projects WHERE projects.developer_id = profiles.id) AS projects_count").
		Where("role = ?", models.RoleDeveloper).
		Order("name ASC").
		Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return profiles, nil
}
