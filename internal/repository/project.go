// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"
	"time"

	"devhub/internal/cache"
	"devhub/internal/database"
	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
)

// Project list sort keys.
const (
	SortLatest    = "latest"
	SortPopular   = "popular"
	SortDiscussed = "discussed"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProjectFilter narrows and orders a project listing.
type ProjectFilter struct {
	DeveloperID uint
	Query       string
	Sort        string
	Limit       int
	Offset      int
}

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetDetail(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)
	UpdateOwned(ctx context.Context, id, ownerID uint, updates map[string]any) (bool, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error)
	OwnerOf(ctx context.Context, id uint) (uint, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// developerSummary limits a preloaded developer to its public card.
func developerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role", "github_url", "linkedin_url", "contact_visible")
}

// authorSummary limits a preloaded comment author to name and role.
func authorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role")
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	defer observability.TrackQuery("insert", "projects")()

	project.UpvotesCount = 0
	project.CommentsCount = 0
	if err := r.db.WithContext(ctx).Omit("Developer", "Comments", "Upvotes").Create(project).Error; err != nil {
		return models.NewUpstreamError(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Developer", developerSummary).
		First(&project, id).Error
	if database.IsNotFound(err) {
		return nil, models.NewNotFoundError("Project", id)
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &project, nil
}

// GetDetail loads the project with its developer card and comments. The
// result is cached until the next mutation of the project.
func (r *projectRepository) GetDetail(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := cache.Aside(ctx, cache.ProjectKey(id), &project, cache.ProjectTTL, func() error {
		defer observability.TrackQuery("select", "projects")()
		err := r.db.WithContext(ctx).
			Preload("Developer", developerSummary).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC, id ASC")
			}).
			Preload("Comments.Author", authorSummary).
			First(&project, id).Error
		if database.IsNotFound(err) {
			return models.NewNotFoundError("Project", id)
		}
		if err != nil {
			return models.NewUpstreamError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	defer observability.TrackQuery("select", "projects")()

	q := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Preload("Developer", authorSummary)

	if filter.DeveloperID != 0 {
		q = q.Where("developer_id = ?", filter.DeveloperID)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var projects []*models.Project
	err := applySort(q, filter.Sort).
		Limit(limit).
		Offset(filter.Offset).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return projects, nil
}

// applySort appends the ORDER BY for the requested sort key. Ties are broken
// by id so pages are stable.
func applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortPopular:
		return db.Order("upvotes_count DESC").Order("id ASC")
	case SortDiscussed:
		return db.Order("comments_count DESC").Order("id ASC")
	default:
		return db.Order("created_at DESC").Order("id ASC")
	}
}

// UpdateOwned applies updates in a single statement guarded by ownership. It
// reports false when no row matched (missing project or different owner).
func (r *projectRepository) UpdateOwned(ctx context.Context, id, ownerID uint, updates map[string]any) (bool, error) {
	defer observability.TrackQuery("update", "projects")()

	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND developer_id = ?", id, ownerID).
		Updates(values)
	if res.Error != nil {
		return false, models.NewUpstreamError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateProject(ctx, id)
	return true, nil
}

// DeleteOwned removes the project and its engagement facts in one
// transaction, guarded by ownership.
func (r *projectRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error) {
	defer observability.TrackQuery("delete", "projects")()

	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND developer_id = ?", id, ownerID).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		if err := tx.Where("project_id = ?", id).Delete(&models.Upvote{}).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return false, models.NewUpstreamError(err)
	}
	if deleted {
		cache.InvalidateProject(ctx, id)
	}
	return deleted, nil
}

// OwnerOf returns the developer id of the project.
func (r *projectRepository) OwnerOf(ctx context.Context, id uint) (uint, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Select("id", "developer_id").First(&project, id).Error
	if database.IsNotFound(err) {
		return 0, models.NewNotFoundError("Project", id)
	}
	if err != nil {
		return 0, models.NewUpstreamError(err)
	}
	return project.DeveloperID, nil
}
