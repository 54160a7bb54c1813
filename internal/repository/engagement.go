package repository

import (
	"context"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository persists upvotes and comments together with the
// project counters derived from them.
type EngagementRepository interface {
	// AddUpvote inserts the (project, user) fact if absent and bumps the
	// counter only when a row was inserted.
	AddUpvote(ctx context.Context, projectID, userID uint) (changed bool, count int, err error)
	// RemoveUpvote deletes the fact if present and lowers the counter only
	// when a row was deleted.
	RemoveUpvote(ctx context.Context, projectID, userID uint) (changed bool, count int, err error)
	AddComment(ctx context.Context, comment *models.Comment) (count int, err error)
	ListComments(ctx context.Context, projectID uint) ([]models.Comment, error)
	HasUpvoted(ctx context.Context, projectID, userID uint) (bool, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func requireProject(tx *gorm.DB, projectID uint) error {
	var n int64
	if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFoundError("Project", projectID)
	}
	return nil
}

func readCounter(tx *gorm.DB, projectID uint, column string) (int, error) {
	var count int
	err := tx.Model(&models.Project{}).Select(column).Where("id = ?", projectID).Scan(&count).Error
	return count, err
}

func (r *engagementRepository) AddUpvote(ctx context.Context, projectID, userID uint) (bool, int, error) {
	defer observability.TrackQuery("upvote_add", "upvotes")()

	var changed bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Upvote{ProjectID: projectID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			changed = true
			if err := tx.Model(&models.Project{}).
				Where("id = ?", projectID).
				UpdateColumn("upvotes_count", gorm.Expr("upvotes_count + 1")).Error; err != nil {
				return err
			}
		}

		var err error
		count, err = readCounter(tx, projectID, "upvotes_count")
		return err
	})
	if err != nil {
		return false, 0, upstream(err)
	}
	if changed {
		cache.InvalidateProject(ctx, projectID)
	}
	return changed, count, nil
}

func (r *engagementRepository) RemoveUpvote(ctx context.Context, projectID, userID uint) (bool, int, error) {
	defer observability.TrackQuery("upvote_remove", "upvotes")()

	var changed bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}

		res := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Upvote{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			changed = true
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND upvotes_count > 0", projectID).
				UpdateColumn("upvotes_count", gorm.Expr("upvotes_count - 1")).Error; err != nil {
				return err
			}
		}

		var err error
		count, err = readCounter(tx, projectID, "upvotes_count")
		return err
	})
	if err != nil {
		return false, 0, upstream(err)
	}
	if changed {
		cache.InvalidateProject(ctx, projectID)
	}
	return changed, count, nil
}

// AddComment inserts the comment and bumps comments_count in one
// transaction, then reloads it with its author.
func (r *engagementRepository) AddComment(ctx context.Context, comment *models.Comment) (int, error) {
	defer observability.TrackQuery("insert", "comments")()

	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, comment.ProjectID); err != nil {
			return err
		}
		if err := tx.Omit("Author").Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).
			Where("id = ?", comment.ProjectID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
			return err
		}

		var err error
		count, err = readCounter(tx, comment.ProjectID, "comments_count")
		return err
	})
	if err != nil {
		return 0, upstream(err)
	}
	cache.InvalidateProject(ctx, comment.ProjectID)

	if err := r.db.WithContext(ctx).Preload("Author", authorSummary).First(comment, comment.ID).Error; err != nil {
		return count, models.NewUpstreamError(err)
	}
	return count, nil
}

func (r *engagementRepository) ListComments(ctx context.Context, projectID uint) ([]models.Comment, error) {
	defer observability.TrackQuery("select", "comments")()

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author", authorSummary).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return comments, nil
}

func (r *engagementRepository) HasUpvoted(ctx context.Context, projectID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Upvote{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&n).Error
	if err != nil {
		return false, models.NewUpstreamError(err)
	}
	return n > 0, nil
}
