package repository

import (
	"context"

	"devhub/internal/database"
	"devhub/internal/models"
	"devhub/internal/observability"

	"gorm.io/gorm"
)

// ContactRepository defines persistence operations for contact requests.
type ContactRepository interface {
	Create(ctx context.Context, request *models.ContactRequest) error
	GetByID(ctx context.Context, id uint) (*models.ContactRequest, error)
	ListForDeveloper(ctx context.Context, developerID uint, limit, offset int) ([]models.ContactRequest, error)
	MarkReadOwned(ctx context.Context, id, developerID uint) (bool, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, request *models.ContactRequest) error {
	defer observability.TrackQuery("insert", "contact_requests")()

	request.IsRead = false
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewUpstreamError(err)
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	var request models.ContactRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if database.IsNotFound(err) {
		return nil, models.NewNotFoundError("Contact request", id)
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &request, nil
}

func (r *contactRepository) ListForDeveloper(ctx context.Context, developerID uint, limit, offset int) ([]models.ContactRequest, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var requests []models.ContactRequest
	err := r.db.WithContext(ctx).
		Where("developer_id = ?", developerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return requests, nil
}

// MarkReadOwned sets is_read on a request addressed to developerID. Marking
// an already read request succeeds.
func (r *contactRepository) MarkReadOwned(ctx context.Context, id, developerID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("id = ? AND developer_id = ?", id, developerID).
		Update("is_read", true)
	if res.Error != nil {
		return false, models.NewUpstreamError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
