package service

import (
	"context"
	"strings"

	"devhub/internal/authz"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

// ContactService decides whether a developer can be contacted and stores the
// requests sent to them.
type ContactService struct {
	profiles repository.ProfileRepository
	contacts repository.ContactRepository
}

// SubmitContactInput is the payload of POST /contact.
type SubmitContactInput struct {
	DeveloperID uint    `json:"developer_id" validate:"required"`
	Name        string  `json:"name" validate:"notblank,max=100"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Message     string  `json:"message" validate:"notblank,max=5000"`
	Company     *string `json:"company" validate:"omitempty,max=200"`
}

func NewContactService(profiles repository.ProfileRepository, contacts repository.ContactRepository) *ContactService {
	return &ContactService{profiles: profiles, contacts: contacts}
}

// CanContact reports whether the profile exposes a contact channel.
func CanContact(profile *models.Profile) bool {
	return profile.IsDeveloper() && profile.ContactVisible
}

// Submit stores a contact request addressed to a visible developer. The
// sender is recorded when authenticated.
func (s *ContactService) Submit(ctx context.Context, id authz.Identity, in SubmitContactInput) (req *models.ContactRequest, err error) {
	defer func() {
		result := observability.OutcomeApplied
		if err != nil {
			result = outcome(err, false)
		}
		observability.ContactRequests.WithLabelValues(result).Inc()
	}()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	in.Company = trimmedOrNil(in.Company)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	target, err := s.profiles.GetByID(ctx, in.DeveloperID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Developer", in.DeveloperID)
		}
		return nil, err
	}
	if err := authz.Authorize(id, authz.ContactCreate, authz.Resource{
		OwnerID:        target.ID,
		OwnerRole:      target.Role,
		ContactVisible: target.ContactVisible,
	}); err != nil {
		return nil, err
	}

	req = &models.ContactRequest{
		DeveloperID: target.ID,
		Name:        in.Name,
		Email:       in.Email,
		Message:     in.Message,
		Company:     in.Company,
	}
	if id.Authenticated() {
		sender := id.AccountID
		req.UserID = &sender
	}
	if err := s.contacts.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListForDeveloper returns the caller's inbox, newest first.
func (s *ContactService) ListForDeveloper(ctx context.Context, id authz.Identity, limit, offset int) ([]models.ContactRequest, error) {
	if err := authz.Authorize(id, authz.ContactList, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > repository.MaxPageSize {
		limit = repository.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	requests, err := s.contacts.ListForDeveloper(ctx, id.AccountID, limit, offset)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.ContactRequest{}
	}
	return requests, nil
}

// MarkRead flips is_read on a request addressed to the caller. Marking an
// already read request succeeds.
func (s *ContactService) MarkRead(ctx context.Context, id authz.Identity, requestID uint) (*models.ContactRequest, error) {
	if err := authz.Authorize(id, authz.ContactMarkRead, authz.Resource{OwnerID: id.AccountID}); err != nil {
		return nil, err
	}

	ok, err := s.contacts.MarkReadOwned(ctx, requestID, id.AccountID)
	if err != nil {
		return nil, err
	}

	req, err := s.contacts.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := authz.Authorize(id, authz.ContactMarkRead, authz.Resource{OwnerID: req.DeveloperID}); err != nil {
			return nil, err
		}
		return nil, models.NewNotFoundError("Contact request", requestID)
	}
	return req, nil
}
