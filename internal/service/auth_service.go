package service

import (
	"context"
	"log/slog"
	"strings"

	"devhub/internal/identity"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/validation"
)

// RegistrationMessage is returned on successful registration.
const RegistrationMessage = "Registration successful. Please check your email for verification."

// AuthService is the registration and login boundary.
type AuthService struct {
	provider identity.Provider
	profiles repository.ProfileRepository
}

// RegisterInput is the payload of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"notblank,max=100"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginInput is the payload of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthService(provider identity.Provider, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{provider: provider, profiles: profiles}
}

// Register validates the whole payload before any side effect, creates the
// account and then its profile. If the profile cannot be stored the account
// is deleted again; a failed cleanup is logged and the original error is
// returned.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	account, err := s.provider.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:   account.ID,
		Name: in.Name,
		Role: models.Role(in.Role),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if delErr := s.provider.DeleteAccount(ctx, account.ID); delErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to roll back account after profile creation failed",
				slog.Uint64("account_id", uint64(account.ID)),
				slog.String("error", delErr.Error()),
				slog.String("cause", err.Error()))
		}
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*identity.Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.provider.SignIn(ctx, in.Email, in.Password)
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.provider.Verify(ctx, token)
	if err != nil {
		return models.NewUnauthenticatedError("Invalid or expired token")
	}
	return s.provider.Revoke(ctx, claims)
}
