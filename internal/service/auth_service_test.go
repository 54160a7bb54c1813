package service

import (
	"context"
	"errors"
	"testing"

	"devhub/internal/identity"
	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r$ecretPass"

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:    "hana@example.com",
		Password: strongPassword,
		Name:     "Hana",
		Role:     "developer",
	}
}

func accountRows(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Account{}).Count(&n).Error)
	return n
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, models.RoleDeveloper, profile.Role)
	assert.False(t, profile.ContactVisible)

	stored, err := env.auth.profiles.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hana", stored.Name)

	session, err := env.auth.Login(ctx, LoginInput{Email: "HANA@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken)

	_, err = env.auth.Login(ctx, LoginInput{Email: "hana@example.com", Password: "wrong-password"})
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))

	require.NoError(t, env.auth.Logout(ctx, session.AccessToken))
	err = env.auth.Logout(ctx, "garbage")
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestAuthService_RejectsInvalidRegistrationBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"admin role", func(in *RegisterInput) { in.Role = "admin" }},
		{"missing role", func(in *RegisterInput) { in.Role = "" }},
		{"weak password", func(in *RegisterInput) { in.Password = "short" }},
		{"bad email", func(in *RegisterInput) { in.Email = "hana" }},
		{"blank name", func(in *RegisterInput) { in.Name = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := env.auth.Register(ctx, in)
			assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
			assert.Zero(t, accountRows(t, env))
		})
	}
}

func TestAuthService_DuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Email = " Hana@Example.com "
	_, err = env.auth.Register(ctx, again)
	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.EqualValues(t, 1, accountRows(t, env))
}

type stubProvider struct {
	identity.Provider
	signUpFn        func(ctx context.Context, email, password string) (*models.Account, error)
	deleteAccountFn func(ctx context.Context, id uint) error
}

func (s *stubProvider) SignUp(ctx context.Context, email, password string) (*models.Account, error) {
	return s.signUpFn(ctx, email, password)
}

func (s *stubProvider) DeleteAccount(ctx context.Context, id uint) error {
	return s.deleteAccountFn(ctx, id)
}

type stubProfileRepo struct {
	repository.ProfileRepository
	createFn func(ctx context.Context, profile *models.Profile) error
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}

func TestAuthService_RegisterCompensatesFailedProfile(t *testing.T) {
	profileErr := models.NewUpstreamError(errors.New("profiles table locked"))

	for _, deleteErr := range []error{nil, errors.New("delete failed too")} {
		var deleted []uint
		provider := &stubProvider{
			signUpFn: func(_ context.Context, email, _ string) (*models.Account, error) {
				return &models.Account{ID: 41, Email: email}, nil
			},
			deleteAccountFn: func(_ context.Context, id uint) error {
				deleted = append(deleted, id)
				return deleteErr
			},
		}
		profiles := &stubProfileRepo{
			createFn: func(context.Context, *models.Profile) error { return profileErr },
		}

		_, err := NewAuthService(provider, profiles).Register(ctx, validRegistration())
		assert.ErrorIs(t, err, profileErr)
		assert.Equal(t, []uint{41}, deleted)
	}
}
