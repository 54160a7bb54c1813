package service

import (
	"context"
	"testing"

	"devhub/internal/authz"
	"devhub/internal/identity"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	provider identity.Provider
	projects *ProjectService
	ledger   *EngagementLedger
	contacts *ContactService
	profiles *ProfileService
	skills   *SkillService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	projectRepo := repository.NewProjectRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	contactRepo := repository.NewContactRepository(db)
	provider := identity.NewProvider(db, nil, identity.Options{
		Secret:     "service-test-secret-with-enough-length",
		BcryptCost: bcrypt.MinCost,
	})

	return &testEnv{
		db:       db,
		provider: provider,
		projects: NewProjectService(projectRepo, engagementRepo),
		ledger:   NewEngagementLedger(engagementRepo, projectRepo),
		contacts: NewContactService(profileRepo, contactRepo),
		profiles: NewProfileService(profileRepo, projectRepo, skillRepo, provider),
		skills:   NewSkillService(skillRepo),
		auth:     NewAuthService(provider, profileRepo),
	}
}

func (e *testEnv) identityOf(p *models.Profile) authz.Identity {
	return authz.Identity{AccountID: p.ID, Role: p.Role}
}

func (e *testEnv) counters(t *testing.T, projectID uint) (int, int) {
	t.Helper()
	var p models.Project
	require.NoError(t, e.db.First(&p, projectID).Error)
	return p.UpvotesCount, p.CommentsCount
}

func strPtr(s string) *string { return &s }

var ctx = context.Background()
