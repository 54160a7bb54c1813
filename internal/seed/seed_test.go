package seed

import (
	"context"
	"testing"

	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDemoFixture(t *testing.T) {
	f, err := DemoFixture()
	require.NoError(t, err)
	assert.NotEmpty(t, f.Developers)
	for _, r := range f.Recruiters {
		assert.NotEqual(t, models.RoleDeveloper, r.Role)
	}
}

func TestParseFixture(t *testing.T) {
	f, err := ParseFixture([]byte(`
developers:
  - name: A
    email: a@example.com
recruiters:
  - name: B
    email: b@example.com
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, f.Password)
	assert.Equal(t, models.RoleHR, f.Recruiters[0].Role)

	tests := map[string]string{
		"duplicate email": `
developers:
  - {name: A, email: a@example.com}
recruiters:
  - {name: B, email: a@example.com}
`,
		"developer role for recruiter": `
recruiters:
  - {name: B, email: b@example.com, role: developer}
`,
		"unknown role": `
recruiters:
  - {name: B, email: b@example.com, role: admin}
`,
		"project without description": `
developers:
  - name: A
    email: a@example.com
    projects:
      - title: Only a title
`,
		"not yaml": `developers: [`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixture([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeeder_RunKeepsCountersConsistent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	fixture, err := DemoFixture()
	require.NoError(t, err)

	s := NewSeeder(db, Options{
		Developers:           3,
		Recruiters:           2,
		ProjectsPerDeveloper: 2,
		MaxUpvotes:           5,
		MaxComments:          3,
		BcryptCost:           bcrypt.MinCost,
		RandomSeed:           42,
	})
	summary, err := s.Run(ctx, fixture)
	require.NoError(t, err)

	wantAccounts := len(fixture.Developers) + len(fixture.Recruiters) + 5
	assert.Equal(t, wantAccounts, summary.Accounts)
	assert.Equal(t, 3+6, summary.Projects)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.EqualValues(t, wantAccounts, profiles)

	var projects []models.Project
	require.NoError(t, db.Find(&projects).Error)
	totalUpvotes, totalComments := 0, 0
	for _, p := range projects {
		upvotes, comments := testutil.CountFacts(t, db, p.ID)
		assert.EqualValues(t, upvotes, p.UpvotesCount, "project %d upvotes", p.ID)
		assert.EqualValues(t, comments, p.CommentsCount, "project %d comments", p.ID)
		totalUpvotes += p.UpvotesCount
		totalComments += p.CommentsCount
	}
	assert.Equal(t, summary.Upvotes, totalUpvotes)
	assert.Equal(t, summary.Comments, totalComments)

	var selfVotes int64
	require.NoError(t, db.Model(&models.Upvote{}).
		Joins("JOIN projects ON projects.id = upvotes.project_id").
		Where("projects.developer_id = upvotes.user_id").
		Count(&selfVotes).Error)
	assert.Zero(t, selfVotes)

	var account models.Account
	require.NoError(t, db.Where("email = ?", "meron@devhub.local").First(&account).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(fixture.Password)))

	require.NoError(t, s.ClearAll(ctx))
	var left int64
	require.NoError(t, db.Model(&models.Account{}).Count(&left).Error)
	assert.Zero(t, left)
}
