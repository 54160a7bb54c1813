package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func projectCounters(t *testing.T, db *gorm.DB, id uint) (int, int) {
	t.Helper()
	var p models.Project
	require.NoError(t, db.First(&p, id).Error)
	return p.UpvotesCount, p.CommentsCount
}

func TestEngagement_UpvoteIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Abel", models.RoleDeveloper, true)
	fan := testutil.CreateProfile(t, db, "Fan", models.RoleUser, false)
	project := testutil.CreateProject(t, db, dev.ID, "Ledger")

	changed, count, err := repo.AddUpvote(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, count)

	changed, count, err = repo.AddUpvote(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, count)

	upvotes, _ := testutil.CountFacts(t, db, project.ID)
	assert.EqualValues(t, 1, upvotes)

	changed, count, err = repo.RemoveUpvote(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, count)

	changed, count, err = repo.RemoveUpvote(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, count)

	up, _ := projectCounters(t, db, project.ID)
	assert.Equal(t, 0, up)

	has, err := repo.HasUpvoted(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestEngagement_UnknownProject(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()

	_, _, err := repo.AddUpvote(ctx, 404, 1)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	_, _, err = repo.RemoveUpvote(ctx, 404, 1)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	_, err = repo.AddComment(ctx, &models.Comment{ProjectID: 404, UserID: 1, Content: "hi"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	var n int64
	require.NoError(t, db.Model(&models.Upvote{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEngagement_ConcurrentUpvotesKeepCounterExact(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Owner", models.RoleDeveloper, true)
	project := testutil.CreateProject(t, db, dev.ID, "Hot project")

	const users = 10
	voters := make([]*models.Profile, users)
	for i := range voters {
		voters[i] = testutil.CreateProfile(t, db, fmt.Sprintf("Voter%d", i), models.RoleUser, false)
	}

	var wg sync.WaitGroup
	for _, v := range voters {
		for range 3 {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				_, _, err := repo.AddUpvote(ctx, project.ID, userID)
				assert.NoError(t, err)
			}(v.ID)
		}
	}
	wg.Wait()

	up, _ := projectCounters(t, db, project.ID)
	facts, _ := testutil.CountFacts(t, db, project.ID)
	assert.Equal(t, users, up)
	assert.EqualValues(t, users, facts)

	for i, v := range voters {
		if i%2 == 1 {
			continue
		}
		for range 2 {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				_, _, err := repo.RemoveUpvote(ctx, project.ID, userID)
				assert.NoError(t, err)
			}(v.ID)
		}
	}
	wg.Wait()

	up, _ = projectCounters(t, db, project.ID)
	facts, _ = testutil.CountFacts(t, db, project.ID)
	assert.Equal(t, users/2, up)
	assert.EqualValues(t, users/2, facts)
}

func TestEngagement_CommentsCountAndOrder(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Dev", models.RoleDeveloper, true)
	hr := testutil.CreateProfile(t, db, "Recruiter", models.RoleHR, false)
	project := testutil.CreateProject(t, db, dev.ID, "Commented")

	first := &models.Comment{ProjectID: project.ID, UserID: hr.ID, Content: "Great work"}
	count, err := repo.AddComment(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NotNil(t, first.Author)
	assert.Equal(t, "Recruiter", first.Author.Name)
	assert.Equal(t, models.RoleHR, first.Author.Role)

	count, err = repo.AddComment(ctx, &models.Comment{ProjectID: project.ID, UserID: dev.ID, Content: "Thanks"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	comments, err := repo.ListComments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Great work", comments[0].Content)
	assert.Equal(t, "Dev", comments[1].Author.Name)

	_, cc := projectCounters(t, db, project.ID)
	_, facts := testutil.CountFacts(t, db, project.ID)
	assert.Equal(t, 2, cc)
	assert.EqualValues(t, 2, facts)
}

func TestProjectRepository_OwnershipGuards(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateProfile(t, db, "Owner", models.RoleDeveloper, true)
	intruder := testutil.CreateProfile(t, db, "Intruder", models.RoleDeveloper, true)
	project := testutil.CreateProject(t, db, owner.ID, "Original")

	ok, err := repo.UpdateOwned(ctx, project.ID, intruder.ID, map[string]any{"title": "Hijacked"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)

	ok, err = repo.UpdateOwned(ctx, project.ID, owner.ID, map[string]any{"title": "Renamed"})
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.NotNil(t, got.Developer)
	assert.Equal(t, "Owner", got.Developer.Name)

	ok, err = repo.DeleteOwned(ctx, project.ID, intruder.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	owned, err := repo.OwnerOf(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, owned)

	_, err = repo.OwnerOf(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

}

func TestProjectRepository_DeleteCascadesFacts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ledger := NewEngagementRepository(db)
	contacts := NewContactRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Dev", models.RoleDeveloper, true)
	fan := testutil.CreateProfile(t, db, "Fan", models.RoleUser, false)
	project := testutil.CreateProject(t, db, dev.ID, "Doomed")
	keep := testutil.CreateProject(t, db, dev.ID, "Survivor")

	_, _, err := ledger.AddUpvote(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	_, err = ledger.AddComment(ctx, &models.Comment{ProjectID: project.ID, UserID: fan.ID, Content: "bye"})
	require.NoError(t, err)
	_, _, err = ledger.AddUpvote(ctx, keep.ID, fan.ID)
	require.NoError(t, err)
	require.NoError(t, contacts.Create(ctx, &models.ContactRequest{DeveloperID: dev.ID, Name: "HR", Email: "hr@example.com", Message: "hello"}))

	ok, err := repo.DeleteOwned(ctx, project.ID, dev.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	upvotes, comments := testutil.CountFacts(t, db, project.ID)
	assert.Zero(t, upvotes)
	assert.Zero(t, comments)

	upvotes, _ = testutil.CountFacts(t, db, keep.ID)
	assert.EqualValues(t, 1, upvotes)

	inbox, err := contacts.ListForDeveloper(ctx, dev.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	_, err = repo.GetByID(ctx, project.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestProjectRepository_ListSortAndFilter(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Dev", models.RoleDeveloper, true)
	other := testutil.CreateProfile(t, db, "Other", models.RoleDeveloper, true)

	a := testutil.CreateProject(t, db, dev.ID, "Alpha payments")
	b := testutil.CreateProject(t, db, dev.ID, "Beta chat")
	c := testutil.CreateProject(t, db, other.ID, "Gamma payments")

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", a.ID).Updates(map[string]any{"upvotes_count": 5, "comments_count": 1}).Error)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", b.ID).Updates(map[string]any{"upvotes_count": 5, "comments_count": 9}).Error)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", c.ID).Updates(map[string]any{"upvotes_count": 7, "comments_count": 0}).Error)

	ids := func(ps []*models.Project) []uint {
		out := make([]uint, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	popular, err := repo.List(ctx, ProjectFilter{Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, ids(popular))

	discussed, err := repo.List(ctx, ProjectFilter{Sort: SortDiscussed})
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, a.ID, c.ID}, ids(discussed))

	mine, err := repo.List(ctx, ProjectFilter{DeveloperID: dev.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids(mine))

	search, err := repo.List(ctx, ProjectFilter{Query: "PAYMENTS", Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID, a.ID}, ids(search))
	require.NotNil(t, search[0].Developer)
	assert.Equal(t, "Other", search[0].Developer.Name)

	page, err := repo.List(ctx, ProjectFilter{Sort: SortPopular, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids(page))

	uptime := testutil.CreateProject(t, db, other.ID, "100% uptime")
	snake := testutil.CreateProject(t, db, other.ID, "snake_case linter")

	percent, err := repo.List(ctx, ProjectFilter{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, []uint{uptime.ID}, ids(percent))

	underscore, err := repo.List(ctx, ProjectFilter{Query: "_"})
	require.NoError(t, err)
	assert.Equal(t, []uint{snake.ID}, ids(underscore))

	backslash, err := repo.List(ctx, ProjectFilter{Query: `\`})
	require.NoError(t, err)
	assert.Empty(t, backslash)
}

func TestProjectRepository_GetDetailCachedAndInvalidated(t *testing.T) {
	mr, _ := testutil.UseMiniredis(t)
	db := testutil.NewSQLiteDB(t)
	repo := NewProjectRepository(db)
	ledger := NewEngagementRepository(db)
	ctx := context.Background()

	dev := testutil.CreateProfile(t, db, "Dev", models.RoleDeveloper, true)
	fan := testutil.CreateProfile(t, db, "Fan", models.RoleUser, false)
	project := testutil.CreateProject(t, db, dev.ID, "Cached")

	detail, err := repo.GetDetail(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", detail.Title)
	assert.True(t, mr.Exists(fmt.Sprintf("project:%d", project.ID)))

	_, err = ledger.AddComment(ctx, &models.Comment{ProjectID: project.ID, UserID: fan.ID, Content: "first!"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(fmt.Sprintf("project:%d", project.ID)))

	detail, err = repo.GetDetail(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.CommentsCount)
	require.Len(t, detail.Comments, 1)
	require.NotNil(t, detail.Comments[0].Author)
	assert.Equal(t, "Fan", detail.Comments[0].Author.Name)
	require.NotNil(t, detail.Developer)
	assert.True(t, detail.Developer.ContactVisible)

	_, err = repo.GetDetail(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
