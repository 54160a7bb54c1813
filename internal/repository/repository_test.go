package repository

import (
	"context"
	"regexp"
	"testing"

	"devhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestProjectRepository_UpdateOwned_SingleConditionalStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "projects" SET .* WHERE id = \$\d+ AND developer_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.UpdateOwned(context.Background(), 5, 9, map[string]any{"title": "Hijacked"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_AddUpvote_ConflictSkipsCounter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "projects" WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "upvotes" .* ON CONFLICT DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT upvotes_count FROM "projects" WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"upvotes_count"}).AddRow(4))
	mock.ExpectCommit()

	changed, count, err := repo.AddUpvote(context.Background(), 3, 8)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_AddUpvote_InsertBumpsCounterInSameTx(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "projects" WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "upvotes" .* ON CONFLICT DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "projects" SET "upvotes_count"=upvotes_count + 1 WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT upvotes_count FROM "projects" WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"upvotes_count"}).AddRow(5))
	mock.ExpectCommit()

	changed, count, err := repo.AddUpvote(context.Background(), 3, 8)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_RemoveUpvote_CounterUpdateFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "projects" WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "upvotes" WHERE project_id = $1 AND user_id = $2`)).
		WithArgs(3, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "projects" SET "upvotes_count"=upvotes_count - 1 WHERE id = $1 AND upvotes_count > 0`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, _, err := repo.RemoveUpvote(context.Background(), 3, 8)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeUpstream))
	assert.NoError(t, mock.ExpectationsWereMet())
}
