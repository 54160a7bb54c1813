// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"devhub/internal/cache"
	"devhub/internal/database"
	"devhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated in-memory database. The pool is pinned to one
// connection so every query sees the same database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// UseMiniredis points the cache package at a fresh miniredis and restores
// the previous client when the test ends. Tests using it must not run in
// parallel.
func UseMiniredis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := cache.GetClient()
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(prev)
		_ = rdb.Close()
	})
	return mr, rdb
}

// CreateAccount inserts an account with a throwaway hash.
func CreateAccount(t testing.TB, db *gorm.DB, email string) *models.Account {
	t.Helper()
	account := &models.Account{Email: email, PasswordHash: "x"}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

// CreateProfile inserts an account and its profile.
func CreateProfile(t testing.TB, db *gorm.DB, name string, role models.Role, contactVisible bool) *models.Profile {
	t.Helper()
	account := CreateAccount(t, db, fmt.Sprintf("%s-%s@example.com", role, sanitize(name)))
	profile := &models.Profile{
		ID:             account.ID,
		Name:           name,
		Role:           role,
		ContactVisible: contactVisible,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

// CreateProject inserts a project owned by developerID.
func CreateProject(t testing.TB, db *gorm.DB, developerID uint, title string) *models.Project {
	t.Helper()
	project := &models.Project{
		DeveloperID: developerID,
		Title:       title,
		Description: title + " description",
	}
	if err := db.Omit("Developer", "Comments", "Upvotes").Create(project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

// CountFacts returns the number of upvote and comment rows for a project.
func CountFacts(t testing.TB, db *gorm.DB, projectID uint) (upvotes, comments int64) {
	t.Helper()
	if err := db.Model(&models.Upvote{}).Where("project_id = ?", projectID).Count(&upvotes).Error; err != nil {
		t.Fatalf("count upvotes: %v", err)
	}
	if err := db.Model(&models.Comment{}).Where("project_id = ?", projectID).Count(&comments).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	return upvotes, comments
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	return string(out)
}
