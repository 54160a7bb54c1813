package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds the demo fixture.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May leave a nil client when Redis is unreachable.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := ensureDemoData(context.Background(), cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// ensureDemoData loads the built-in fixture into an empty development
// database. Any other environment, or a database that already has profiles,
// is left alone.
func ensureDemoData(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var profiles int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Count(&profiles).Error; err != nil {
		return err
	}
	if profiles > 0 {
		return nil
	}

	fixture, err := seed.DemoFixture()
	if err != nil {
		return err
	}
	summary, err := seed.NewSeeder(db, seed.Options{MaxUpvotes: 4, MaxComments: 2}).Run(ctx, fixture)
	if err != nil {
		return err
	}

	middleware.Logger.Info("demo fixture loaded",
		slog.Int("accounts", summary.Accounts),
		slog.Int("projects", summary.Projects))
	return nil
}
