package bootstrap

import (
	"context"
	"testing"

	"devhub/internal/config"
	"devhub/internal/models"
	"devhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoData(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped outside development", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		require.NoError(t, ensureDemoData(ctx, &config.Config{Env: "production"}, db))

		var n int64
		require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("loads once into an empty database", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := &config.Config{Env: "development"}
		require.NoError(t, ensureDemoData(ctx, cfg, db))

		var first int64
		require.NoError(t, db.Model(&models.Profile{}).Count(&first).Error)
		assert.Positive(t, first)

		require.NoError(t, ensureDemoData(ctx, cfg, db))
		var second int64
		require.NoError(t, db.Model(&models.Profile{}).Count(&second).Error)
		assert.Equal(t, first, second)
	})
}
