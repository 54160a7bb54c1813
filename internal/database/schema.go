package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devhub/internal/config"
	"devhub/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes selected by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do, which migrations are
// still pending and which registered models have no table yet.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
	MissingTables      []string
}

// schemaPlan is the outcome of resolving DB_SCHEMA_MODE against APP_ENV.
type schemaPlan struct {
	mode    string
	runSQL  bool
	runAuto bool
}

// protectedEnv reports whether the environment holds data that AutoMigrate
// must not touch unless explicitly allowed.
func protectedEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}
	protected := protectedEnv(cfg.Env)

	switch plan.mode {
	case SchemaModeSQL:
		plan.runSQL = true
	case SchemaModeAuto:
		if protected && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.runAuto = true
	case SchemaModeHybrid:
		plan.runSQL = true
		plan.runAuto = !protected
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.mode)
	}
	return plan, nil
}

// AutoMigrate creates or updates every persistent table from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// MissingTables lists the tables of registered models that do not exist.
func MissingTables(db *gorm.DB) ([]string, error) {
	var missing []string
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		if !db.Migrator().HasTable(stmt.Schema.Table) {
			missing = append(missing, stmt.Schema.Table)
		}
	}
	return missing, nil
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to cfg. When
// only SQL migrations run, every registered model must end up with a table.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if plan.runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", plan.mode), slog.String("env", cfg.Env))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}

	missing, err := MissingTables(db.WithContext(ctx))
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("sql migrations do not create tables for registered models: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports the schema plan, pending SQL migrations and
// missing model tables.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.runSQL,
		WillRunAutoMigrate: plan.runAuto,
	}
	if status.MissingTables, err = MissingTables(db.WithContext(ctx)); err != nil {
		return nil, err
	}
	if !plan.runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}

	return status, nil
}
