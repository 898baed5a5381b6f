package migration

import (
	"context"

	"gostatcore/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to %s", step.Name)
		}
	}
	return nil
}

// Step is one idempotent schema statement
type Step struct {
	Name string
	SQL  string
}

// Steps lists the schema statements in execution order
func (r *MigrationRunner) Steps() []Step {
	return []Step{
		{"create analysis_logs table", `
		CREATE TABLE IF NOT EXISTS analysis_logs (
			id UUID PRIMARY KEY,
			log TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
		{"create analytics table", `
		CREATE TABLE IF NOT EXISTS analytics (
			id UUID PRIMARY KEY,
			log_id UUID NOT NULL REFERENCES analysis_logs(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
		{"create statistics table", `
		CREATE TABLE IF NOT EXISTS statistics (
			seq BIGSERIAL,
			id UUID PRIMARY KEY,
			analytic_id UUID NOT NULL REFERENCES analytics(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			output_data JSONB NOT NULL,
			components TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
		{"create analytics index", "CREATE INDEX IF NOT EXISTS idx_analytics_created_at ON analytics(created_at DESC)"},
		{"create statistics index", "CREATE INDEX IF NOT EXISTS idx_statistics_analytic ON statistics(analytic_id, seq)"},
	}
}
