package container

import (
	"context"
	"fmt"

	"gostatcore/adapters/memory"
	"gostatcore/adapters/postgres"
	"gostatcore/app"
	"gostatcore/internal"
	"gostatcore/internal/config"
	"gostatcore/internal/metrics"
	"gostatcore/internal/migration"
	"gostatcore/internal/worker"
	"gostatcore/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Results is the sink analyses persist into and the API reads from
	Results ports.ResultStore
}

// New creates a container that keeps results in memory until
// InitWithDatabase is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	level := internal.ParseLogLevel(cfg.Log.Level)
	c := &Container{
		Config:  cfg,
		Logger:  internal.NewLogger(level),
		Results: memory.NewResultStore(),
	}
	if cfg.Metrics.Enabled {
		metrics.Register()
	}
	return c, nil
}

// InitWithDatabase migrates the schema and switches results to PostgreSQL
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.DB = db
	c.Results = postgres.NewResultRepository(db)
	c.Logger.With("Container").Info("results stored in PostgreSQL")
	return nil
}

// Deps builds the collaborators for one analysis
func (c *Container) Deps(onClose func()) app.Deps {
	return app.Deps{
		Sink:               c.Results,
		Units:              worker.NewUnit,
		OnClose:            onClose,
		Logger:             c.Logger,
		MaxConcurrentUnits: c.Config.Analysis.MaxConcurrentUnits,
		UnitTimeout:        c.Config.Analysis.UnitTimeout,
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
