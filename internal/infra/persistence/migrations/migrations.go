// Package migrations embeds the goose SQL migrations for the users schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"

	"splitpay/internal/errors"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedded embed.FS

const dialect = "postgres"

// Runner applies, inspects and rolls back the embedded migrations.
type Runner struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunner binds a runner to an open database handle.
func NewRunner(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(embedded)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, errors.Wrap(err, "configure goose")
	}

	return &Runner{db: db, logger: logger}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up(ctx context.Context) error {
	r.logger.Info("Applying migrations")
	if err := goose.UpContext(ctx, r.db, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	r.logger.Info("Migrations applied")

	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	r.logger.Info("Rolling back last migration")
	if err := goose.DownContext(ctx, r.db, "."); err != nil {
		return errors.Wrap(err, "roll back migration")
	}

	return nil
}

// Status prints applied and pending migrations through goose's logger.
func (r *Runner) Status(ctx context.Context) error {
	if err := goose.StatusContext(ctx, r.db, "."); err != nil {
		return errors.Wrap(err, "migration status")
	}

	return nil
}
