package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"splitpay/config"
	"splitpay/internal/domain/lifecycle"
	"splitpay/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the shared GORM client. The pool is pinged on start and closed on stop.
func New(params Params) (*gorm.DB, error) {
	db, err := Open(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	params.Append(poolHook(sqlDB, params.Logger))

	return db, nil
}

func poolHook(sqlDB *sql.DB, logger *slog.Logger) fx.Hook {
	monitorCtx, stopMonitor := context.WithCancel(context.Background())

	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(pingCtx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}
			go monitorDBPool(monitorCtx, logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(context.Context) error {
			stopMonitor()

			return sqlDB.Close()
		},
	}
}

// Open builds a GORM client without lifecycle hooks. Used directly by cmd/migrate.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.Postgres == nil {
		return nil, errors.New("postgres configuration is missing")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	// Every write here is a single statement; GORM's implicit per-statement transaction is redundant.
	return db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(logger, cfg),
	}), nil
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			if level, attrs, ok := poolWaitReport(prev, cur); ok {
				logger.LogAttrs(ctx, level, "Postgres pool wait", attrs...)
			}
			prev = cur
		}
	}
}

// poolWaitReport compares two pool snapshots. It reports nothing when no
// caller waited for a connection in between, and escalates to warn once the
// accumulated wait crosses dbPoolWarnDurationThreshold.
func poolWaitReport(prev, cur sql.DBStats) (slog.Level, []slog.Attr, bool) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return 0, nil, false
	}

	waited := cur.WaitDuration - prev.WaitDuration
	level := slog.LevelDebug
	if waited >= dbPoolWarnDurationThreshold {
		level = slog.LevelWarn
	}

	return level, []slog.Attr{
		slog.Int64("waitCountDelta", waits),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
	}, true
}
