package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitpay/config"
	"splitpay/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultGormSlowThreshold = 200 * time.Millisecond

// gormSlogLogger routes GORM's logger.Interface into slog.
type gormSlogLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormSlogLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	if cfg != nil && cfg.Env.Debug {
		level = logger.Info
	}

	return &gormSlogLogger{
		logger:        baseLogger,
		level:         level,
		slowThreshold: defaultGormSlowThreshold,
	}
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *gormSlogLogger) log(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.logger == nil || l.level < threshold {
		return
	}

	l.logger.LogAttrs(ctx, level, "GORM", slog.String("message", fmt.Sprintf(msg, args...)))
}

// Trace logs failed queries at error, slow queries at warn and everything else at debug.
// A missing row is an expected outcome of FindByEmail and is not logged as a failure.
func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := sqlAndRowsFn()
	attrs := []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelError, "GORM query failed", attrs...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		attrs = append(attrs, slog.Duration("slowThreshold", l.slowThreshold))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "GORM slow query", attrs...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelDebug, "GORM query", attrs...)
	}
}
