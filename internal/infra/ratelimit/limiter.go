// Package ratelimit provides fixed-window request counters used to throttle the auth endpoints.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"splitpay/config"
	"splitpay/internal/errors"

	"go.uber.org/fx"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	WindowEnd time.Time
}

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
	Close() error
}

// Params holds dependencies for the Limiter, injected by Fx
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New selects the limiter backend from configuration. It returns a nil Limiter
// when rate limiting is disabled; the HTTP middleware treats that as "allow all".
func New(params Params) (Limiter, error) {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled || cfg.Limit <= 0 {
		params.Logger.Info("Rate limiting disabled")

		return nil, nil
	}

	var (
		limiter Limiter
		err     error
	)

	switch cfg.Provider {
	case config.RateLimitProviderMemory, "":
		limiter = NewMemoryLimiter(cfg.Limit, cfg.Window)
	case config.RateLimitProviderRedis:
		if cfg.Redis == nil || cfg.Redis.Addr == "" {
			return nil, errors.New("redis address is required for redis rate limiter")
		}
		limiter, err = NewRedisLimiter(*cfg.Redis, cfg.Limit, cfg.Window, params.Logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown rate limit provider: %s", cfg.Provider)
	}

	params.Logger.Info("Rate limiting enabled",
		slog.String("provider", cfg.Provider),
		slog.Int("limit", cfg.Limit),
		slog.Duration("window", cfg.Window),
	)

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return limiter.Close()
		},
	})

	return limiter, nil
}
