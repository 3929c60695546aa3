package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"splitpay/config"
	"splitpay/internal/errors"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "splitpay:ratelimit:"
	redisOpTimeout   = 250 * time.Millisecond
	redisPingTimeout = 2 * time.Second
)

// redisLimiter shares counters between instances through Redis INCR/EXPIRE.
// Redis failures fail open: a broken cache must not lock users out of login.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

// NewRedisLimiter connects to Redis and verifies the connection with a ping.
func NewRedisLimiter(cfg config.RedisConfig, limit int, window time.Duration, logger *slog.Logger) (Limiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return newRedisLimiter(client, limit, window, logger), nil
}

func newRedisLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *redisLimiter {
	if window <= 0 {
		window = time.Minute
	}

	return &redisLimiter{client: client, limit: limit, window: window, logger: logger}
}

// Allow increments the counter and reads its TTL in one MULTI/EXEC. A counter
// without an expiry, left behind by a failed EXPIRE, gets one on the next hit
// so the window always ends.
func (l *redisLimiter) Allow(ctx context.Context, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	redisKey := redisKeyPrefix + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pttl = pipe.PTTL(ctx, redisKey)

		return nil
	}); err != nil {
		l.logError("incr", err)

		return Decision{Allowed: true, Limit: l.limit}
	}

	counter := int(incr.Val())
	ttl := pttl.Val()
	if ttl <= 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logError("expire", err)
		}
		ttl = l.window
	}

	return Decision{
		Allowed:   counter <= l.limit,
		Count:     counter,
		Limit:     l.limit,
		WindowEnd: time.Now().Add(ttl),
	}
}

func (l *redisLimiter) Close() error {
	return errors.WithStack(l.client.Close())
}

func (l *redisLimiter) logError(op string, err error) {
	if l.logger == nil {
		return
	}

	l.logger.Error("Redis rate limiter error", slog.String("op", op), slog.Any("error", err))
}
