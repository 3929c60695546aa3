package middleware

import (
	"strconv"
	"time"

	"splitpay/internal/delivery/http/response"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/infra/ratelimit"

	"github.com/labstack/echo/v4"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"
)

// RateLimitMiddleware throttles requests per client IP and route.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	now     func() time.Time
}

// NewRateLimitMiddleware wraps a limiter. A nil limiter lets every request through.
func NewRateLimitMiddleware(limiter ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, now: time.Now}
}

// Limit refuses requests above the configured count with 429.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.limiter == nil {
			return next(c)
		}

		key := c.Path() + "|" + c.RealIP()
		decision := m.limiter.Allow(c.Request().Context(), key)

		header := c.Response().Header()
		header.Set(headerRateLimitLimit, strconv.Itoa(decision.Limit))
		header.Set(headerRateLimitRemaining, strconv.Itoa(max(decision.Limit-decision.Count, 0)))

		if !decision.Allowed {
			retryAfter := int(decision.WindowEnd.Sub(m.now()).Seconds()) + 1
			header.Set(headerRetryAfter, strconv.Itoa(max(retryAfter, 1)))

			return response.Error(c, domainerrors.ErrRateLimited.HTTPCode(),
				domainerrors.ErrRateLimited.ErrorCode(), domainerrors.ErrRateLimited.Message(), "")
		}

		return next(c)
	}
}
