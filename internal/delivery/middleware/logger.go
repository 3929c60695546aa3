package middleware

import (
	"log/slog"
	"time"

	"splitpay/config"
	deliverycontext "splitpay/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware writes one access log line per request.
// Successful requests are only logged in debug mode; failures are always logged.
type LoggerMiddleware struct {
	logger    *slog.Logger
	debug     bool
	skipPaths map[string]struct{}
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:    logger,
		debug:     config.Env.Debug,
		skipPaths: map[string]struct{}{"/health": {}},
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, skip := m.skipPaths[c.Request().URL.Path]; skip {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		// Resolve the status the error handler will write before logging it.
		if err != nil {
			c.Error(err)
		}
		m.logRequest(c, start, err)

		return nil
	}
}

func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, err error) {
	req := c.Request()
	res := c.Response()

	level := slog.LevelInfo
	switch {
	case res.Status >= 500:
		level = slog.LevelError
	case res.Status >= 400:
		level = slog.LevelWarn
	case !m.debug:
		return
	}

	fields := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.Int("status", res.Status),
		slog.Duration("latency", time.Since(start)),
		slog.Int64("bytes_out", res.Size),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
	}
	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	// The request-scoped logger already carries request_id.
	logger := deliverycontext.GetLoggerOrDefault(req.Context(), m.logger)
	logger.LogAttrs(req.Context(), level, "HTTP Request", fields...)
}
