// Package context carries request-scoped values from the HTTP layer into use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type contextKey struct{ name string }

var (
	keyRequestID = contextKey{"request_id"}
	keyLogger    = contextKey{"logger"}
)

// HeaderXRequestID is the HTTP header name for request ID.
const HeaderXRequestID = echo.HeaderXRequestID

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(keyRequestID.name, requestID)
}

// GetRequestID returns the request ID stored on echo.Context, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(keyRequestID.name).(string)

	return id
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLoggerOrDefault extracts the request-scoped logger from ctx.
// If not found, returns the provided fallback logger.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
