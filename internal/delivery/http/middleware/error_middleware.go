package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "splitpay/internal/delivery/context"
	"splitpay/internal/delivery/http/response"
	domainerrors "splitpay/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware renders every error returned by a handler as an ErrorResponse.
type ErrorMiddleware struct {
	logger *slog.Logger
}

func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler. Only server-side
// failures are logged; client errors are already covered by the access log.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &appErr):
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logFailure(c, "Request failed", err)
		}
		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())

	case errors.As(err, &httpErr):
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			m.logFailure(c, "Request failed", err)
		}
		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, "")

	default:
		m.logFailure(c, "Unhandled error", err)
		_ = response.InternalServerError(c, domainerrors.ErrInternalError.ErrorCode(), domainerrors.ErrInternalError.Message())
	}
}

func (m *ErrorMiddleware) logFailure(c echo.Context, msg string, err error) {
	req := c.Request()
	deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).Error(msg,
		slog.Any("error", err),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)
}
