// Package response renders the JSON bodies returned by the HTTP delivery.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MessageResponse is the body of every successful response that carries a message
type MessageResponse struct {
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

// ErrorResponse unified error body. The message sits at the top level like in MessageResponse
type ErrorResponse struct {
	Message string     `json:"message"` // User-friendly message
	Error   *ErrorInfo `json:"error"`
}

// ErrorInfo detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "USER_NOT_FOUND"
	Details string `json:"details,omitempty"` // Detailed error description
}

// Message writes a message with an optional user projection
func Message(c echo.Context, statusCode int, message string, user any) error {
	return c.JSON(statusCode, MessageResponse{
		Message: message,
		User:    user,
	})
}

// Token writes a message together with an issued token
func Token(c echo.Context, statusCode int, message string, token string) error {
	return c.JSON(statusCode, MessageResponse{
		Message: message,
		Token:   token,
	})
}

// Error error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	// Details are not exposed for 5xx errors
	if statusCode >= http.StatusInternalServerError {
		details = ""
	}

	return c.JSON(statusCode, ErrorResponse{
		Message: message,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
	})
}

// BindingError binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

// Unauthorized 401 error
func Unauthorized(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusUnauthorized, errorCode, message, "")
}

// InternalServerError 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}
