// Package errors defines the typed application errors that the HTTP boundary maps to responses.
package errors

import (
	"net/http"

	"splitpay/internal/errors"
)

// AppError is an error the HTTP layer can render without inspecting its cause.
type AppError interface {
	error
	HTTPCode() int
	// ErrorCode is the stable machine-readable code sent to clients.
	ErrorCode() string
	// Message is safe to show to end users.
	Message() string
	// Details is optional diagnostic text. It is withheld from 5xx responses.
	Details() string
}

// BaseError is an immutable AppError. Use WithDetails to derive a copy.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{httpCode: httpCode, errorCode: errorCode, message: message, details: details}
}

func (e *BaseError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// Is compares error codes, so a copy from WithDetails matches the predefined value.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)

	return ok && other.errorCode == e.errorCode
}

// WrapMessage attaches context and a stack trace while keeping e reachable via errors.As.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int     { return e.httpCode }
func (e *BaseError) ErrorCode() string { return e.errorCode }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) Details() string   { return e.details }

func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

func predefined(httpCode int, errorCode, message string) *BaseError {
	return NewBaseError(httpCode, errorCode, message, "")
}

var (
	ErrUserNotFound       = predefined(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrUserAlreadyExists  = predefined(http.StatusConflict, "USER_ALREADY_EXISTS", "Email is already registered")
	ErrUserCreationFailed = predefined(http.StatusInternalServerError, "USER_CREATION_FAILED", "Failed to create user")

	ErrInvalidCredentials = predefined(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrInvalidToken       = predefined(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrPasswordHashFailed = predefined(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", "Failed to process password")
	ErrTokenSignFailed    = predefined(http.StatusInternalServerError, "TOKEN_SIGN_FAILED", "Failed to issue token")

	ErrValidationFailed = predefined(http.StatusBadRequest, "VALIDATION_FAILED", "Invalid input")
	ErrRateLimited      = predefined(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later")

	ErrInternalError = predefined(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)

// DatabaseExecuteError wraps a driver failure. The driver error is never shown to clients.
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{err: err, details: details}
}

func (e *DatabaseExecuteError) Error() string {
	return "database execution failed: " + e.err.Error()
}

func (e *DatabaseExecuteError) Unwrap() error { return e.err }

func (e *DatabaseExecuteError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DatabaseExecuteError) ErrorCode() string { return "DATABASE_EXECUTE_FAILED" }
func (e *DatabaseExecuteError) Message() string   { return "Database operation failed" }
func (e *DatabaseExecuteError) Details() string   { return e.details }
