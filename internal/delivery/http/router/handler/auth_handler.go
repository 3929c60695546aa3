// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"splitpay/internal/delivery/http/middleware"
	"splitpay/internal/delivery/http/response"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for registration, login and profile handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	input := new(usecase.RegisterInput)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	// Only the identifying fields leave the server; the password hash never does.
	return response.Message(c, http.StatusCreated, "User registered", output.User)
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	input := new(usecase.LoginInput)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.ErrorCode(), "Invalid login input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Token(c, http.StatusOK, "Login successful", output.Token)
}

// GetProfile handles the request to get the current user's profile.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Invalid user ID in token")
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Profile retrieved", user)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
