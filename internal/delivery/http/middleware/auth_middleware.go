package middleware

import (
	"strings"

	"splitpay/internal/delivery/http/response"
	domainerrors "splitpay/internal/domain/errors"
	"splitpay/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is the echo.Context key holding the authenticated user's ID.
const ContextKeyUserID = "userID"

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, domainerrors.ErrInvalidToken.ErrorCode(), domainerrors.ErrInvalidToken.Message())
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)

		return next(c)
	}
}
