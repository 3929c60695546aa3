package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the claims carried by an issued token.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateToken signs a token identifying the given user.
	GenerateToken(userID uuid.UUID) (string, error)

	// ValidateToken parses a token string and returns its claims if the signature and expiry hold.
	ValidateToken(tokenString string) (*Claims, error)
}
