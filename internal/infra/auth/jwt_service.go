package auth

import (
	"time"

	"splitpay/config"
	"splitpay/internal/domain/service"
	"splitpay/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
// A missing secret is a configuration error and stops the application from starting.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := defaultTokenTTL
	if cfg.Auth != nil && cfg.Auth.TokenTTL > 0 {
		ttl = cfg.Auth.TokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateToken signs a token whose id and sub claims carry the user ID.
func (s *jwtService) GenerateToken(userID uuid.UUID) (string, error) {
	issuedAt := s.now()
	claims := service.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// ValidateToken checks signature, algorithm and expiry, and returns the claims.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}
