// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"splitpay/config"
	"splitpay/internal/domain/service"
	"splitpay/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds the hasher with the configured cost, falling back to bcrypt.DefaultCost.
func NewBcryptHasher(cfg *config.Config) (service.PasswordHasher, error) {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost, which must lie
// within [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasherWithCost(cost int) (service.PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &bcryptHasher{cost: cost}, nil
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash in constant time.
func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
