// Package repository declares the storage ports implemented under internal/infra/persistence.
package repository

import (
	"context"
	"errors"

	"splitpay/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned by lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the persistence operations the auth use cases need.
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves the user whose email matches exactly.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
