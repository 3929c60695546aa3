// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"splitpay/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	UPIID    string `json:"upi_id" validate:"max=100"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// UserOutput is the public view of a user. It has no password field.
type UserOutput struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	UPIID string    `json:"upi_id,omitempty"`
}

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *UserOutput
}

// LoginOutput carries the signed token issued on a successful login.
type LoginOutput struct {
	Token string
}

// NewUserOutput projects the identifying fields of a user. The payment handle is
// included only when withPaymentHandle is set.
func NewUserOutput(user *entity.User, withPaymentHandle bool) *UserOutput {
	out := &UserOutput{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
	if withPaymentHandle {
		out.UPIID = user.UPIID
	}

	return out
}

// AuthUsecase defines registration, login and profile lookup.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserOutput, error)
}
