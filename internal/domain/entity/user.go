// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account of the payment-splitting backend.
// Rows are owned by the datastore; this module only creates and reads them.
type User struct {
	ID           uuid.UUID // Generated by the datastore on insert.
	Name         string    // Display name.
	Email        string    // Login identifier, unique per account.
	PasswordHash string    // bcrypt hash of the password. Never the plaintext.
	UPIID        string    // UPI payment handle used to settle shares.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
