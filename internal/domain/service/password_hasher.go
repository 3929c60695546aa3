// Package service defines the ports the use cases depend on.
package service

// MaxPasswordBytes is the longest input bcrypt accepts. Longer passwords are
// rejected before hashing instead of being truncated.
const MaxPasswordBytes = 72

// PasswordHasher turns plaintext passwords into salted hashes and verifies them.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Check reports whether password matches hash. Any malformed hash counts as a mismatch.
	Check(password, hash string) bool
}
