// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "context"

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(ctx context.Context, password string) (string, error)

	// Check compares a plaintext password with a hash. A mismatch is
	// (false, nil); a malformed hash or a cancelled context is an error.
	Check(ctx context.Context, password, hash string) (bool, error)
}
