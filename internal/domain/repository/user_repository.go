// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"booksum/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the user-record store. Implementations must back the
// email column with a unique index; a violation is reported as
// domainerrors.ErrDuplicateEmail, every other fault as *domainerrors.StoreError.
type UserRepository interface {
	// Create inserts the record and returns the store-assigned identifier.
	// On success user.ID is set as well.
	Create(ctx context.Context, user *entity.User) (string, error)

	// FindByEmail looks up a user by the already-normalized email.
	// It returns ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
