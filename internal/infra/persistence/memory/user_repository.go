// Package memory is an in-process user store for local runs and tests.
package memory

import (
	"context"
	"sync"

	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"

	"github.com/google/uuid"
)

// userRepository keeps users keyed by email, which doubles as the unique index.
type userRepository struct {
	mu      sync.RWMutex
	byEmail map[string]entity.User
}

// NewUserRepository returns an empty store.
func NewUserRepository() repository.UserRepository {
	return &userRepository{byEmail: make(map[string]entity.User)}
}

// Create stores a copy of the user under a fresh UUID.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domainerrors.NewStoreError(err, "insert user")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byEmail[user.Email]; exists {
		return "", domainerrors.ErrDuplicateEmail.WrapMessage("users.email unique")
	}

	user.ID = uuid.NewString()
	repo.byEmail[user.Email] = *user

	return user.ID, nil
}

// FindByEmail returns a copy so callers cannot mutate stored state.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewStoreError(err, "find user by email")
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	user, ok := repo.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}
