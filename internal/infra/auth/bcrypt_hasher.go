// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"runtime"
	"time"

	"booksum/config"
	"booksum/internal/domain/service"
	"booksum/internal/errors"

	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// HashObserver receives the duration of each bcrypt computation.
type HashObserver interface {
	ObserveHash(d time.Duration)
}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
// At most `workers` computations run at once; callers over the limit wait
// on their context instead of piling onto the CPU.
type bcryptHasher struct {
	cost     int
	sem      *semaphore.Weighted
	observer HashObserver
}

// HasherParams holds dependencies for the bcrypt hasher, injected by Fx.
type HasherParams struct {
	fx.In

	Config   *config.Config
	Observer HashObserver `optional:"true"`
}

// NewBcryptHasher builds the hasher from auth.bcryptCost and auth.hashWorkers.
func NewBcryptHasher(params HasherParams) (service.PasswordHasher, error) {
	return NewBcryptHasherWithCost(params.Config.Auth.BcryptCost, params.Config.Auth.HashWorkers, params.Observer)
}

// NewBcryptHasherWithCost is the non-DI constructor. workers <= 0 means GOMAXPROCS.
func NewBcryptHasherWithCost(cost, workers int, observer HashObserver) (service.PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &bcryptHasher{
		cost:     cost,
		sem:      semaphore.NewWeighted(int64(workers)),
		observer: observer,
	}, nil
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	var hashed []byte
	err := h.run(ctx, func() error {
		var hashErr error
		hashed, hashErr = bcrypt.GenerateFromPassword([]byte(password), h.cost)

		return hashErr
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return string(hashed), nil
}

// Check compares a plaintext password with a bcrypt hash. A mismatch is
// (false, nil); a hash bcrypt cannot parse is reported as an error.
func (h *bcryptHasher) Check(ctx context.Context, password, hash string) (bool, error) {
	var compareErr error
	err := h.run(ctx, func() error {
		compareErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to verify password")
	}

	switch {
	case compareErr == nil:
		return true, nil
	case errors.Is(compareErr, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Wrap(compareErr, "malformed password hash")
	}
}

func (h *bcryptHasher) run(ctx context.Context, fn func() error) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "waiting for hash worker")
	}
	defer h.sem.Release(1)

	start := time.Now()
	err := fn()
	if h.observer != nil {
		h.observer.ObserveHash(time.Since(start))
	}

	return err
}
