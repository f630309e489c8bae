package repository

import "context"

// AttemptLedger records failed login attempts per identifier over a trailing
// window. Only timestamps inside the window are retained, and an identifier
// with no remaining timestamps has no entry at all.
type AttemptLedger interface {
	// Count prunes expired attempts for key and returns how many remain.
	// Calling it repeatedly without new attempts yields the same value.
	Count(ctx context.Context, key string) (int, error)

	// Reserve prunes, checks and appends as one atomic step. When fewer than
	// limit attempts remain it records a new attempt and returns its token
	// with allowed set; otherwise nothing is recorded.
	Reserve(ctx context.Context, key string, limit int) (token string, allowed bool, err error)

	// Release drops the attempt a Reserve call returned. Unknown tokens are
	// ignored.
	Release(ctx context.Context, key, token string) error

	// Reset drops every attempt recorded for key.
	Reset(ctx context.Context, key string) error
}
