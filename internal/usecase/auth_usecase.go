// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"booksum/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
// Identifier buckets failed attempts; empty means the lowercased email.
type LoginInput struct {
	Email      string
	Password   string
	Identifier string
}

// --- Output ---

// Outcome is the closed set of results an authentication operation can end in.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationFailed
	OutcomeDuplicateEmail
	OutcomeInvalidCredentials
	OutcomeRateLimited
	OutcomeStoreError
	OutcomeInternalError
)

var outcomeNames = map[Outcome]string{
	OutcomeSuccess:            "success",
	OutcomeValidationFailed:   "validation_failed",
	OutcomeDuplicateEmail:     "duplicate_email",
	OutcomeInvalidCredentials: "invalid_credentials",
	OutcomeRateLimited:        "rate_limited",
	OutcomeStoreError:         "store_error",
	OutcomeInternalError:      "internal_error",
}

// String returns a stable snake_case label, used for logs and metrics.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}

	return "unknown"
}

// Caller-visible messages.
const (
	MsgValidationPrefix   = "Validation failed: "
	MsgRegistered         = "User registered successfully"
	MsgDuplicateEmail     = "Email already registered"
	MsgInvalidCredentials = "Invalid credentials"
	MsgRateLimited        = "Too many failed attempts. Try again later."
	MsgLoginSuccessful    = "Login successful"
	MsgDatabaseError      = "Database error"
	MsgInternalError      = "Internal error"
)

// Result is the structured outcome every public operation returns. Data is
// the zero value unless Outcome is OutcomeSuccess.
type Result[T any] struct {
	Outcome Outcome
	Message string
	Data    T
}

// Success reports whether the operation succeeded.
func (r Result[T]) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// RegisterResult carries the new record's identifier on success.
type RegisterResult = Result[string]

// LoginResult carries the authenticated user view on success.
type LoginResult = Result[*entity.UserView]

// AuthUsecase defines registration and login. Neither method returns an
// error: expected domain conditions and faults alike are folded into the
// Result.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) RegisterResult
	Login(ctx context.Context, input LoginInput) LoginResult
}
