package errors

import (
	"context"
	"net/http"
	"testing"

	"booksum/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_WrapMessageKeepsIdentity(t *testing.T) {
	err := ErrDuplicateEmail.WrapMessage("users.email unique index")

	assert.True(t, errors.Is(err, ErrDuplicateEmail))

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.HTTPCode())
	assert.Equal(t, "Email already registered", appErr.Message())
}

func TestStoreError_HidesCauseFromMessage(t *testing.T) {
	cause := context.DeadlineExceeded
	err := errors.Wrap(NewStoreError(cause, "find user by email"), "login lookup")

	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Database error", appErr.Message())
	assert.Equal(t, "DATABASE_ERROR", appErr.ErrorCode())
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestIsStoreError_FalseForDomainErrors(t *testing.T) {
	assert.False(t, IsStoreError(ErrDuplicateEmail))
	assert.False(t, IsStoreError(nil))
}
