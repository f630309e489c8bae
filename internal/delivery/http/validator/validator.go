// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator checks request DTO shape (lengths, presence). Credential
// rules live in the domain, not in struct tags.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a validator with required-on-structs enabled.
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validate.Struct(i)
}

// Describe renders validation errors as "field: tag" pairs joined by "; ".
// Any other error is returned as its message.
func Describe(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}

	return strings.Join(parts, "; ")
}
