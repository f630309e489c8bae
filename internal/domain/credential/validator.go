// Package credential checks candidate names, emails and passwords before any
// hashing or persistence work happens. Every function here is pure.
package credential

import (
	"regexp"
	"strings"
)

// Violation messages returned by ValidateRegistration.
const (
	MsgNameTooShort      = "Name must be at least 2 characters."
	MsgNameCharset       = "Name must contain only letters and spaces."
	MsgEmailFormat       = "Invalid email format."
	MsgPasswordTooShort  = "Password must be at least 8 characters long."
	MsgPasswordTooLong   = "Password must be at most 72 bytes long."
	MsgPasswordUppercase = "Password must contain at least 1 uppercase letter."
	MsgPasswordLowercase = "Password must contain at least 1 lowercase letter."
	MsgPasswordDigit     = "Password must contain at least 1 number."
	MsgPasswordSpecial   = "Password must contain at least 1 special character."
	MsgPasswordMismatch  = "Passwords do not match."

	// MsgInvalidCredentials is the only message login validation ever returns.
	MsgInvalidCredentials = "Invalid credentials"
)

const (
	minNameLength     = 2
	minPasswordLength = 8
	// bcrypt only accepts the first 72 bytes of input.
	maxPasswordBytes = 72

	// SpecialCharacters is the fixed set a password must draw at least one character from.
	SpecialCharacters = `!@#$%^&*(),.?":{}|<>`
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z ]+$`)
)

// ValidateRegistration evaluates every rule and returns all violations in a
// stable order. An empty slice means the input is acceptable.
func ValidateRegistration(name, email, password string) []string {
	violations := make([]string, 0)

	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLength {
		violations = append(violations, MsgNameTooShort)
	}
	if !namePattern.MatchString(trimmed) {
		violations = append(violations, MsgNameCharset)
	}

	if !IsEmail(email) {
		violations = append(violations, MsgEmailFormat)
	}

	violations = append(violations, passwordViolations(password)...)

	return violations
}

// ValidateConfirmation compares the password with its confirmation field.
func ValidateConfirmation(password, confirm string) []string {
	if password != confirm {
		return []string{MsgPasswordMismatch}
	}

	return nil
}

// ValidateLogin checks only the email shape and that a password was given.
// It never says which check failed.
func ValidateLogin(email, password string) (bool, string) {
	if !IsEmail(email) || password == "" {
		return false, MsgInvalidCredentials
	}

	return true, ""
}

// IsEmail reports whether s matches the local@domain.tld pattern.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func passwordViolations(password string) []string {
	var out []string

	if len(password) < minPasswordLength {
		out = append(out, MsgPasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		out = append(out, MsgPasswordTooLong)
	}
	if !containsAny(password, isUpperASCII) {
		out = append(out, MsgPasswordUppercase)
	}
	if !containsAny(password, isLowerASCII) {
		out = append(out, MsgPasswordLowercase)
	}
	if !containsAny(password, isDigitASCII) {
		out = append(out, MsgPasswordDigit)
	}
	if !strings.ContainsAny(password, SpecialCharacters) {
		out = append(out, MsgPasswordSpecial)
	}

	return out
}

func containsAny(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}

	return false
}

func isUpperASCII(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLowerASCII(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigitASCII(r rune) bool { return r >= '0' && r <= '9' }
