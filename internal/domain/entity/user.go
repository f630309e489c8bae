// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// User is the persisted account record. It is created once on registration
// and never mutated or deleted by the identity core.
type User struct {
	ID           string    // Store-assigned identifier (UUID or hex ObjectID depending on the driver).
	Name         string    // Trimmed display name.
	Email        string    // Lowercase-normalized email, unique across all users.
	PasswordHash string    // bcrypt hash; the plaintext is never stored.
	Role         Role      // Defaults to RoleUser.
	CreatedAt    time.Time // UTC creation timestamp.
}

// UserView is the read-only projection handed to callers after a successful
// login. It has no password hash field by construction.
type UserView struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser builds a fresh record for a registration with the default role.
func NewUser(name, email, passwordHash string, now time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now.UTC(),
	}
}

// View projects the record into its hash-free form.
func (u *User) View() *UserView {
	if u == nil {
		return nil
	}

	role := u.Role
	if !role.IsValid() {
		role = RoleUser
	}

	return &UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      role,
		CreatedAt: u.CreatedAt,
	}
}
