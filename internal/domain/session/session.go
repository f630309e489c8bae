// Package session projects the authenticated user onto an externally owned
// key/value session bag. Only the five keys below are read or written.
package session

import (
	"booksum/internal/domain/entity"
)

// Session keys shared with the cookie layer.
const (
	KeyLoggedIn  = "logged_in"
	KeyUserID    = "user_id"
	KeyUserName  = "user_name"
	KeyUserEmail = "user_email"
	KeyUserRole  = "user_role"
)

// MsgLoggedOut is returned by Logout.
const MsgLoggedOut = "Logged out successfully"

// Keys lists every key this package owns.
var Keys = []string{KeyLoggedIn, KeyUserID, KeyUserName, KeyUserEmail, KeyUserRole}

// Values is the session bag as gorilla/sessions exposes it.
type Values = map[any]any

// State is the typed view of the five session fields.
type State struct {
	LoggedIn  bool
	UserID    string
	UserName  string
	UserEmail string
	UserRole  string
}

// Load reads State out of values. Missing or mistyped entries read as zero.
func Load(values Values) State {
	return State{
		LoggedIn:  boolValue(values, KeyLoggedIn),
		UserID:    stringValue(values, KeyUserID),
		UserName:  stringValue(values, KeyUserName),
		UserEmail: stringValue(values, KeyUserEmail),
		UserRole:  stringValue(values, KeyUserRole),
	}
}

// Store writes all five fields into values.
func (s State) Store(values Values) {
	values[KeyLoggedIn] = s.LoggedIn
	values[KeyUserID] = s.UserID
	values[KeyUserName] = s.UserName
	values[KeyUserEmail] = s.UserEmail
	values[KeyUserRole] = s.UserRole
}

// Establish records a successful login.
func Establish(values Values, view *entity.UserView) {
	if view == nil {
		return
	}

	State{
		LoggedIn:  true,
		UserID:    view.ID,
		UserName:  view.Name,
		UserEmail: view.Email,
		UserRole:  view.Role.String(),
	}.Store(values)
}

// IsLoggedIn reports whether the logged-in flag is set.
func IsLoggedIn(values Values) bool {
	return boolValue(values, KeyLoggedIn)
}

// CurrentUser returns the projected user, or nil when the flag is absent.
// The session does not carry a creation time, so CreatedAt is zero.
func CurrentUser(values Values) *entity.UserView {
	state := Load(values)
	if !state.LoggedIn {
		return nil
	}

	return &entity.UserView{
		ID:    state.UserID,
		Name:  state.UserName,
		Email: state.UserEmail,
		Role:  entity.Role(state.UserRole),
	}
}

// LogoutResult mirrors the structured outcome of the other operations.
type LogoutResult struct {
	Success bool
	Message string
}

// Logout removes the five keys, leaves any other entry alone and then calls
// redirect when it is non-nil.
func Logout(values Values, redirect func()) LogoutResult {
	for _, key := range Keys {
		delete(values, key)
	}

	if redirect != nil {
		redirect()
	}

	return LogoutResult{Success: true, Message: MsgLoggedOut}
}

func boolValue(values Values, key string) bool {
	v, _ := values[key].(bool)

	return v
}

func stringValue(values Values, key string) string {
	v, _ := values[key].(string)

	return v
}
