// Package sessionstore backs the session key/value bag with a signed cookie
// via gorilla/sessions.
package sessionstore

import (
	"log/slog"
	"net/http"

	"booksum/config"
	"booksum/internal/errors"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

// Store loads and saves the named session for an echo request.
type Store struct {
	store  sessions.Store
	name   string
	logger *slog.Logger
}

// New builds a cookie store from the session config section.
func New(cfg *config.Config, logger *slog.Logger) *Store {
	cookies := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(int(cfg.Session.MaxAge.Seconds()))

	return &Store{store: cookies, name: cfg.Session.Name, logger: logger}
}

// Get returns the request's session. A cookie that fails to decode (rotated
// secret, tampering) yields a fresh empty session instead of an error.
func (s *Store) Get(c echo.Context) (*sessions.Session, error) {
	sess, err := s.store.Get(c.Request(), s.name)
	if err != nil && sess != nil {
		s.logger.Warn("Discarding undecodable session cookie", slog.String("error", err.Error()))

		return sess, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	return sess, nil
}

// Save writes the session cookie onto the response.
func (s *Store) Save(c echo.Context, sess *sessions.Session) error {
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return errors.Wrap(err, "save session")
	}

	return nil
}
