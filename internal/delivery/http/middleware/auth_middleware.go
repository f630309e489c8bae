package middleware

import (
	"booksum/internal/delivery/http/response"
	"booksum/internal/delivery/http/sessionstore"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/session"
	"booksum/internal/errors"

	"github.com/labstack/echo/v4"
)

// ContextKeyCurrentUser is where Authenticate stores the *entity.UserView.
const ContextKeyCurrentUser = "current_user"

// AuthMiddleware guards routes that need a logged-in session.
type AuthMiddleware struct {
	sessions *sessionstore.Store
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions *sessionstore.Store) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate rejects requests whose session lacks the logged-in flag.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := m.sessions.Get(c)
		if err != nil {
			return errors.Wrap(err, "authenticate")
		}

		user := session.CurrentUser(sess.Values)
		if user == nil {
			return response.AppError(c, domainerrors.ErrUnauthenticated, "")
		}

		c.Set(ContextKeyCurrentUser, user)

		return next(c)
	}
}
