// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"strings"

	"booksum/internal/delivery/http/middleware"
	"booksum/internal/delivery/http/response"
	"booksum/internal/delivery/http/sessionstore"
	"booksum/internal/delivery/http/validator"
	"booksum/internal/domain/credential"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/session"
	"booksum/internal/errors"
	"booksum/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RegisterRequest is the body of POST /auth/register. Tags only bound sizes;
// credential rules are reported by the service.
type RegisterRequest struct {
	Name            string  `json:"name" validate:"max=100"`
	Email           string  `json:"email" validate:"max=254"`
	Password        string  `json:"password" validate:"max=256"`
	ConfirmPassword *string `json:"confirm_password,omitempty" validate:"omitempty,max=256"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=256"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc       usecase.AuthUsecase
	sessions *sessionstore.Store
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, sessions *sessionstore.Store) *AuthHandler {
	return &AuthHandler{uc: uc, sessions: sessions}
}

// Register handles the registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.AppError(c, domainerrors.ErrValidationFailed, usecase.MsgValidationPrefix+validator.Describe(err))
	}
	if req.ConfirmPassword != nil {
		if violations := credential.ValidateConfirmation(req.Password, *req.ConfirmPassword); len(violations) > 0 {
			return response.AppError(c, domainerrors.ErrValidationFailed, usecase.MsgValidationPrefix+strings.Join(violations, "; "))
		}
	}

	result := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if !result.Success() {
		return response.AppError(c, outcomeError(result.Outcome), result.Message)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"user_id": result.Data}, result.Message)
}

// Login verifies credentials and establishes the session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	// Shape failures say no more than a wrong password would.
	if err := c.Validate(&req); err != nil {
		return response.AppError(c, domainerrors.ErrInvalidCredentials, usecase.MsgInvalidCredentials)
	}

	result := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		Identifier: strings.ToLower(req.Email),
	})
	if !result.Success() {
		return response.AppError(c, outcomeError(result.Outcome), result.Message)
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return errors.WithStack(err)
	}
	session.Establish(sess.Values, result.Data)
	if err := h.sessions.Save(c, sess); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result.Data, result.Message)
}

// Logout clears the five session keys.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return errors.WithStack(err)
	}

	result := session.Logout(sess.Values, nil)
	if err := h.sessions.Save(c, sess); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, result.Message)
}

// Me returns the user stored in the session by AuthMiddleware.
func (h *AuthHandler) Me(c echo.Context) error {
	return response.Success(c, http.StatusOK, c.Get(middleware.ContextKeyCurrentUser), "OK")
}

func outcomeError(outcome usecase.Outcome) domainerrors.AppError {
	switch outcome {
	case usecase.OutcomeValidationFailed:
		return domainerrors.ErrValidationFailed
	case usecase.OutcomeDuplicateEmail:
		return domainerrors.ErrDuplicateEmail
	case usecase.OutcomeInvalidCredentials:
		return domainerrors.ErrInvalidCredentials
	case usecase.OutcomeRateLimited:
		return domainerrors.ErrRateLimited
	case usecase.OutcomeStoreError:
		return domainerrors.NewStoreError(nil, "")
	default:
		return domainerrors.ErrInternalError
	}
}
