// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"booksum/config"
	deliverycontext "booksum/internal/delivery/context"
	"booksum/internal/domain/credential"
	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"
	"booksum/internal/domain/service"
	"booksum/internal/errors"
	"booksum/internal/usecase"

	"go.uber.org/fx"
)

const (
	opRegister = "register"
	opLogin    = "login"
)

// OutcomeRecorder is notified once per finished operation.
type OutcomeRecorder interface {
	ObserveOutcome(operation, outcome string)
}

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	ledger       repository.AttemptLedger
	hasher       service.PasswordHasher
	recorder     OutcomeRecorder
	maxAttempts  int
	storeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Ledger   repository.AttemptLedger
	Hasher   service.PasswordHasher
	Config   *config.Config
	Logger   *slog.Logger
	Recorder OutcomeRecorder `optional:"true"`
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		ledger:       params.Ledger,
		hasher:       params.Hasher,
		recorder:     params.Recorder,
		maxAttempts:  params.Config.RateLimit.MaxAttempts,
		storeTimeout: params.Config.Store.Timeout,
		now:          time.Now,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the candidate, hashes the password and inserts the record.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (result usecase.RegisterResult) {
	defer func() {
		if r := recover(); r != nil {
			srv.logPanic(ctx, opRegister, r)
			result = failure[string](usecase.OutcomeInternalError, usecase.MsgInternalError)
		}
		srv.observe(opRegister, result.Outcome)
	}()

	violations := credential.ValidateRegistration(input.Name, input.Email, input.Password)
	if len(violations) > 0 {
		srv.log(ctx).Debug("Registration rejected by validation", slog.Int("violations", len(violations)))

		return failure[string](usecase.OutcomeValidationFailed, usecase.MsgValidationPrefix+strings.Join(violations, "; "))
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	hash, err := srv.hasher.Hash(ctx, input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.String("email", email), slog.String("error", fmt.Sprintf("%+v", err)))

		return failure[string](usecase.OutcomeInternalError, usecase.MsgInternalError)
	}

	user := entity.NewUser(name, email, hash, srv.now())

	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	id, err := srv.userRepo.Create(storeCtx, user)
	if errors.Is(err, domainerrors.ErrDuplicateEmail) {
		srv.log(ctx).Warn("Registration for already registered email", slog.String("email", email))

		return failure[string](usecase.OutcomeDuplicateEmail, usecase.MsgDuplicateEmail)
	}
	if err != nil {
		srv.log(ctx).Error("Failed to insert user", slog.String("email", email), slog.String("error", fmt.Sprintf("%+v", err)))

		return failure[string](usecase.OutcomeStoreError, usecase.MsgDatabaseError)
	}

	srv.log(ctx).Info("User registered", slog.String("userID", id), slog.String("email", email))

	return usecase.RegisterResult{Outcome: usecase.OutcomeSuccess, Message: usecase.MsgRegistered, Data: id}
}

// Login verifies credentials behind the failed-attempt ledger.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (result usecase.LoginResult) {
	defer func() {
		if r := recover(); r != nil {
			srv.logPanic(ctx, opLogin, r)
			result = failure[*entity.UserView](usecase.OutcomeInternalError, usecase.MsgInternalError)
		}
		srv.observe(opLogin, result.Outcome)
	}()

	if ok, _ := credential.ValidateLogin(input.Email, input.Password); !ok {
		return invalidCredentials()
	}

	email := strings.ToLower(input.Email)
	key := input.Identifier
	if key == "" {
		key = email
	}

	// The attempt is recorded before the lookup so concurrent guesses for one
	// key can never exceed the limit. Success resets it; a store fault
	// releases it.
	token, allowed, err := srv.ledger.Reserve(ctx, key, srv.maxAttempts)
	if err != nil {
		srv.log(ctx).Error("Failed to reserve login attempt", slog.String("error", fmt.Sprintf("%+v", err)))

		return failure[*entity.UserView](usecase.OutcomeInternalError, usecase.MsgInternalError)
	}
	if !allowed {
		srv.log(ctx).Warn("Login rate limited", slog.String("identifier", key), slog.Int("limit", srv.maxAttempts))

		return failure[*entity.UserView](usecase.OutcomeRateLimited, usecase.MsgRateLimited)
	}

	user, err := srv.findUser(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Login for unknown email", slog.String("identifier", key))

		return invalidCredentials()
	}
	if err != nil {
		srv.log(ctx).Error("Failed to look up user", slog.String("error", fmt.Sprintf("%+v", err)))
		srv.release(ctx, key, token)

		return failure[*entity.UserView](usecase.OutcomeStoreError, usecase.MsgDatabaseError)
	}

	matched, err := srv.hasher.Check(ctx, input.Password, user.PasswordHash)
	if err != nil {
		srv.log(ctx).Warn("Password verification failed", slog.String("userID", user.ID), slog.String("error", err.Error()))

		return invalidCredentials()
	}
	if !matched {
		srv.log(ctx).Info("Login with wrong password", slog.String("userID", user.ID))

		return invalidCredentials()
	}

	if err := srv.ledger.Reset(ctx, key); err != nil {
		// The credentials are valid; a stale entry only expires later.
		srv.log(ctx).Error("Failed to reset login attempt ledger", slog.String("error", fmt.Sprintf("%+v", err)))
	}

	srv.log(ctx).Info("User logged in", slog.String("userID", user.ID))

	return usecase.LoginResult{Outcome: usecase.OutcomeSuccess, Message: usecase.MsgLoginSuccessful, Data: user.View()}
}

func (srv *authService) findUser(ctx context.Context, email string) (*entity.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	return srv.userRepo.FindByEmail(storeCtx, email)
}

// release gives back a reservation that did not end in a password check.
func (srv *authService) release(ctx context.Context, key, token string) {
	if err := srv.ledger.Release(ctx, key, token); err != nil {
		srv.log(ctx).Error("Failed to release login attempt", slog.String("error", fmt.Sprintf("%+v", err)))
	}
}

func (srv *authService) observe(operation string, outcome usecase.Outcome) {
	if srv.recorder != nil {
		srv.recorder.ObserveOutcome(operation, outcome.String())
	}
}

func (srv *authService) logPanic(ctx context.Context, operation string, recovered any) {
	srv.log(ctx).Error("Recovered from panic",
		slog.String("operation", operation),
		slog.Any("panic", recovered),
		slog.String("stack", string(debug.Stack())),
	)
}

func invalidCredentials() usecase.LoginResult {
	return failure[*entity.UserView](usecase.OutcomeInvalidCredentials, usecase.MsgInvalidCredentials)
}

func failure[T any](outcome usecase.Outcome, message string) usecase.Result[T] {
	return usecase.Result[T]{Outcome: outcome, Message: message}
}
