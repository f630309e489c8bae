package impl

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booksum/internal/domain/credential"
	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"
	"booksum/internal/errors"
	"booksum/internal/infra/auth"
	"booksum/internal/infra/persistence/memory"
	"booksum/internal/infra/ratelimit"
	mockRepo "booksum/internal/mocks/repository"
	mockSvc "booksum/internal/mocks/service"
	"booksum/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	aliceName     = "Alice Doe"
	aliceEmail    = "alice@example.com"
	alicePassword = "Str0ng!Pw"
)

// authFixtures wires the service with mockery mocks for fault injection.
type authFixtures struct {
	service  usecase.AuthUsecase
	userRepo *mockRepo.MockUserRepository
	ledger   *mockRepo.MockAttemptLedger
	hasher   *mockSvc.MockPasswordHasher
	spy      *outcomeSpy
}

func createMockedAuthService(t *testing.T) authFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	ledger := mockRepo.NewMockAttemptLedger(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	spy := &outcomeSpy{}

	svc := NewAuthService(AuthServiceParams{
		UserRepo: userRepo,
		Ledger:   ledger,
		Hasher:   hasher,
		Config:   newTestConfig(),
		Logger:   newDiscardLogger(),
		Recorder: spy,
	})

	return authFixtures{service: svc, userRepo: userRepo, ledger: ledger, hasher: hasher, spy: spy}
}

// realFixtures wires the service with the in-memory store, ledger and a real
// bcrypt hasher at minimum cost. The store is wrapped so tests can count calls.
type realFixtures struct {
	service usecase.AuthUsecase
	store   *countingRepo
	ledger  *ratelimit.MemoryLedger
}

type countingRepo struct {
	repository.UserRepository
	finds atomic.Int64
}

func (r *countingRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.finds.Add(1)

	return r.UserRepository.FindByEmail(ctx, email)
}

func createRealAuthService(t *testing.T) realFixtures {
	t.Helper()

	hasher, err := auth.NewBcryptHasherWithCost(bcrypt.MinCost, 2, nil)
	require.NoError(t, err)

	cfg := newTestConfig()
	store := &countingRepo{UserRepository: memory.NewUserRepository()}
	ledger := ratelimit.NewMemoryLedger(cfg.RateLimit.Window, nil)

	svc := NewAuthService(AuthServiceParams{
		UserRepo: store,
		Ledger:   ledger,
		Hasher:   hasher,
		Config:   cfg,
		Logger:   newDiscardLogger(),
	})

	return realFixtures{service: svc, store: store, ledger: ledger}
}

func registerAlice(t *testing.T, f realFixtures) string {
	t.Helper()

	res := f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})
	require.True(t, res.Success(), res.Message)

	return res.Data
}

// --- Register ---

func TestAuthService_Register_Success(t *testing.T) {
	f := createMockedAuthService(t)
	ctx := context.Background()

	f.hasher.EXPECT().Hash(ctx, alicePassword).Return("$2a$12$hash", nil)
	f.userRepo.EXPECT().
		Create(mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, "Alice Doe", user.Name)
			assert.Equal(t, "$2a$12$hash", user.PasswordHash)
			assert.Equal(t, entity.RoleUser, user.Role)
			assert.Equal(t, time.UTC, user.CreatedAt.Location())
		}).
		Return("user-1", nil)

	res := f.service.Register(ctx, usecase.RegisterInput{Name: "  Alice Doe ", Email: "ALICE@Example.com", Password: alicePassword})

	assert.True(t, res.Success())
	assert.Equal(t, usecase.MsgRegistered, res.Message)
	assert.Equal(t, "user-1", res.Data)
	assert.Equal(t, recordedOutcome{operation: "register", outcome: "success"}, f.spy.last())
}

func TestAuthService_Register_ValidationFailureSkipsStore(t *testing.T) {
	f := createMockedAuthService(t)

	res := f.service.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "nope", Password: "weak"})

	assert.Equal(t, usecase.OutcomeValidationFailed, res.Outcome)
	assert.Empty(t, res.Data)
	assert.True(t, strings.HasPrefix(res.Message, usecase.MsgValidationPrefix))
	assert.Contains(t, res.Message, credential.MsgNameTooShort+"; ")
	assert.Contains(t, res.Message, credential.MsgEmailFormat)
	assert.Contains(t, res.Message, credential.MsgPasswordSpecial)
	// Mocks without expectations fail the test if touched.
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := createMockedAuthService(t)

	f.hasher.EXPECT().Hash(mock.Anything, alicePassword).Return("hash", nil)
	f.userRepo.EXPECT().Create(mock.Anything, mock.Anything).
		Return("", domainerrors.ErrDuplicateEmail.WrapMessage("users_email_key"))

	res := f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeDuplicateEmail, res.Outcome)
	assert.Equal(t, usecase.MsgDuplicateEmail, res.Message)
	assert.Empty(t, res.Data)
}

func TestAuthService_Register_StoreFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "connectivity", err: domainerrors.NewStoreError(errors.New("connection refused"), "insert user")},
		{name: "timeout", err: domainerrors.NewStoreError(context.DeadlineExceeded, "insert user")},
		{name: "unclassified", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createMockedAuthService(t)
			f.hasher.EXPECT().Hash(mock.Anything, alicePassword).Return("hash", nil)
			f.userRepo.EXPECT().Create(mock.Anything, mock.Anything).Return("", tt.err)

			res := f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})

			assert.Equal(t, usecase.OutcomeStoreError, res.Outcome)
			assert.Equal(t, usecase.MsgDatabaseError, res.Message)
			assert.NotContains(t, res.Message, "connection refused")
		})
	}
}

func TestAuthService_Register_StoreCallIsBounded(t *testing.T) {
	f := createMockedAuthService(t)

	f.hasher.EXPECT().Hash(mock.Anything, alicePassword).Return("hash", nil)
	f.userRepo.EXPECT().Create(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ *entity.User) (string, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)

			return "user-1", nil
		})

	res := f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})
	assert.True(t, res.Success())
}

func TestAuthService_Register_HashFailureIsInternal(t *testing.T) {
	f := createMockedAuthService(t)
	f.hasher.EXPECT().Hash(mock.Anything, alicePassword).Return("", errors.New("entropy exhausted"))

	res := f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeInternalError, res.Outcome)
	assert.Equal(t, usecase.MsgInternalError, res.Message)
}

func TestAuthService_Register_PanicIsInternal(t *testing.T) {
	f := createMockedAuthService(t)
	f.hasher.EXPECT().Hash(mock.Anything, alicePassword).Return("hash", nil)
	f.userRepo.EXPECT().Create(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, *entity.User) (string, error) { panic("driver bug") })

	var res usecase.RegisterResult
	require.NotPanics(t, func() {
		res = f.service.Register(context.Background(), usecase.RegisterInput{Name: aliceName, Email: aliceEmail, Password: alicePassword})
	})

	assert.Equal(t, usecase.OutcomeInternalError, res.Outcome)
	assert.Equal(t, usecase.MsgInternalError, res.Message)
	assert.Equal(t, recordedOutcome{operation: "register", outcome: "internal_error"}, f.spy.last())
}

func TestAuthService_Register_DuplicateAfterNormalization(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()

	first := f.service.Register(ctx, usecase.RegisterInput{Name: aliceName, Email: "ALICE@Example.com", Password: alicePassword})
	require.True(t, first.Success(), first.Message)

	second := f.service.Register(ctx, usecase.RegisterInput{Name: "Bob", Email: "alice@example.com", Password: "An0ther!Pw"})
	assert.False(t, second.Success())
	assert.Equal(t, usecase.MsgDuplicateEmail, second.Message)

	stored, err := f.store.UserRepository.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.NotEqual(t, alicePassword, stored.PasswordHash)
}

// --- Login ---

func TestAuthService_Login_ValidationFailureSkipsLedgerAndStore(t *testing.T) {
	f := createMockedAuthService(t)

	for _, input := range []usecase.LoginInput{
		{Email: "not-an-email", Password: alicePassword},
		{Email: aliceEmail, Password: ""},
	} {
		res := f.service.Login(context.Background(), input)
		assert.Equal(t, usecase.OutcomeInvalidCredentials, res.Outcome)
		assert.Equal(t, usecase.MsgInvalidCredentials, res.Message)
		assert.Nil(t, res.Data)
	}
}

func TestAuthService_Login_IdentifierDefaultsToLowercasedEmail(t *testing.T) {
	f := createMockedAuthService(t)
	user := &entity.User{ID: "u1", Name: aliceName, Email: aliceEmail, PasswordHash: "hash", Role: entity.RoleUser}

	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("tok", true, nil)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).Return(user, nil)
	f.hasher.EXPECT().Check(mock.Anything, alicePassword, "hash").Return(true, nil)
	f.ledger.EXPECT().Reset(mock.Anything, aliceEmail).Return(nil)

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: "Alice@Example.COM", Password: alicePassword})

	require.True(t, res.Success())
	assert.Equal(t, usecase.MsgLoginSuccessful, res.Message)
	assert.Equal(t, &entity.UserView{ID: "u1", Name: aliceName, Email: aliceEmail, Role: entity.RoleUser}, res.Data)
}

func TestAuthService_Login_CustomIdentifier(t *testing.T) {
	f := createMockedAuthService(t)

	f.ledger.EXPECT().Reserve(mock.Anything, "10.0.0.7", 5).Return("tok", true, nil)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).Return(nil, repository.ErrUserNotFound)

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword, Identifier: "10.0.0.7"})

	assert.Equal(t, usecase.OutcomeInvalidCredentials, res.Outcome)
}

func TestAuthService_Login_RateLimitedDoesNotTouchStore(t *testing.T) {
	f := createMockedAuthService(t)
	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("", false, nil)

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeRateLimited, res.Outcome)
	assert.Equal(t, usecase.MsgRateLimited, res.Message)
	assert.Equal(t, recordedOutcome{operation: "login", outcome: "rate_limited"}, f.spy.last())
}

func TestAuthService_Login_MalformedHashCountsAsFailure(t *testing.T) {
	f := createMockedAuthService(t)
	user := &entity.User{ID: "u1", Email: aliceEmail, PasswordHash: "not-bcrypt"}

	// The reservation stands: no Release or Reset is expected.
	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("tok", true, nil)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).Return(user, nil)
	f.hasher.EXPECT().Check(mock.Anything, alicePassword, "not-bcrypt").Return(false, errors.New("crypto/bcrypt: hashedSecret too short"))

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeInvalidCredentials, res.Outcome)
	assert.Equal(t, usecase.MsgInvalidCredentials, res.Message)
}

func TestAuthService_Login_StoreErrorIsDatabaseErrorAndReleasesAttempt(t *testing.T) {
	f := createMockedAuthService(t)

	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("tok", true, nil)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).
		Return(nil, domainerrors.NewStoreError(context.DeadlineExceeded, "find user by email"))
	f.ledger.EXPECT().Release(mock.Anything, aliceEmail, "tok").Return(nil)

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeStoreError, res.Outcome)
	assert.Equal(t, usecase.MsgDatabaseError, res.Message)
}

func TestAuthService_Login_LedgerFailureIsInternal(t *testing.T) {
	f := createMockedAuthService(t)
	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("", false, errors.New("redis: connection pool timeout"))

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeInternalError, res.Outcome)
	assert.Equal(t, usecase.MsgInternalError, res.Message)
}

func TestAuthService_Login_PanicIsInternal(t *testing.T) {
	f := createMockedAuthService(t)
	f.ledger.EXPECT().Reserve(mock.Anything, aliceEmail, 5).Return("tok", true, nil)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).
		RunAndReturn(func(context.Context, string) (*entity.User, error) { panic("nil map") })

	res := f.service.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeInternalError, res.Outcome)
	assert.Equal(t, usecase.MsgInternalError, res.Message)
}

func TestAuthService_Login_SixthAttemptRateLimitedEvenWithCorrectPassword(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()
	registerAlice(t, f)

	for i := range 5 {
		res := f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: "Wr0ng!Pw"})
		require.Equal(t, usecase.OutcomeInvalidCredentials, res.Outcome, "attempt %d", i+1)
	}
	findsBefore := f.store.finds.Load()

	res := f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: alicePassword})

	assert.Equal(t, usecase.OutcomeRateLimited, res.Outcome)
	assert.Equal(t, usecase.MsgRateLimited, res.Message)
	assert.Equal(t, findsBefore, f.store.finds.Load(), "rate-limited call must not reach the store")

	count, err := f.ledger.Count(ctx, aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "rejection is not itself an attempt")
}

func TestAuthService_Login_SuccessResetsLedger(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()
	registerAlice(t, f)

	for range 4 {
		f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: "Wr0ng!Pw"})
	}

	require.True(t, f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: alicePassword}).Success())
	assert.Zero(t, f.ledger.Len())

	f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: "Wr0ng!Pw"})
	count, err := f.ledger.Count(ctx, aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()
	registerAlice(t, f)

	unknown := f.service.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: alicePassword})
	wrong := f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: "Wr0ng!Pw"})

	assert.False(t, unknown.Success())
	assert.False(t, wrong.Success())
	assert.Equal(t, unknown, wrong)
}

func TestAuthService_RegisterThenLoginRoundTrip(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()

	reg := f.service.Register(ctx, usecase.RegisterInput{Name: aliceName, Email: "ALICE@Example.com", Password: alicePassword})
	require.True(t, reg.Success(), reg.Message)

	res := f.service.Login(ctx, usecase.LoginInput{Email: "ALICE@Example.com", Password: alicePassword})

	require.True(t, res.Success(), res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, reg.Data, res.Data.ID)
	assert.Equal(t, "alice@example.com", res.Data.Email)
	assert.Equal(t, aliceName, res.Data.Name)
	assert.Equal(t, entity.RoleUser, res.Data.Role)
	assert.False(t, res.Data.CreatedAt.IsZero())
}

func TestAuthService_Login_ConcurrentGuessesAreBoundedByLimit(t *testing.T) {
	f := createRealAuthService(t)
	ctx := context.Background()
	registerAlice(t, f)

	const workers = 40
	outcomes := make([]usecase.Outcome, workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		go func() {
			defer wg.Done()
			<-start
			outcomes[i] = f.service.Login(ctx, usecase.LoginInput{Email: aliceEmail, Password: "Wr0ng!Pw"}).Outcome
		}()
	}
	close(start)
	wg.Wait()

	counts := map[usecase.Outcome]int{}
	for _, o := range outcomes {
		counts[o]++
	}

	assert.Equal(t, 5, counts[usecase.OutcomeInvalidCredentials], "password checks")
	assert.Equal(t, workers-5, counts[usecase.OutcomeRateLimited])

	count, err := f.ledger.Count(ctx, aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestAuthService_Login_StoreFaultDoesNotConsumeAttempt(t *testing.T) {
	hasher, err := auth.NewBcryptHasherWithCost(bcrypt.MinCost, 1, nil)
	require.NoError(t, err)

	cfg := newTestConfig()
	ledger := ratelimit.NewMemoryLedger(cfg.RateLimit.Window, nil)
	userRepo := mockRepo.NewMockUserRepository(t)
	userRepo.EXPECT().FindByEmail(mock.Anything, aliceEmail).
		Return(nil, domainerrors.NewStoreError(errors.New("connection refused"), "find user by email"))

	svc := NewAuthService(AuthServiceParams{
		UserRepo: userRepo,
		Ledger:   ledger,
		Hasher:   hasher,
		Config:   cfg,
		Logger:   newDiscardLogger(),
	})

	for range 7 {
		res := svc.Login(context.Background(), usecase.LoginInput{Email: aliceEmail, Password: alicePassword})
		require.Equal(t, usecase.OutcomeStoreError, res.Outcome)
	}

	assert.Zero(t, ledger.Len())
}
