package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"
	"booksum/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Needs Docker; set BOOKSUM_INTEGRATION=1 to run.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("BOOKSUM_INTEGRATION") == "" {
		t.Skip("BOOKSUM_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("booksum"),
		tcpostgres.WithUsername("booksum"),
		tcpostgres.WithPassword("booksum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(nil, nil),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))

	return db
}

func TestUserRepository_Postgres(t *testing.T) {
	db := setupPostgres(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := entity.NewUser("Alice Doe", "alice@example.com", "$2a$04$hash", time.Now())
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "Alice Doe", found.Name)
	assert.Equal(t, entity.RoleUser, found.Role)
	assert.Equal(t, "$2a$04$hash", found.PasswordHash)
	assert.WithinDuration(t, user.CreatedAt, found.CreatedAt, time.Millisecond)

	_, err = repo.Create(ctx, entity.NewUser("Bob", "alice@example.com", "h", time.Now()))
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateEmail))

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.FindByEmail(cancelled, "alice@example.com")
	assert.True(t, domainerrors.IsStoreError(err))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupPostgres(t)

	assert.NoError(t, Migrate(context.Background(), db))
}
