// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"
	"booksum/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user. The users_email_key constraint turns a second
// registration for the same email into ErrDuplicateEmail.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", domainerrors.NewStoreError(err, "generate user id")
	}

	userM := fromUserDomain(user)
	userM.ID = id

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return "", domainerrors.ErrDuplicateEmail.WrapMessage("users_email_key")
		}

		return "", domainerrors.NewStoreError(errors.Wrap(err, "failed to create user"), "insert user")
	}

	user.ID = id.String()

	return user.ID, nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where("email = ?", email).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewStoreError(errors.Wrap(err, "failed to find user by email"), "find user by email")
	}

	return toUserDomain(&userM), nil
}

func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		CreatedAt:    user.CreatedAt,
	}
}

func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:           userM.ID.String(),
		Name:         userM.Name,
		Email:        userM.Email,
		PasswordHash: userM.PasswordHash,
		Role:         entity.Role(userM.Role),
		CreatedAt:    userM.CreatedAt.UTC(),
	}
}
