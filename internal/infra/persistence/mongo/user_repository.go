package mongo

import (
	"context"

	"booksum/internal/domain/entity"
	domainerrors "booksum/internal/domain/errors"
	"booksum/internal/domain/repository"
	"booksum/internal/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userRepository struct {
	users *mongo.Collection
}

// NewUserRepository returns a repository over the users collection. The
// email_unique index must exist; see EnsureIndexes.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{users: db.Collection(CollectionUsers)}
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	doc := fromUserDomain(user)
	doc.ID = bson.NewObjectID()

	if _, err := repo.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domainerrors.ErrDuplicateEmail.WrapMessage("users.email_unique")
		}

		return "", domainerrors.NewStoreError(errors.Wrap(err, "insert user"), "insert user")
	}

	user.ID = doc.ID.Hex()

	return user.ID, nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDocument
	err := repo.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, domainerrors.NewStoreError(errors.Wrap(err, "find user by email"), "find user by email")
	}

	return doc.toDomain(), nil
}
