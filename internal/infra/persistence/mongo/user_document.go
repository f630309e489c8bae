package mongo

import (
	"time"

	"booksum/internal/domain/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// userDocument is the shape of a document in the users collection.
type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Role         string        `bson:"role"`
	CreatedAt    time.Time     `bson:"created_at"`
}

func fromUserDomain(user *entity.User) *userDocument {
	return &userDocument{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		CreatedAt:    user.CreatedAt,
	}
}

func (d *userDocument) toDomain() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         entity.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
