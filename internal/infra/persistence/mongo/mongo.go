// Package mongo stores users in a MongoDB collection.
package mongo

import (
	"context"
	"log/slog"

	"booksum/config"
	"booksum/internal/domain/lifecycle"
	"booksum/internal/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/fx"
)

// Collection names shared with the rest of the application.
const (
	CollectionUsers     = "users"
	CollectionBooks     = "books"
	CollectionSummaries = "summaries"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New connects the client lazily; the start hook pings the primary and
// ensures indexes, the stop hook disconnects.
func New(params Params) (*mongo.Database, error) {
	cfg := params.Config.Mongo

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	db := client.Database(cfg.Database)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}

			if err := EnsureIndexes(ctx, db); err != nil {
				return err
			}

			params.Logger.Info("Connected to MongoDB", slog.String("database", cfg.Database))

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			return errors.WithStack(client.Disconnect(stopCtx))
		},
	})

	return db, nil
}

// EnsureIndexes creates the application's indexes. The unique email index is
// what makes duplicate registration detectable; the book and summary indexes
// serve the rest of the application. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			collection: CollectionUsers,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
		{collection: CollectionBooks, model: mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		{collection: CollectionSummaries, model: mongo.IndexModel{Keys: bson.D{{Key: "book_id", Value: 1}}}},
		{collection: CollectionSummaries, model: mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
	}

	for _, spec := range specs {
		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			return errors.Wrapf(err, "create index on %s", spec.collection)
		}
	}

	return nil
}
