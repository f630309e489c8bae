// Package persistence selects the user-record store named by store.driver.
package persistence

import (
	"log/slog"

	"booksum/config"
	"booksum/internal/domain/repository"
	"booksum/internal/errors"
	"booksum/internal/infra/persistence/memory"
	mongostore "booksum/internal/infra/persistence/mongo"
	"booksum/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewUserRepository opens the configured backend and registers its lifecycle hooks.
func NewUserRepository(params Params) (repository.UserRepository, error) {
	driver := params.Config.Store.Driver
	params.Logger.Info("Opening user store", slog.String("driver", driver))

	switch driver {
	case config.DriverMemory:
		return memory.NewUserRepository(), nil

	case config.DriverMongo:
		db, err := mongostore.New(mongostore.Params{Lifecycle: params.Lifecycle, Config: params.Config, Logger: params.Logger})
		if err != nil {
			return nil, err
		}

		return mongostore.NewUserRepository(db), nil

	case config.DriverPostgres:
		db, err := postgres.New(postgres.Params{Lifecycle: params.Lifecycle, Config: params.Config, Logger: params.Logger})
		if err != nil {
			return nil, err
		}

		return postgres.NewUserRepository(db), nil

	default:
		return nil, errors.Errorf("unknown store driver %q", driver)
	}
}
