package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"booksum/config"
	"booksum/internal/domain/lifecycle"
	"booksum/internal/domain/repository"
	logs "booksum/internal/infra/log"
	"booksum/internal/infra/persistence"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// initdb prepares the configured store: Mongo gets its indexes, Postgres its
// migrations. Both happen in the store's start hook, so starting and stopping
// the graph is the whole job.
func main() {
	_ = godotenv.Load()

	var (
		cfg    *config.Config
		logger *slog.Logger
	)

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			persistence.NewUserRepository,
		),
		fx.Invoke(func(repository.UserRepository) {}),
		fx.Populate(&cfg, &logger),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Store.Driver == config.DriverMemory {
		logger.Warn("store.driver is memory, nothing to initialize")
	} else {
		logger.Info("Store initialized", slog.String("driver", cfg.Store.Driver))
	}

	if err := app.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
