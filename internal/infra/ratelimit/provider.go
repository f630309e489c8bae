package ratelimit

import (
	"context"
	"log/slog"

	"booksum/config"
	"booksum/internal/domain/repository"
	"booksum/internal/errors"

	"go.uber.org/fx"
)

// LedgerParams holds dependencies for the ledger provider, injected by Fx.
type LedgerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// NewLedger builds the backend named by rateLimit.backend and ties its
// background work to the application lifecycle.
func NewLedger(params LedgerParams) (repository.AttemptLedger, error) {
	cfg := params.Config.RateLimit

	switch cfg.Backend {
	case config.LedgerMemory:
		ledger := NewMemoryLedger(cfg.Window, nil)
		janitor := NewJanitor(ledger, cfg.SweepInterval, params.Logger)

		params.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				janitor.Start()
				params.Logger.Info("Login attempt ledger started", slog.String("backend", cfg.Backend), slog.Duration("window", cfg.Window))

				return nil
			},
			OnStop: janitor.Stop,
		})

		return ledger, nil

	case config.LedgerRedis:
		client, err := NewRedisClient(context.Background(), params.Config.Redis.URL)
		if err != nil {
			return nil, err
		}

		params.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		params.Logger.Info("Login attempt ledger connected", slog.String("backend", cfg.Backend), slog.Duration("window", cfg.Window))

		return NewRedisLedger(client, params.Config.Redis.KeyPrefix, cfg.Window, nil), nil

	default:
		return nil, errors.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}
