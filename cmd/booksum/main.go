package main

import (
	"context"
	"log/slog"
	"os"

	"booksum/config"
	"booksum/internal/delivery"
	"booksum/internal/delivery/http"
	"booksum/internal/delivery/http/middleware"
	"booksum/internal/delivery/http/router/handler"
	"booksum/internal/delivery/http/sessionstore"
	"booksum/internal/infra/auth"
	logs "booksum/internal/infra/log"
	"booksum/internal/infra/metrics"
	"booksum/internal/infra/persistence"
	"booksum/internal/infra/ratelimit"
	"booksum/internal/usecase/impl"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		fx.Annotate(
			metrics.New,
			fx.As(fx.Self()),
			fx.As(new(impl.OutcomeRecorder)),
			fx.As(new(auth.HashObserver)),
		),
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			persistence.NewUserRepository,
			ratelimit.NewLedger,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			sessionstore.New,
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
