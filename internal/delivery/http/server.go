package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"booksum/config"
	"booksum/internal/delivery"
	"booksum/internal/delivery/http/middleware"
	"booksum/internal/delivery/http/router"
	"booksum/internal/delivery/http/validator"
	"booksum/internal/domain/lifecycle"
	"booksum/internal/errors"
	"booksum/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type HTTPParams struct {
	fx.In
	fx.Lifecycle

	Config       *config.Config
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	RouterParams router.RouterParams
}

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// NewEcho builds the fully wired echo instance; tests drive it with httptest.
func NewEcho(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, routerParams router.RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	e.Use(middleware.NewRequestIDMiddleware(logger).Process)
	e.Use(middleware.NewLoggerMiddleware(logger, cfg).Handle)
	e.Use(middleware.NewMetricsMiddleware(m).Handle)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize))

	router.NewRouter(routerParams).RegisterRoutes(e)

	return e
}

func NewServer(params HTTPParams) (delivery.Delivery, error) {
	e := NewEcho(params.Config, params.Logger, params.Metrics, params.RouterParams)

	timeouts := params.Config.HTTP.Timeouts
	e.Server.ReadTimeout = timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = timeouts.WriteTimeout
	e.Server.IdleTimeout = timeouts.IdleTimeout

	srv := &httpServer{
		cfg:    params.Config,
		logger: params.Logger,
		server: e,
	}

	params.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
