package middleware

import (
	"strconv"
	"time"

	"booksum/internal/infra/metrics"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Handle observes the request after the handler and error handler ran.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Let the error handler pick the status before we read it.
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		m.metrics.ObserveRequest(route, c.Request().Method, strconv.Itoa(c.Response().Status), time.Since(start))

		return nil
	}
}
