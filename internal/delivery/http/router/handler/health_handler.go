package handler

import (
	"net/http"

	"booksum/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness only; it does not probe the store.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}
