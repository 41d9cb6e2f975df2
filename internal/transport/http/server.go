// Package http provides the HTTP server for the evaluation coordinator.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	v1 "github.com/evalboard/evalboard/internal/transport/http/v1"
)

// NewServer creates and configures the coordinator's HTTP server.
func NewServer(h *v1.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	return e
}
