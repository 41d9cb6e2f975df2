// Package v1 provides HTTP handlers for the evaluation coordinator API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evalboard/evalboard/internal/config"
	"github.com/evalboard/evalboard/internal/coordinator"
	"github.com/evalboard/evalboard/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	coordinator *coordinator.Coordinator
	store       store.Store
	config      *config.Config
}

// NewHandler creates a new handler.
func NewHandler(c *coordinator.Coordinator, s store.Store, cfg *config.Config) *Handler {
	return &Handler{
		coordinator: c,
		store:       s,
		config:      cfg,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Evaluation run API
	e.POST("/v1/evaluations", h.StartEvaluation)
	e.GET("/v1/evaluations/:run_id", h.GetEvaluation)
	e.POST("/v1/evaluations/:run_id/cancel", h.CancelEvaluation)

	// Dataset API
	e.GET("/v1/datasets/:dataset/datapoints", h.ListDatapoints)
	e.GET("/v1/datasets/:dataset/datapoints/all", h.ListAllDatapoints)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
