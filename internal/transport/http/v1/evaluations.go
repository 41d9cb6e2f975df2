package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evalboard/evalboard/internal/domain"
)

// StartEvaluation launches an evaluation run and waits for the engine's
// start acknowledgment.
// POST /v1/evaluations
func (h *Handler) StartEvaluation(c echo.Context) error {
	var req domain.StartEvaluationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.EvaluationName == "" || req.DatasetName == "" || req.VariantName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "evaluation_name, dataset_name and variant_name are required",
		})
	}

	result, err := h.coordinator.StartEvaluation(c.Request().Context(), req)
	if err != nil {
		// The run never started; nothing was registered.
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// GetEvaluation returns a point-in-time snapshot of a run.
// GET /v1/evaluations/:run_id
func (h *Handler) GetEvaluation(c echo.Context) error {
	runID := c.Param("run_id")

	snapshot, ok := h.coordinator.GetRunningEvaluation(runID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}

	return c.JSON(http.StatusOK, snapshot)
}

// CancelEvaluation requests best-effort cancellation of a run.
// POST /v1/evaluations/:run_id/cancel
func (h *Handler) CancelEvaluation(c echo.Context) error {
	runID := c.Param("run_id")

	result := h.coordinator.CancelEvaluation(runID)
	return c.JSON(http.StatusOK, result)
}
