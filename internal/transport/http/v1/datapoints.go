package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/evalboard/evalboard/internal/domain"
	"github.com/evalboard/evalboard/internal/pagination"
)

// ListDatapoints returns one page of a dataset's datapoints.
// GET /v1/datasets/:dataset/datapoints?limit=&offset=
func (h *Handler) ListDatapoints(c echo.Context) error {
	dataset := c.Param("dataset")

	limit := h.config.PageSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = n
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "offset must be a non-negative integer"})
		}
		offset = n
	}

	datapoints, err := h.store.ListDatapoints(c.Request().Context(), dataset, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if datapoints == nil {
		datapoints = []domain.Datapoint{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dataset":    dataset,
		"limit":      limit,
		"offset":     offset,
		"datapoints": datapoints,
	})
}

// ListAllDatapoints drains every page of a dataset into one response.
// GET /v1/datasets/:dataset/datapoints/all
func (h *Handler) ListAllDatapoints(c echo.Context) error {
	dataset := c.Param("dataset")

	datapoints, err := pagination.DrainAll(c.Request().Context(), h.config.PageSize,
		func(ctx context.Context, limit, offset int) ([]domain.Datapoint, error) {
			return h.store.ListDatapoints(ctx, dataset, limit, offset)
		})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if datapoints == nil {
		datapoints = []domain.Datapoint{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dataset":    dataset,
		"count":      len(datapoints),
		"datapoints": datapoints,
	})
}
