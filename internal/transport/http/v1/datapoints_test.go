package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/evalboard/evalboard/internal/domain"
	"github.com/evalboard/evalboard/tests/helpers"
)

type datapointPage struct {
	Dataset    string             `json:"dataset"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	Count      int                `json:"count"`
	Datapoints []domain.Datapoint `json:"datapoints"`
}

func listRequest(e *echo.Echo, h *Handler, dataset, query string, all bool) (*httptest.ResponseRecorder, error) {
	target := "/v1/datasets/" + dataset + "/datapoints"
	if all {
		target += "/all"
	}
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("dataset")
	c.SetParamValues(dataset)

	if all {
		return rec, h.ListAllDatapoints(c)
	}
	return rec, h.ListDatapoints(c)
}

func TestListDatapointsDefaultsToConfiguredPageSize(t *testing.T) {
	e := echo.New()
	h, db, _ := newTestHandler(t, &scriptedEngine{})
	helpers.SeedDatapoints(t, db, "haiku-examples", 5)

	rec, err := listRequest(e, h, "haiku-examples", "", false)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page datapointPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Limit)
	assert.Len(t, page.Datapoints, 3)
	assert.Equal(t, "dp_0000", page.Datapoints[0].ID)
}

func TestListDatapointsHonorsLimitAndOffset(t *testing.T) {
	e := echo.New()
	h, db, _ := newTestHandler(t, &scriptedEngine{})
	helpers.SeedDatapoints(t, db, "haiku-examples", 5)

	rec, err := listRequest(e, h, "haiku-examples", "limit=2&offset=4", false)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page datapointPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Datapoints, 1)
	assert.Equal(t, "dp_0004", page.Datapoints[0].ID)
}

func TestListDatapointsRejectsBadQuery(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t, &scriptedEngine{})

	for _, query := range []string{"limit=0", "limit=abc", "offset=-1"} {
		rec, err := listRequest(e, h, "haiku-examples", query, false)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestListAllDatapointsDrainsEveryPage(t *testing.T) {
	e := echo.New()
	h, db, _ := newTestHandler(t, &scriptedEngine{})
	helpers.SeedDatapoints(t, db, "haiku-examples", 7)

	rec, err := listRequest(e, h, "haiku-examples", "", true)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page datapointPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 7, page.Count)
	assert.Len(t, page.Datapoints, 7)
}

func TestListAllDatapointsEmptyDataset(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t, &scriptedEngine{})

	rec, err := listRequest(e, h, "empty-set", "", true)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page datapointPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Count)
	assert.NotNil(t, page.Datapoints)
}
