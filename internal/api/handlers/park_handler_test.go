package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/api/handlers"
	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

func newParkHandler(parks ...*entities.Park) *handlers.ParkHandler {
	repo := newFakeParkRepo(parks...)
	return handlers.NewParkHandler(services.NewParkService(repo, nil))
}

func TestParkHandler_ListParks(t *testing.T) {
	handler := newParkHandler(
		&entities.Park{ID: "P001", Name: "Prospect Park"},
		&entities.Park{ID: "P002", Name: "Astoria Park"},
	)

	req := httptest.NewRequest("GET", "/api/parks", nil)
	w := httptest.NewRecorder()

	handler.ListParks(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Parks []*entities.Park `json:"parks"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Len(t, response.Parks, 2)
}

func TestParkHandler_ListParks_BadWaterfront(t *testing.T) {
	handler := newParkHandler()

	req := httptest.NewRequest("GET", "/api/parks?waterfront=maybe", nil)
	w := httptest.NewRecorder()

	handler.ListParks(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "waterfront must be true or false")
}

func TestParkHandler_ListParks_BadMinRating(t *testing.T) {
	handler := newParkHandler()

	for _, raw := range []string{"abc", "-1", "5.5"} {
		req := httptest.NewRequest("GET", "/api/parks?min_rating="+raw, nil)
		w := httptest.NewRecorder()

		handler.ListParks(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "min_rating=%s", raw)
	}
}

func TestParkHandler_GetPark_NotFound(t *testing.T) {
	handler := newParkHandler()

	req := httptest.NewRequest("GET", "/api/parks/NOPE", nil)
	req.SetPathValue("id", "NOPE")
	w := httptest.NewRecorder()

	handler.GetPark(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParkHandler_SearchParks_RequiresQuery(t *testing.T) {
	handler := newParkHandler()

	req := httptest.NewRequest("GET", "/api/parks/search", nil)
	w := httptest.NewRecorder()

	handler.SearchParks(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "q is required")
}

func TestParkHandler_SearchParks_FallbackMatch(t *testing.T) {
	handler := newParkHandler(
		&entities.Park{ID: "P001", Name: "Prospect Park"},
		&entities.Park{ID: "P002", Name: "Astoria Park"},
	)

	req := httptest.NewRequest("GET", "/api/parks/search?q=astoria", nil)
	w := httptest.NewRecorder()

	handler.SearchParks(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Parks []*entities.Park `json:"parks"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "P002", response.Parks[0].ID)
}
