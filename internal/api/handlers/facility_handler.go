package handlers

import (
	"net/http"
	"strconv"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
)

// FacilityHandler handles facility and trail HTTP requests
type FacilityHandler struct {
	facilityService *services.FacilityService
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilityService *services.FacilityService) *FacilityHandler {
	return &FacilityHandler{
		facilityService: facilityService,
	}
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.FacilityFilter{
		FacilityType: query.Get("type"),
		ParkID:       query.Get("park_id"),
		Limit:        parseIntParam(query.Get("limit"), 50),
		Offset:       parseIntParam(query.Get("offset"), 0),
	}

	facilities, err := h.facilityService.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err, "failed to list facilities")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "facility ID must be an integer")
		return
	}

	facility, err := h.facilityService.GetByID(r.Context(), facilityID)
	if err != nil {
		handleServiceError(w, err, "failed to get facility")
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// ListParkFacilities handles GET /api/parks/{id}/facilities
func (h *FacilityHandler) ListParkFacilities(w http.ResponseWriter, r *http.Request) {
	parkID := r.PathValue("id")
	if parkID == "" {
		respondWithError(w, http.StatusBadRequest, "park ID is required")
		return
	}

	facilities, err := h.facilityService.ListByPark(r.Context(), parkID)
	if err != nil {
		handleServiceError(w, err, "failed to list park facilities")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"park_id":    parkID,
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// ListParkTrails handles GET /api/parks/{id}/trails
func (h *FacilityHandler) ListParkTrails(w http.ResponseWriter, r *http.Request) {
	parkID := r.PathValue("id")
	if parkID == "" {
		respondWithError(w, http.StatusBadRequest, "park ID is required")
		return
	}

	trails, err := h.facilityService.ListTrailsByPark(r.Context(), parkID)
	if err != nil {
		handleServiceError(w, err, "failed to list park trails")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"park_id": parkID,
		"trails":  trails,
		"count":   len(trails),
	})
}
