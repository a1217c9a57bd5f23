package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// ParkHandler handles park catalog HTTP requests
type ParkHandler struct {
	parkService *services.ParkService
}

// NewParkHandler creates a new park handler
func NewParkHandler(parkService *services.ParkService) *ParkHandler {
	return &ParkHandler{
		parkService: parkService,
	}
}

// ListParks handles GET /api/parks
func (h *ParkHandler) ListParks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.ParkFilter{
		Borough:  query.Get("borough"),
		ParkType: query.Get("park_type"),
		Limit:    parseIntParam(query.Get("limit"), 50),
		Offset:   parseIntParam(query.Get("offset"), 0),
	}
	if raw := query.Get("waterfront"); raw != "" {
		waterfront, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "waterfront must be true or false")
			return
		}
		filter.IsWaterfront = &waterfront
	}
	if raw := query.Get("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil || minRating < 0 || minRating > 5 {
			respondWithError(w, http.StatusBadRequest, "min_rating must be a number between 0 and 5")
			return
		}
		filter.MinRating = minRating
	}

	parks, err := h.parkService.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err, "failed to list parks")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"parks": parks,
		"count": len(parks),
	})
}

// GetPark handles GET /api/parks/{id}
func (h *ParkHandler) GetPark(w http.ResponseWriter, r *http.Request) {
	parkID := r.PathValue("id")
	if parkID == "" {
		respondWithError(w, http.StatusBadRequest, "park ID is required")
		return
	}

	park, err := h.parkService.GetByID(r.Context(), parkID)
	if err != nil {
		handleServiceError(w, err, "failed to get park")
		return
	}

	respondWithJSON(w, http.StatusOK, park)
}

// GetParkStatistics handles GET /api/parks/{id}/statistics
func (h *ParkHandler) GetParkStatistics(w http.ResponseWriter, r *http.Request) {
	parkID := r.PathValue("id")
	if parkID == "" {
		respondWithError(w, http.StatusBadRequest, "park ID is required")
		return
	}

	stats, err := h.parkService.Statistics(r.Context(), parkID)
	if err != nil {
		handleServiceError(w, err, "failed to compute park statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// SearchParks handles GET /api/parks/search
func (h *ParkHandler) SearchParks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 20)

	parks, err := h.parkService.Search(r.Context(), query, limit)
	if err != nil {
		handleServiceError(w, err, "failed to search parks")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"parks": parks,
		"count": len(parks),
	})
}

// TopRatedByBorough handles GET /api/boroughs/{borough}/top-rated
func (h *ParkHandler) TopRatedByBorough(w http.ResponseWriter, r *http.Request) {
	borough := r.PathValue("borough")
	if borough == "" {
		respondWithError(w, http.StatusBadRequest, "borough is required")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 5)

	parks, err := h.parkService.TopRatedByBorough(r.Context(), borough, limit)
	if err != nil {
		handleServiceError(w, err, "failed to get top rated parks")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"borough": borough,
		"parks":   parks,
		"count":   len(parks),
	})
}

// Helper functions

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// handleServiceError maps AppError types to HTTP statuses. Internal detail
// never leaks: unknown errors collapse to a generic 500.
func handleServiceError(w http.ResponseWriter, err error, fallbackMessage string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusUnauthorized, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithJSON(w, http.StatusBadGateway, map[string]string{
				"error":           appErr.Message,
				"fallbackMessage": "AI recommendations are unavailable, please use standard recommendations",
			})
		default:
			respondWithError(w, http.StatusInternalServerError, fallbackMessage)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallbackMessage)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
