package handlers

import (
	"net/http"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
)

// RecommendationHandler handles rule-based recommendation HTTP requests
type RecommendationHandler struct {
	recommendationService *services.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendationService *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

// GetRecommendations handles GET /api/recommendations/{username}
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 10)

	result, err := h.recommendationService.Recommend(r.Context(), username, limit)
	if err != nil {
		handleServiceError(w, err, "failed to compute recommendations")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
