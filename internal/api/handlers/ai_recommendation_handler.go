package handlers

import (
	"net/http"

	"github.com/findmypark/findmypark-nyc/internal/application/services"
)

// AIRecommendationHandler handles LLM-backed recommendation HTTP requests
type AIRecommendationHandler struct {
	aiService *services.AIRecommendationService
}

// NewAIRecommendationHandler creates a new AI recommendation handler
func NewAIRecommendationHandler(aiService *services.AIRecommendationService) *AIRecommendationHandler {
	return &AIRecommendationHandler{
		aiService: aiService,
	}
}

// GetAIRecommendations handles GET /api/recommendations/{username}/ai.
// Upstream failure is a 502 with a fallback hint, distinct from a valid
// empty recommendation list.
func (h *AIRecommendationHandler) GetAIRecommendations(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}
	prompt := r.URL.Query().Get("prompt")
	limit := parseIntParam(r.URL.Query().Get("limit"), 10)

	result, err := h.aiService.Recommend(r.Context(), username, prompt, limit)
	if err != nil {
		handleServiceError(w, err, "failed to compute ai recommendations")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
