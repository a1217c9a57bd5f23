package routes

import (
	"net/http"

	"github.com/findmypark/findmypark-nyc/internal/api/handlers"
	"github.com/findmypark/findmypark-nyc/internal/api/middleware"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	parkHandler             *handlers.ParkHandler
	facilityHandler         *handlers.FacilityHandler
	reviewHandler           *handlers.ReviewHandler
	userHandler             *handlers.UserHandler
	recommendationHandler   *handlers.RecommendationHandler
	aiRecommendationHandler *handlers.AIRecommendationHandler
	sseHandler              *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	parkHandler *handlers.ParkHandler,
	facilityHandler *handlers.FacilityHandler,
	reviewHandler *handlers.ReviewHandler,
	userHandler *handlers.UserHandler,
	recommendationHandler *handlers.RecommendationHandler,
	aiRecommendationHandler *handlers.AIRecommendationHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                     http.NewServeMux(),
		parkHandler:             parkHandler,
		facilityHandler:         facilityHandler,
		reviewHandler:           reviewHandler,
		userHandler:             userHandler,
		recommendationHandler:   recommendationHandler,
		aiRecommendationHandler: aiRecommendationHandler,
		sseHandler:              sseHandler,
		metrics:                 metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Park endpoints
	r.mux.HandleFunc("GET /api/parks", r.parkHandler.ListParks)
	r.mux.HandleFunc("GET /api/parks/search", r.parkHandler.SearchParks)
	r.mux.HandleFunc("GET /api/parks/{id}", r.parkHandler.GetPark)
	r.mux.HandleFunc("GET /api/parks/{id}/statistics", r.parkHandler.GetParkStatistics)
	r.mux.HandleFunc("GET /api/boroughs/{borough}/top-rated", r.parkHandler.TopRatedByBorough)

	// Facility and trail endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("GET /api/parks/{id}/facilities", r.facilityHandler.ListParkFacilities)
	r.mux.HandleFunc("GET /api/parks/{id}/trails", r.facilityHandler.ListParkTrails)

	// Review endpoints
	r.mux.HandleFunc("POST /api/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("POST /api/reviews/batch", r.reviewHandler.CreateReviewBatch)
	r.mux.HandleFunc("GET /api/reviews/{id}", r.reviewHandler.GetReview)
	r.mux.HandleFunc("PUT /api/reviews/{id}", r.reviewHandler.UpdateReview)
	r.mux.HandleFunc("DELETE /api/reviews/{id}", r.reviewHandler.DeleteReview)
	r.mux.HandleFunc("GET /api/parks/{id}/reviews", r.reviewHandler.ListParkReviews)
	r.mux.HandleFunc("GET /api/facilities/{id}/reviews", r.reviewHandler.ListFacilityReviews)
	r.mux.HandleFunc("GET /api/users/{id}/reviews", r.reviewHandler.ListUserReviews)

	// User endpoints
	r.mux.HandleFunc("POST /api/users", r.userHandler.RegisterUser)
	r.mux.HandleFunc("GET /api/users/{username}", r.userHandler.GetUser)
	r.mux.HandleFunc("GET /api/users/{username}/preferences", r.userHandler.GetPreferences)
	r.mux.HandleFunc("PUT /api/users/{username}/preferences", r.userHandler.UpdatePreferences)
	r.mux.HandleFunc("GET /api/users/{username}/favorites", r.userHandler.GetFavorites)
	r.mux.HandleFunc("POST /api/users/{username}/favorites", r.userHandler.AddFavorite)
	r.mux.HandleFunc("DELETE /api/users/{username}/favorites/{parkId}", r.userHandler.RemoveFavorite)

	// Recommendation endpoints
	r.mux.HandleFunc("GET /api/recommendations/{username}", r.recommendationHandler.GetRecommendations)
	r.mux.HandleFunc("GET /api/recommendations/{username}/ai", r.aiRecommendationHandler.GetAIRecommendations)

	// Live review event streams
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/events/reviews", r.sseHandler.StreamReviewUpdates)
		r.mux.HandleFunc("GET /api/events/parks/{id}", r.sseHandler.StreamParkReviewUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so every response gets CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
