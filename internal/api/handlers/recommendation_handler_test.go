package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/api/handlers"
	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
)

func ratingPtr(v float64) *float64 { return &v }

func recommendationFixtureRepos() (*fakeParkRepo, *fakeUserRepo) {
	parkRepo := newFakeParkRepo(
		&entities.Park{ID: "P001", Name: "Prospect Park", Borough: "Brooklyn", AvgRating: ratingPtr(4.5)},
		&entities.Park{ID: "P002", Name: "Astoria Park", Borough: "Queens", AvgRating: ratingPtr(3.0)},
	)
	userRepo := &fakeUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada", Preferences: `{"preferredBoroughs": ["Brooklyn"]}`},
	}}
	return parkRepo, userRepo
}

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	parkRepo, userRepo := recommendationFixtureRepos()
	svc := services.NewRecommendationService(parkRepo, userRepo)
	handler := handlers.NewRecommendationHandler(svc)

	req := httptest.NewRequest("GET", "/api/recommendations/ada", nil)
	req.SetPathValue("username", "ada")
	w := httptest.NewRecorder()

	handler.GetRecommendations(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result services.RecommendationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.Len(t, result.Top10, 2)
	assert.Equal(t, "P001", result.Top10[0].ParkID)
	require.Len(t, result.Top3, 2)
	assert.Equal(t, "P001", result.Top3[0].Park.ID)
	require.NotNil(t, result.Preferences)
	assert.Equal(t, []string{"Brooklyn"}, result.Preferences.PreferredBoroughs)
}

func TestRecommendationHandler_UnknownUser(t *testing.T) {
	parkRepo, userRepo := recommendationFixtureRepos()
	svc := services.NewRecommendationService(parkRepo, userRepo)
	handler := handlers.NewRecommendationHandler(svc)

	req := httptest.NewRequest("GET", "/api/recommendations/nobody", nil)
	req.SetPathValue("username", "nobody")
	w := httptest.NewRecorder()

	handler.GetRecommendations(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

type stubRecommender struct {
	result *entities.AIRecommendationResult
	err    error
}

func (s *stubRecommender) RecommendParks(ctx context.Context, req *providers.ParkRecommendationRequest) (*entities.AIRecommendationResult, error) {
	return s.result, s.err
}

func TestAIRecommendationHandler_UpstreamFailureIs502WithFallback(t *testing.T) {
	parkRepo, userRepo := recommendationFixtureRepos()
	svc := services.NewAIRecommendationService(parkRepo, userRepo, &stubRecommender{
		err: providers.ErrRecommenderUnavailable,
	})
	handler := handlers.NewAIRecommendationHandler(svc)

	req := httptest.NewRequest("GET", "/api/recommendations/ada/ai", nil)
	req.SetPathValue("username", "ada")
	w := httptest.NewRecorder()

	handler.GetAIRecommendations(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response["error"])
	assert.Equal(t, "AI recommendations are unavailable, please use standard recommendations", response["fallbackMessage"])
}

func TestAIRecommendationHandler_DropsUnknownParkIDs(t *testing.T) {
	parkRepo, userRepo := recommendationFixtureRepos()
	svc := services.NewAIRecommendationService(parkRepo, userRepo, &stubRecommender{
		result: &entities.AIRecommendationResult{
			Explanation: "Picked for court access",
			Recommendations: []entities.AIRecommendation{
				{ParkID: "P001", Reason: "Has courts", MatchScore: 92},
				{ParkID: "HALLUCINATED", Reason: "Does not exist", MatchScore: 88},
			},
		},
	})
	handler := handlers.NewAIRecommendationHandler(svc)

	req := httptest.NewRequest("GET", "/api/recommendations/ada/ai?prompt=courts", nil)
	req.SetPathValue("username", "ada")
	w := httptest.NewRecorder()

	handler.GetAIRecommendations(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result services.AIRecommendationOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "P001", result.Recommendations[0].ParkID)
	assert.Equal(t, "Prospect Park", result.Recommendations[0].ParkName)
	assert.Equal(t, "Picked for court access", result.AIExplanation)
}
