package providers

import (
	"context"
	"errors"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// ErrRecommenderUnavailable indicates the LLM collaborator could not be
// reached or rejected the request (network, quota, auth). Callers should
// fall back to the rule-based recommendation path.
var ErrRecommenderUnavailable = errors.New("ai recommender unavailable")

// ParkRecommendationRequest is the catalog context handed to the LLM
// collaborator. It carries the same Park shape as the rule-based path so
// both result sets can be merged for comparison.
type ParkRecommendationRequest struct {
	Username    string
	Prompt      string
	Limit       int
	Preferences *entities.PreferenceProfile
	Favorites   []string
	Parks       []*entities.Park
}

// ParkRecommender defines the interface for the AI recommendation
// collaborator.
type ParkRecommender interface {
	// RecommendParks returns an LLM-scored park list with an explanation
	RecommendParks(ctx context.Context, req *ParkRecommendationRequest) (*entities.AIRecommendationResult, error)
}
