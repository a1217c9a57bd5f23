package services

import (
	"context"
	"errors"
	"sort"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// AIRecommendationOutput is the payload of the LLM recommendation path.
// Type is always "ai" so clients can tell it apart from the rule-based
// response shape.
type AIRecommendationOutput struct {
	Type            string                      `json:"type"`
	Recommendations []entities.AIRecommendation `json:"recommendations"`
	AIExplanation   string                      `json:"aiExplanation"`
	UserPrompt      string                      `json:"userPrompt,omitempty"`
}

// AIRecommendationService drives the LLM recommendation path: it assembles
// the catalog context, calls the recommender, and resolves the returned
// park IDs back to catalog records, dropping anything the model invented.
type AIRecommendationService struct {
	parkRepo    repositories.ParkRepository
	userRepo    repositories.UserRepository
	recommender providers.ParkRecommender
}

// NewAIRecommendationService creates a new AI recommendation service
func NewAIRecommendationService(
	parkRepo repositories.ParkRepository,
	userRepo repositories.UserRepository,
	recommender providers.ParkRecommender,
) *AIRecommendationService {
	return &AIRecommendationService{
		parkRepo:    parkRepo,
		userRepo:    userRepo,
		recommender: recommender,
	}
}

// Recommend asks the LLM collaborator for park suggestions. An upstream
// failure surfaces as an EXTERNAL error so the handler can return 502 and
// point clients at the rule-based fallback.
func (s *AIRecommendationService) Recommend(ctx context.Context, username, prompt string, limit int) (*AIRecommendationOutput, error) {
	if s.recommender == nil {
		return nil, apperrors.NewExternalError("ai recommendations are not configured", providers.ErrRecommenderUnavailable)
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	prefs := entities.ParsePreferences(user.Preferences)
	favorites := entities.ParseFavorites(user.Favorites)

	parks, err := s.parkRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	// Best-rated parks first so the capped model context keeps the
	// strongest candidates.
	sorted := make([]*entities.Park, len(parks))
	copy(sorted, parks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating() > sorted[j].Rating()
	})

	result, err := s.recommender.RecommendParks(ctx, &providers.ParkRecommendationRequest{
		Username:    user.Username,
		Prompt:      prompt,
		Limit:       limit,
		Preferences: prefs,
		Favorites:   favorites,
		Parks:       sorted,
	})
	if err != nil {
		if errors.Is(err, providers.ErrRecommenderUnavailable) {
			return nil, apperrors.NewExternalError("ai recommendation service unavailable", err)
		}
		return nil, apperrors.NewInternalError("ai recommendation failed", err)
	}

	byID := make(map[string]*entities.Park, len(parks))
	for _, park := range parks {
		byID[park.ID] = park
	}

	resolved := make([]entities.AIRecommendation, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		park, ok := byID[rec.ParkID]
		if !ok {
			// Hallucinated park id, drop it
			continue
		}
		rec.ParkName = park.Name
		rec.Park = park
		resolved = append(resolved, rec)
		if len(resolved) >= limit {
			break
		}
	}

	observability.RecordRecommendation(ctx, "ai")

	return &AIRecommendationOutput{
		Type:            "ai",
		Recommendations: resolved,
		AIExplanation:   result.Explanation,
		UserPrompt:      prompt,
	}, nil
}
