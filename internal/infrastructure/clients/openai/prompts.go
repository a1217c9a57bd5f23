package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
)

const recommendationSchema = `{
  "explanation": string (2-3 sentences summarizing why these parks fit),
  "recommendations": [
    {
      "park_id": string (MUST be an id from the provided catalog),
      "reason": string (one sentence, concrete, references facilities/borough/rating),
      "matchScore": number (0-100)
    }
  ]
}`

func buildSystemPrompt(hasUserPrompt bool) string {
	base := "You are a recommendation assistant for an NYC parks discovery app. " +
		"Given a catalog of parks and a user's preferences, pick the parks that best fit. " +
		"Return ONLY valid JSON with this schema:\n" + recommendationSchema + "\n" +
		"Only recommend parks from the provided catalog; never invent park ids."
	if hasUserPrompt {
		return base + " Weigh the user's free-text request above their stored preferences when they conflict."
	}
	return base
}

// parkContext is the compact per-park payload sent to the model. Capped at
// 30 parks, sorted by rating upstream, to bound token usage.
type parkContext struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Borough    string   `json:"borough"`
	Type       string   `json:"type"`
	Rating     float64  `json:"rating"`
	Acres      float64  `json:"acres"`
	Waterfront bool     `json:"waterfront"`
	Facilities []string `json:"facilities"`
	TrailCount int      `json:"trailCount"`
	IsFavorite bool     `json:"isFavorite"`
}

const maxContextParks = 30

func buildUserPrompt(req *providers.ParkRecommendationRequest) string {
	favoriteSet := make(map[string]struct{}, len(req.Favorites))
	for _, id := range req.Favorites {
		favoriteSet[id] = struct{}{}
	}

	parks := req.Parks
	if len(parks) > maxContextParks {
		parks = parks[:maxContextParks]
	}

	catalog := make([]parkContext, 0, len(parks))
	for _, park := range parks {
		acres := 0.0
		if park.Acres != nil {
			acres = *park.Acres
		}
		_, isFavorite := favoriteSet[park.ID]
		catalog = append(catalog, parkContext{
			ID:         park.ID,
			Name:       park.Name,
			Borough:    park.Borough,
			Type:       park.ParkType,
			Rating:     park.Rating(),
			Acres:      acres,
			Waterfront: park.IsWaterfront,
			Facilities: park.FacilityTypes(),
			TrailCount: len(park.Trails),
			IsFavorite: isFavorite,
		})
	}

	catalogJSON, _ := json.Marshal(catalog)
	prefsJSON, _ := json.Marshal(req.Preferences)

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", req.Username)
	fmt.Fprintf(&b, "Stored preferences: %s\n", prefsJSON)
	if req.Prompt != "" {
		fmt.Fprintf(&b, "Request: %s\n", req.Prompt)
	}
	fmt.Fprintf(&b, "Recommend up to %d parks.\n", req.Limit)
	fmt.Fprintf(&b, "Park catalog: %s\n", catalogJSON)
	return b.String()
}

func parseRecommendationPayload(data []byte) (*entities.AIRecommendationResult, error) {
	var result entities.AIRecommendationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation payload: %w", err)
	}
	return &result, nil
}
