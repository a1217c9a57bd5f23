package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
)

func TestBuildUserPrompt_CapsCatalogAndMarksFavorites(t *testing.T) {
	parks := []*entities.Park{}
	for i := 0; i < 40; i++ {
		parks = append(parks, &entities.Park{
			ID:      "P" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
			Name:    "Park",
			Borough: "Brooklyn",
		})
	}

	prompt := buildUserPrompt(&providers.ParkRecommendationRequest{
		Username:    "ada",
		Limit:       5,
		Preferences: entities.DefaultPreferences(),
		Favorites:   []string{parks[0].ID},
		Parks:       parks,
	})

	assert.Contains(t, prompt, "User: ada")
	assert.Contains(t, prompt, "Recommend up to 5 parks")
	assert.Contains(t, prompt, `"isFavorite":true`)

	// 40 catalog parks but only 30 make it into the context.
	assert.Equal(t, 30, strings.Count(prompt, `"id":"P`))
}

func TestBuildUserPrompt_IncludesFreeTextRequest(t *testing.T) {
	prompt := buildUserPrompt(&providers.ParkRecommendationRequest{
		Username:    "ada",
		Prompt:      "somewhere quiet with tennis courts",
		Limit:       3,
		Preferences: entities.DefaultPreferences(),
	})

	assert.Contains(t, prompt, "Request: somewhere quiet with tennis courts")
}

func TestBuildSystemPrompt(t *testing.T) {
	base := buildSystemPrompt(false)
	assert.Contains(t, base, "never invent park ids")
	assert.NotContains(t, base, "free-text")

	withPrompt := buildSystemPrompt(true)
	assert.Contains(t, withPrompt, "Weigh the user's free-text request")
}

func TestParseRecommendationPayload(t *testing.T) {
	payload := `{
		"explanation": "These match the tennis preference.",
		"recommendations": [
			{"park_id": "P001", "reason": "Lighted tennis courts", "matchScore": 91}
		]
	}`

	result, err := parseRecommendationPayload([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "These match the tennis preference.", result.Explanation)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "P001", result.Recommendations[0].ParkID)
	assert.Equal(t, 91.0, result.Recommendations[0].MatchScore)

	_, err = parseRecommendationPayload([]byte("not json"))
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	fenced := "```json\n{\"explanation\": \"ok\"}\n```"
	assert.Equal(t, `{"explanation": "ok"}`, stripCodeFences(fenced))

	plain := `{"explanation": "ok"}`
	assert.Equal(t, plain, stripCodeFences(plain))
}
