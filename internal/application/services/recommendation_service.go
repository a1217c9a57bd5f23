package services

import (
	"context"
	"sort"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
)

// Scoring weights. The six components sum to 125 before clamping, so a
// park matching everything maxes out at 100 even without bonuses.
const (
	weightBorough    = 30.0
	weightFacility   = 40.0
	weightParkType   = 15.0
	weightWaterfront = 10.0
	weightRating     = 20.0
	weightSize       = 10.0

	// Baseline multipliers applied when the user states no preference for
	// a component. A park with no data and a user with no preferences
	// lands at 50.5.
	baselineBorough    = 0.5
	baselineFacility   = 0.3
	baselineParkType   = 0.5
	baselineWaterfront = 0.5
	baselineRating     = 0.3
	baselineSize       = 0.5

	facilityBonusPerFacility = 0.5
	facilityBonusCap         = 5.0
	trailBonus               = 2.0

	defaultRecommendationLimit = 10
	detailedParkCount          = 3
	detailedReviewLimit        = 5
)

// ScoredPark pairs a park with its recommendation score.
type ScoredPark struct {
	Park  *entities.Park `json:"park"`
	Score float64        `json:"recommendationScore"`
}

// ParkSummary is the compact shape returned for the wider top-N list.
type ParkSummary struct {
	ParkID    string   `json:"park_id"`
	ParkName  string   `json:"park_name"`
	Borough   string   `json:"borough"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AvgRating *float64 `json:"avg_rating"`
	Score     float64  `json:"recommendationScore"`
}

// RecommendationResult is the full recommendation payload: the top three
// parks in detail (facilities, trails, recent reviews) plus the wider
// compact list and the preference profile the scores were computed against.
type RecommendationResult struct {
	Top3        []*ScoredPark               `json:"top3"`
	Top10       []ParkSummary               `json:"top10"`
	Preferences *entities.PreferenceProfile `json:"preferences"`
}

// RecommendationService scores the park catalog against a user's stored
// preference profile. Scoring is pure and deterministic; all I/O happens
// before and after the scoring pass.
type RecommendationService struct {
	parkRepo repositories.ParkRepository
	userRepo repositories.UserRepository
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(parkRepo repositories.ParkRepository, userRepo repositories.UserRepository) *RecommendationService {
	return &RecommendationService{
		parkRepo: parkRepo,
		userRepo: userRepo,
	}
}

// Recommend computes personalized park recommendations for a user.
func (s *RecommendationService) Recommend(ctx context.Context, username string, limit int) (*RecommendationResult, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	prefs := entities.ParsePreferences(user.Preferences)

	parks, err := s.parkRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]*ScoredPark, 0, len(parks))
	for _, park := range parks {
		// An unrated park counts as rating 0 for the threshold, so any
		// positive minRating excludes it.
		if park.Rating() < prefs.MinRating {
			continue
		}
		scored = append(scored, &ScoredPark{
			Park:  park,
			Score: s.Score(park, prefs),
		})
	}

	// Stable sort keeps catalog order on ties, so results are reproducible
	// run to run.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	top3, err := s.loadDetailed(ctx, scored)
	if err != nil {
		return nil, err
	}

	summaries := make([]ParkSummary, 0, len(scored))
	for _, sp := range scored {
		summaries = append(summaries, ParkSummary{
			ParkID:    sp.Park.ID,
			ParkName:  sp.Park.Name,
			Borough:   sp.Park.Borough,
			Latitude:  sp.Park.Latitude,
			Longitude: sp.Park.Longitude,
			AvgRating: sp.Park.AvgRating,
			Score:     sp.Score,
		})
	}

	observability.RecordRecommendation(ctx, "rule_based")

	return &RecommendationResult{
		Top3:        top3,
		Top10:       summaries,
		Preferences: prefs,
	}, nil
}

// loadDetailed re-fetches the leading parks with their recent reviews and
// restores score order, since the repository returns rows in its own order.
func (s *RecommendationService) loadDetailed(ctx context.Context, scored []*ScoredPark) ([]*ScoredPark, error) {
	top := scored
	if len(top) > detailedParkCount {
		top = top[:detailedParkCount]
	}
	if len(top) == 0 {
		return []*ScoredPark{}, nil
	}

	ids := make([]string, len(top))
	scoreByID := make(map[string]float64, len(top))
	for i, sp := range top {
		ids[i] = sp.Park.ID
		scoreByID[sp.Park.ID] = sp.Score
	}

	detailed, err := s.parkRepo.GetByIDsDetailed(ctx, ids, detailedReviewLimit)
	if err != nil {
		return nil, err
	}

	result := make([]*ScoredPark, 0, len(detailed))
	for _, park := range detailed {
		result = append(result, &ScoredPark{
			Park:  park,
			Score: scoreByID[park.ID],
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	return result, nil
}

// Score computes the weighted preference-match score for one park,
// clamped to [0, 100].
func (s *RecommendationService) Score(park *entities.Park, prefs *entities.PreferenceProfile) float64 {
	score := 0.0

	// Borough match
	if len(prefs.PreferredBoroughs) > 0 {
		if containsString(prefs.PreferredBoroughs, park.Borough) {
			score += weightBorough
		}
	} else {
		score += weightBorough * baselineBorough
	}

	// Facility match: partial credit scales with how many of the user's
	// favorite facility types the park offers.
	if len(prefs.FavoriteFacilities) > 0 {
		parkTypes := make(map[string]struct{})
		for _, f := range park.Facilities {
			parkTypes[f.FacilityType] = struct{}{}
		}
		matches := 0
		for _, favorite := range prefs.FavoriteFacilities {
			if _, ok := parkTypes[favorite]; ok {
				matches++
			}
		}
		if matches > 0 {
			ratio := float64(matches) / float64(len(prefs.FavoriteFacilities))
			if ratio > 1 {
				ratio = 1
			}
			score += weightFacility * ratio
		}
	} else {
		score += weightFacility * baselineFacility
	}

	// Park type match
	if len(prefs.PreferredParkTypes) > 0 {
		if containsString(prefs.PreferredParkTypes, park.ParkType) {
			score += weightParkType
		}
	} else {
		score += weightParkType * baselineParkType
	}

	// Waterfront preference
	if prefs.PreferredWaterfront != nil {
		if park.IsWaterfront == *prefs.PreferredWaterfront {
			score += weightWaterfront
		}
	} else {
		score += weightWaterfront * baselineWaterfront
	}

	// Rating, normalized from 0-5 to the rating weight
	if rating := park.Rating(); rating > 0 {
		score += (rating / 5) * weightRating
	} else {
		score += weightRating * baselineRating
	}

	// Size preference
	if prefs.PreferredSize != nil {
		if park.SizeBucket() == *prefs.PreferredSize {
			score += weightSize
		}
	} else {
		score += weightSize * baselineSize
	}

	// Bonuses for well-equipped parks
	facilityBonus := float64(len(park.Facilities)) * facilityBonusPerFacility
	if facilityBonus > facilityBonusCap {
		facilityBonus = facilityBonusCap
	}
	score += facilityBonus

	if len(park.Trails) > 0 {
		score += trailBonus
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
