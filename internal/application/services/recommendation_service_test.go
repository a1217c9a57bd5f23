package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// stubParkRepo serves a fixed catalog. detailedCalls records the ids
// requested through GetByIDsDetailed so tests can assert on them.
type stubParkRepo struct {
	catalog       []*entities.Park
	existing      map[string]bool
	detailedCalls [][]string
}

func (s *stubParkRepo) Create(ctx context.Context, park *entities.Park) error { return nil }

func (s *stubParkRepo) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("park not found")
}

func (s *stubParkRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	return s.byIDs(ids), nil
}

func (s *stubParkRepo) GetByIDsDetailed(ctx context.Context, ids []string, reviewLimit int) ([]*entities.Park, error) {
	s.detailedCalls = append(s.detailedCalls, ids)
	// Reversed on purpose: callers must restore score order themselves.
	parks := s.byIDs(ids)
	for i, j := 0, len(parks)-1; i < j; i, j = i+1, j-1 {
		parks[i], parks[j] = parks[j], parks[i]
	}
	return parks, nil
}

func (s *stubParkRepo) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	return s.catalog, nil
}

func (s *stubParkRepo) ListCatalog(ctx context.Context) ([]*entities.Park, error) {
	return s.catalog, nil
}

func (s *stubParkRepo) TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error) {
	return nil, nil
}

func (s *stubParkRepo) Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error) {
	return &entities.ParkStatistics{ParkID: id}, nil
}

func (s *stubParkRepo) Exists(ctx context.Context, id string) (bool, error) {
	if s.existing != nil {
		return s.existing[id], nil
	}
	for _, p := range s.catalog {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubParkRepo) byIDs(ids []string) []*entities.Park {
	parks := []*entities.Park{}
	for _, id := range ids {
		for _, p := range s.catalog {
			if p.ID == id {
				parks = append(parks, p)
			}
		}
	}
	return parks
}

type stubUserRepo struct {
	users  map[string]*entities.User
	exists map[int64]bool
}

func (s *stubUserRepo) Create(ctx context.Context, user *entities.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return s.exists[id], nil
}

func (s *stubUserRepo) UpdatePreferences(ctx context.Context, username, preferencesJSON string) error {
	if u, ok := s.users[username]; ok {
		u.Preferences = preferencesJSON
		return nil
	}
	return apperrors.NewNotFoundError("user not found")
}

func (s *stubUserRepo) UpdateFavorites(ctx context.Context, username, favoritesJSON string) error {
	if u, ok := s.users[username]; ok {
		u.Favorites = favoritesJSON
		return nil
	}
	return apperrors.NewNotFoundError("user not found")
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

func parkWith(id string, facilities ...string) *entities.Park {
	p := &entities.Park{ID: id, Name: "Park " + id, Borough: "Brooklyn"}
	for _, ft := range facilities {
		p.Facilities = append(p.Facilities, &entities.Facility{FacilityType: ft})
	}
	return p
}

func TestScore_NoPreferencesBaseline(t *testing.T) {
	svc := NewRecommendationService(nil, nil)

	// Bare park, empty profile: every component falls back to its
	// baseline and no bonuses apply.
	park := &entities.Park{ID: "B001", Borough: "Brooklyn"}
	score := svc.Score(park, entities.DefaultPreferences())

	assert.InDelta(t, 50.5, score, 0.001)
}

func TestScore_FullMatchClampsTo100(t *testing.T) {
	svc := NewRecommendationService(nil, nil)

	acres := 120.0
	park := &entities.Park{
		ID:           "X001",
		Borough:      "Manhattan",
		ParkType:     "Flagship Park",
		Acres:        &acres,
		IsWaterfront: true,
		AvgRating:    floatPtr(5.0),
		Facilities: []*entities.Facility{
			{FacilityType: "basketball"},
			{FacilityType: "playground"},
		},
		Trails: []*entities.Trail{{Name: "Loop"}},
	}
	prefs := &entities.PreferenceProfile{
		FavoriteFacilities:  []string{"basketball", "playground"},
		PreferredBoroughs:   []string{"Manhattan"},
		PreferredParkTypes:  []string{"Flagship Park"},
		PreferredWaterfront: boolPtr(true),
		PreferredSize:       strPtr(entities.ParkSizeLarge),
	}

	// Raw components sum to 125 plus bonuses; the score must clamp.
	assert.Equal(t, 100.0, svc.Score(park, prefs))
}

func TestScore_FacilityPartialCredit(t *testing.T) {
	svc := NewRecommendationService(nil, nil)
	prefs := &entities.PreferenceProfile{
		FavoriteFacilities: []string{"basketball", "tennis"},
	}

	none := parkWith("P0")
	one := parkWith("P1", "basketball")
	both := parkWith("P2", "basketball", "tennis")

	scoreNone := svc.Score(none, prefs)
	scoreOne := svc.Score(one, prefs)
	scoreBoth := svc.Score(both, prefs)

	assert.Greater(t, scoreOne, scoreNone)
	assert.Greater(t, scoreBoth, scoreOne)

	// Zero matches earns nothing from the facility component, not the
	// baseline. One of two favorites earns half the facility weight; the
	// extra 0.5 per park facility is the equipment bonus.
	assert.InDelta(t, 20.5, scoreOne-scoreNone, 0.001)
	assert.InDelta(t, 20.5, scoreBoth-scoreOne, 0.001)
}

func TestScore_FacilityBonusIsCapped(t *testing.T) {
	svc := NewRecommendationService(nil, nil)
	prefs := entities.DefaultPreferences()

	ten := parkWith("P10")
	twenty := parkWith("P20")
	for i := 0; i < 10; i++ {
		ten.Facilities = append(ten.Facilities, &entities.Facility{FacilityType: "field"})
	}
	for i := 0; i < 20; i++ {
		twenty.Facilities = append(twenty.Facilities, &entities.Facility{FacilityType: "field"})
	}

	// 10 facilities already hits the 5-point cap.
	assert.Equal(t, svc.Score(ten, prefs), svc.Score(twenty, prefs))
}

func TestScore_RatingComponent(t *testing.T) {
	svc := NewRecommendationService(nil, nil)
	prefs := entities.DefaultPreferences()

	unrated := &entities.Park{ID: "U1"}
	rated := &entities.Park{ID: "R1", AvgRating: floatPtr(4.0)}

	// Unrated park gets the 6-point baseline; a 4.0 park gets 16.
	assert.InDelta(t, 10.0, svc.Score(rated, prefs)-svc.Score(unrated, prefs), 0.001)
}

func TestScore_SizeBucketUnknownAcreage(t *testing.T) {
	svc := NewRecommendationService(nil, nil)
	prefs := &entities.PreferenceProfile{
		FavoriteFacilities: []string{},
		PreferredBoroughs:  []string{},
		PreferredParkTypes: []string{},
		PreferredSize:      strPtr(entities.ParkSizeMedium),
	}

	// A park without acreage data buckets as medium.
	unknown := &entities.Park{ID: "M1"}
	small := &entities.Park{ID: "S1", Acres: floatPtr(2.0)}

	assert.InDelta(t, 10.0, svc.Score(unknown, prefs)-svc.Score(small, prefs), 0.001)
}

func TestRecommend_FiltersByMinRating(t *testing.T) {
	parkRepo := &stubParkRepo{catalog: []*entities.Park{
		{ID: "P1", AvgRating: floatPtr(4.5)},
		{ID: "P2", AvgRating: floatPtr(2.0)},
		{ID: "P3"}, // unrated
	}}
	userRepo := &stubUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada", Preferences: `{"minRating": 3.0}`},
	}}
	svc := NewRecommendationService(parkRepo, userRepo)

	result, err := svc.Recommend(context.Background(), "ada", 10)
	require.NoError(t, err)

	// The 2.0-rated park and the unrated park both fall under the
	// threshold.
	require.Len(t, result.Top10, 1)
	assert.Equal(t, "P1", result.Top10[0].ParkID)
}

func TestRecommend_OrdersByScoreAndKeepsTiesStable(t *testing.T) {
	parkRepo := &stubParkRepo{catalog: []*entities.Park{
		{ID: "P1", Borough: "Queens"},
		{ID: "P2", Borough: "Brooklyn"},
		{ID: "P3", Borough: "Queens"},
	}}
	userRepo := &stubUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada", Preferences: `{"preferredBoroughs": ["Brooklyn"]}`},
	}}
	svc := NewRecommendationService(parkRepo, userRepo)

	result, err := svc.Recommend(context.Background(), "ada", 10)
	require.NoError(t, err)
	require.Len(t, result.Top10, 3)

	// P2 wins on borough; the tied Queens parks keep catalog order.
	assert.Equal(t, "P2", result.Top10[0].ParkID)
	assert.Equal(t, "P1", result.Top10[1].ParkID)
	assert.Equal(t, "P3", result.Top10[2].ParkID)
}

func TestRecommend_LimitsAndLoadsTop3Detailed(t *testing.T) {
	catalog := []*entities.Park{}
	for i := 0; i < 15; i++ {
		rating := 0.3*float64(i) + 0.5
		catalog = append(catalog, &entities.Park{
			ID:        string(rune('A'+i)) + "01",
			AvgRating: &rating,
		})
	}
	parkRepo := &stubParkRepo{catalog: catalog}
	userRepo := &stubUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada"},
	}}
	svc := NewRecommendationService(parkRepo, userRepo)

	result, err := svc.Recommend(context.Background(), "ada", 0)
	require.NoError(t, err)

	// Default limit applies, and only the leading three parks are
	// re-fetched in detail.
	assert.Len(t, result.Top10, 10)
	require.Len(t, result.Top3, 3)
	require.Len(t, parkRepo.detailedCalls, 1)
	assert.Len(t, parkRepo.detailedCalls[0], 3)

	// The stub returns detailed parks in reverse order; the service must
	// restore score order.
	assert.Equal(t, result.Top10[0].ParkID, result.Top3[0].Park.ID)
	assert.Equal(t, result.Top10[1].ParkID, result.Top3[1].Park.ID)
	assert.Equal(t, result.Top10[2].ParkID, result.Top3[2].Park.ID)
	assert.GreaterOrEqual(t, result.Top3[0].Score, result.Top3[1].Score)
	assert.GreaterOrEqual(t, result.Top3[1].Score, result.Top3[2].Score)
}

func TestRecommend_UnknownUser(t *testing.T) {
	svc := NewRecommendationService(&stubParkRepo{}, &stubUserRepo{users: map[string]*entities.User{}})

	_, err := svc.Recommend(context.Background(), "nobody", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRecommend_MalformedPreferencesDegradeToDefaults(t *testing.T) {
	parkRepo := &stubParkRepo{catalog: []*entities.Park{{ID: "P1"}}}
	userRepo := &stubUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada", Preferences: `{not json`},
	}}
	svc := NewRecommendationService(parkRepo, userRepo)

	result, err := svc.Recommend(context.Background(), "ada", 10)
	require.NoError(t, err)
	require.Len(t, result.Top10, 1)
	assert.InDelta(t, 50.5, result.Top10[0].Score, 0.001)
	assert.Equal(t, 0.0, result.Preferences.MinRating)
}

func TestScore_BoundsAlwaysHold(t *testing.T) {
	svc := NewRecommendationService(nil, nil)

	parks := []*entities.Park{
		{ID: "A"},
		{ID: "B", AvgRating: floatPtr(5.0), IsWaterfront: true},
		parkWith("C", "basketball", "tennis", "pool", "track", "dog_run"),
	}
	profiles := []*entities.PreferenceProfile{
		entities.DefaultPreferences(),
		{
			FavoriteFacilities:  []string{"basketball", "tennis", "pool"},
			PreferredBoroughs:   []string{"Bronx"},
			PreferredParkTypes:  []string{"Community Park"},
			PreferredWaterfront: boolPtr(false),
			PreferredSize:       strPtr(entities.ParkSizeSmall),
		},
	}

	for _, park := range parks {
		for _, prefs := range profiles {
			score := svc.Score(park, prefs)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
}
