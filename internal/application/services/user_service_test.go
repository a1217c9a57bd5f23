package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

func newUserServiceFixture() (*UserService, *stubUserRepo) {
	userRepo := &stubUserRepo{users: map[string]*entities.User{
		"ada": {ID: 1, Username: "ada", Favorites: `["P001"]`},
	}}
	parkRepo := &stubParkRepo{existing: map[string]bool{"P001": true, "P002": true}}
	return NewUserService(userRepo, parkRepo), userRepo
}

func TestUserService_UpdatePreferences_Valid(t *testing.T) {
	svc, userRepo := newUserServiceFixture()

	size := entities.ParkSizeLarge
	prefs, err := svc.UpdatePreferences(context.Background(), "ada", &entities.PreferenceProfile{
		FavoriteFacilities: []string{"Basketball", "Tennis"},
		MinRating:          3.5,
		PreferredSize:      &size,
	})
	require.NoError(t, err)

	// Nil slices come back normalized and the JSON round-trips.
	assert.NotNil(t, prefs.PreferredBoroughs)
	assert.NotNil(t, prefs.PreferredParkTypes)

	stored := entities.ParsePreferences(userRepo.users["ada"].Preferences)
	assert.Equal(t, []string{"Basketball", "Tennis"}, stored.FavoriteFacilities)
	assert.Equal(t, 3.5, stored.MinRating)
	require.NotNil(t, stored.PreferredSize)
	assert.Equal(t, entities.ParkSizeLarge, *stored.PreferredSize)
}

func TestUserService_UpdatePreferences_Invalid(t *testing.T) {
	svc, _ := newUserServiceFixture()

	badSize := "gigantic"
	tests := []struct {
		name  string
		prefs *entities.PreferenceProfile
	}{
		{"nil", nil},
		{"minRating too high", &entities.PreferenceProfile{MinRating: 5.5}},
		{"minRating negative", &entities.PreferenceProfile{MinRating: -1}},
		{"bad size", &entities.PreferenceProfile{PreferredSize: &badSize}},
		{"unknown facility", &entities.PreferenceProfile{FavoriteFacilities: []string{"Quidditch"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdatePreferences(context.Background(), "ada", tt.prefs)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestUserService_AddFavorite(t *testing.T) {
	svc, userRepo := newUserServiceFixture()

	favorites, err := svc.AddFavorite(context.Background(), "ada", "P002")
	require.NoError(t, err)
	assert.Equal(t, []string{"P001", "P002"}, favorites)
	assert.Equal(t, `["P001","P002"]`, userRepo.users["ada"].Favorites)
}

func TestUserService_AddFavorite_AlreadyPresentIsNoOp(t *testing.T) {
	svc, userRepo := newUserServiceFixture()

	before := userRepo.users["ada"].Favorites
	favorites, err := svc.AddFavorite(context.Background(), "ada", "P001")
	require.NoError(t, err)
	assert.Equal(t, []string{"P001"}, favorites)
	assert.Equal(t, before, userRepo.users["ada"].Favorites)
}

func TestUserService_AddFavorite_UnknownPark(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.AddFavorite(context.Background(), "ada", "NOPE")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestUserService_RemoveFavorite(t *testing.T) {
	svc, userRepo := newUserServiceFixture()

	favorites, err := svc.RemoveFavorite(context.Background(), "ada", "P001")
	require.NoError(t, err)
	assert.Empty(t, favorites)
	assert.Equal(t, `[]`, userRepo.users["ada"].Favorites)
}

func TestUserService_RemoveFavorite_NotAFavorite(t *testing.T) {
	svc, _ := newUserServiceFixture()

	_, err := svc.RemoveFavorite(context.Background(), "ada", "P002")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserServiceFixture()

	profile, err := svc.Register(context.Background(), "grace", "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, "grace", profile.Username)
	assert.NotNil(t, profile.Preferences)
	assert.Empty(t, profile.Favorites)

	_, err = svc.Register(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestUserService_GetProfile_DecodesStoredJSON(t *testing.T) {
	svc, userRepo := newUserServiceFixture()
	userRepo.users["ada"].Preferences = `{"preferredBoroughs": ["Brooklyn"], "minRating": 2}`

	profile, err := svc.GetProfile(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"Brooklyn"}, profile.Preferences.PreferredBoroughs)
	assert.Equal(t, 2.0, profile.Preferences.MinRating)
	assert.Equal(t, []string{"P001"}, profile.Favorites)
}
