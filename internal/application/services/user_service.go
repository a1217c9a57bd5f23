package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// UserProfile is the outward view of a user: stored JSON columns decoded
// into structured preferences and favorites.
type UserProfile struct {
	ID          int64                       `json:"user_id"`
	Username    string                      `json:"username"`
	Email       string                      `json:"email"`
	Preferences *entities.PreferenceProfile `json:"preferences"`
	Favorites   []string                    `json:"favorites"`
}

// UserService handles user profiles, preferences, and favorite parks.
type UserService struct {
	userRepo repositories.UserRepository
	parkRepo repositories.ParkRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, parkRepo repositories.ParkRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		parkRepo: parkRepo,
	}
}

// Register creates a user with an empty preference profile
func (s *UserService) Register(ctx context.Context, username, email string) (*UserProfile, error) {
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}

	user := &entities.User{
		Username: username,
		Email:    email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return profileFromUser(user), nil
}

// GetProfile retrieves a user with decoded preferences and favorites
func (s *UserService) GetProfile(ctx context.Context, username string) (*UserProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return profileFromUser(user), nil
}

// GetPreferences retrieves a user's preference profile
func (s *UserService) GetPreferences(ctx context.Context, username string) (*entities.PreferenceProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return entities.ParsePreferences(user.Preferences), nil
}

// UpdatePreferences validates and stores a preference profile
func (s *UserService) UpdatePreferences(ctx context.Context, username string, prefs *entities.PreferenceProfile) (*entities.PreferenceProfile, error) {
	if prefs == nil {
		return nil, apperrors.NewValidationError("preferences are required")
	}
	if prefs.MinRating < 0 || prefs.MinRating > 5 {
		return nil, apperrors.NewValidationError("minRating must be between 0 and 5")
	}
	if prefs.PreferredSize != nil {
		switch *prefs.PreferredSize {
		case entities.ParkSizeSmall, entities.ParkSizeMedium, entities.ParkSizeLarge:
		default:
			return nil, apperrors.NewValidationError("preferredSize must be small, medium, or large")
		}
	}
	for _, facility := range prefs.FavoriteFacilities {
		if !entities.IsKnownFacilityType(facility) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown facility type: %s", facility))
		}
	}

	if prefs.FavoriteFacilities == nil {
		prefs.FavoriteFacilities = []string{}
	}
	if prefs.PreferredBoroughs == nil {
		prefs.PreferredBoroughs = []string{}
	}
	if prefs.PreferredParkTypes == nil {
		prefs.PreferredParkTypes = []string{}
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode preferences", err)
	}
	if err := s.userRepo.UpdatePreferences(ctx, username, string(data)); err != nil {
		return nil, err
	}
	return prefs, nil
}

// GetFavorites retrieves a user's favorite park IDs
func (s *UserService) GetFavorites(ctx context.Context, username string) ([]string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return entities.ParseFavorites(user.Favorites), nil
}

// AddFavorite adds a park to a user's favorites. Adding a park that is
// already a favorite is a no-op, not an error.
func (s *UserService) AddFavorite(ctx context.Context, username, parkID string) ([]string, error) {
	exists, err := s.parkRepo.Exists(ctx, parkID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", parkID))
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	favorites := entities.ParseFavorites(user.Favorites)
	for _, id := range favorites {
		if id == parkID {
			return favorites, nil
		}
	}
	favorites = append(favorites, parkID)

	return favorites, s.storeFavorites(ctx, user.Username, favorites)
}

// RemoveFavorite removes a park from a user's favorites
func (s *UserService) RemoveFavorite(ctx context.Context, username, parkID string) ([]string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	favorites := entities.ParseFavorites(user.Favorites)
	filtered := make([]string, 0, len(favorites))
	for _, id := range favorites {
		if id != parkID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == len(favorites) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park %s is not a favorite of %s", parkID, username))
	}

	return filtered, s.storeFavorites(ctx, user.Username, filtered)
}

func (s *UserService) storeFavorites(ctx context.Context, username string, favorites []string) error {
	data, err := json.Marshal(favorites)
	if err != nil {
		return apperrors.NewInternalError("failed to encode favorites", err)
	}
	return s.userRepo.UpdateFavorites(ctx, username, string(data))
}

func profileFromUser(user *entities.User) *UserProfile {
	return &UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Preferences: entities.ParsePreferences(user.Preferences),
		Favorites:   entities.ParseFavorites(user.Favorites),
	}
}
