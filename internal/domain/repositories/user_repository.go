package repositories

import (
	"context"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user (seed path)
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// Exists reports whether a user exists
	Exists(ctx context.Context, id int64) (bool, error)

	// UpdatePreferences replaces the stored preference JSON
	UpdatePreferences(ctx context.Context, username string, preferencesJSON string) error

	// UpdateFavorites replaces the stored favorites JSON
	UpdateFavorites(ctx context.Context, username string, favoritesJSON string) error
}
