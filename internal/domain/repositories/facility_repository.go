package repositories

import (
	"context"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// FacilityRepository defines the interface for facility data operations
type FacilityRepository interface {
	// Create creates a new facility (seed path)
	Create(ctx context.Context, facility *entities.Facility) error

	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id int64) (*entities.Facility, error)

	// ListByPark retrieves all facilities of a park
	ListByPark(ctx context.Context, parkID string) ([]*entities.Facility, error)

	// List retrieves facilities matching the filter
	List(ctx context.Context, filter FacilityFilter) ([]*entities.Facility, error)

	// Exists reports whether a facility exists
	Exists(ctx context.Context, id int64) (bool, error)
}

// TrailRepository defines the interface for trail data operations
type TrailRepository interface {
	// Create creates a new trail (seed path)
	Create(ctx context.Context, trail *entities.Trail) error

	// ListByPark retrieves all trails of a park
	ListByPark(ctx context.Context, parkID string) ([]*entities.Trail, error)
}

// FacilityFilter defines filters for listing facilities
type FacilityFilter struct {
	FacilityType string
	ParkID       string
	Limit        int
	Offset       int
}
