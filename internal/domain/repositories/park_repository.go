package repositories

import (
	"context"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// ParkRepository defines the interface for park catalog operations.
// Reads that feed the recommendation scorer return parks enriched with
// their facility and trail collections.
type ParkRepository interface {
	// Create creates a new park (seed path)
	Create(ctx context.Context, park *entities.Park) error

	// GetByID retrieves a park with its facilities and trails
	GetByID(ctx context.Context, id string) (*entities.Park, error)

	// GetByIDs retrieves multiple parks with facilities and trails
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error)

	// GetByIDsDetailed additionally loads the most recent reviews
	// (with reviewer usernames) for each park
	GetByIDsDetailed(ctx context.Context, ids []string, reviewLimit int) ([]*entities.Park, error)

	// List retrieves parks matching the filter, without nested collections
	List(ctx context.Context, filter ParkFilter) ([]*entities.Park, error)

	// ListCatalog retrieves the full catalog with facilities and trails,
	// in stable park_id order
	ListCatalog(ctx context.Context) ([]*entities.Park, error)

	// TopRatedByBorough retrieves the highest-rated parks in a borough
	TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error)

	// Statistics computes review statistics for a park
	Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error)

	// Exists reports whether a park exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ParkSearchRepository defines the interface for park search operations
// (backed by Typesense).
type ParkSearchRepository interface {
	// InitSchema ensures the search collection exists
	InitSchema(ctx context.Context) error

	// Index upserts a park document
	Index(ctx context.Context, park *entities.Park) error

	// Delete removes a park from the index
	Delete(ctx context.Context, id string) error

	// Search searches parks by name
	Search(ctx context.Context, query string, limit int) ([]*entities.Park, error)
}

// ParkFilter defines filters for listing parks
type ParkFilter struct {
	Borough      string
	ParkType     string
	IsWaterfront *bool
	MinRating    float64
	Limit        int
	Offset       int
}
