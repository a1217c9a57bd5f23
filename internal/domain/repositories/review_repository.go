package repositories

import (
	"context"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
)

// ReviewRepository defines the interface for review persistence.
//
// Create, Update, and Delete are transactional: the review write and the
// recomputation of every affected park/facility aggregate commit or roll
// back together. The repository is the only writer of Park.avg_rating,
// Facility.avg_facility_rating, and Facility.total_facility_reviews.
type ReviewRepository interface {
	// Create inserts a review and recomputes aggregates for its targets
	Create(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review with its reviewer username
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// Update applies a patch and recomputes aggregates for both the old
	// and the new targets when the patch changes linkage. Returns the
	// updated review.
	Update(ctx context.Context, id string, patch ReviewPatch) (*entities.Review, error)

	// Delete removes a review and recomputes aggregates for its targets.
	// Returns the deleted review so callers can publish events.
	Delete(ctx context.Context, id string) (*entities.Review, error)

	// ListByPark retrieves a park's reviews, most recent first
	ListByPark(ctx context.Context, parkID string, limit int) ([]*entities.Review, error)

	// ListByFacility retrieves a facility's reviews, most recent first
	ListByFacility(ctx context.Context, facilityID int64, limit int) ([]*entities.Review, error)

	// ListByUser retrieves a user's reviews, most recent first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Review, error)

	// RecomputeParkRating recalculates a park's avg_rating from its
	// current reviews. Exposed for bulk-import paths that bypass the
	// CRUD surface; idempotent.
	RecomputeParkRating(ctx context.Context, parkID string) error

	// RecomputeFacilityRating recalculates a facility's aggregates
	RecomputeFacilityRating(ctx context.Context, facilityID int64) error
}

// ReviewPatch describes a partial review update. Nil fields are left
// unchanged; a non-nil ParkID or FacilityID reassigns the review.
type ReviewPatch struct {
	Rating     *float64
	Comment    *string
	ParkID     *string
	FacilityID *int64
}

// Empty reports whether the patch changes nothing.
func (p ReviewPatch) Empty() bool {
	return p.Rating == nil && p.Comment == nil && p.ParkID == nil && p.FacilityID == nil
}
