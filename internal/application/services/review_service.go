package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// ParkCacheInvalidator drops cached entries derived from a park's reviews.
// The cached park adapter implements it; a nil invalidator is a no-op.
type ParkCacheInvalidator interface {
	InvalidatePark(ctx context.Context, id string)
}

// BatchItemError reports why one item of a batch submission failed.
type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult summarizes a batch review submission. Items are individually
// atomic: failures never roll back the items already committed.
type BatchResult struct {
	Created []*entities.Review `json:"created"`
	Errors  []BatchItemError   `json:"errors"`
}

// ReviewService validates review submissions before they reach the
// transactional repository, then publishes events and invalidates caches
// after a successful commit.
type ReviewService struct {
	reviewRepo   repositories.ReviewRepository
	parkRepo     repositories.ParkRepository
	facilityRepo repositories.FacilityRepository
	userRepo     repositories.UserRepository
	eventBus     providers.EventBus
	invalidator  ParkCacheInvalidator
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	parkRepo repositories.ParkRepository,
	facilityRepo repositories.FacilityRepository,
	userRepo repositories.UserRepository,
	eventBus providers.EventBus,
	invalidator ParkCacheInvalidator,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		parkRepo:     parkRepo,
		facilityRepo: facilityRepo,
		userRepo:     userRepo,
		eventBus:     eventBus,
		invalidator:  invalidator,
	}
}

// Create validates and stores a review. Validation happens entirely before
// the write: an out-of-range rating never reaches the database.
func (s *ReviewService) Create(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	if err := s.validate(ctx, review); err != nil {
		return nil, err
	}

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if review.CreateTime.IsZero() {
		review.CreateTime = now
	}
	review.UpdateTime = now

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, entities.ReviewEventCreated, review)
	return review, nil
}

// CreateBatch stores multiple reviews with per-item atomicity. The result
// lists what was created and, per failed index, why.
func (s *ReviewService) CreateBatch(ctx context.Context, reviews []*entities.Review) (*BatchResult, error) {
	if len(reviews) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one review")
	}

	result := &BatchResult{
		Created: []*entities.Review{},
		Errors:  []BatchItemError{},
	}

	for i, review := range reviews {
		created, err := s.Create(ctx, review)
		if err != nil {
			result.Errors = append(result.Errors, BatchItemError{
				Index: i,
				Error: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, created)
	}

	return result, nil
}

// GetByID retrieves a review
func (s *ReviewService) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

// Update validates and applies a partial update. When the patch moves the
// review to another park or facility, the new target must exist; the
// repository recomputes aggregates for both old and new targets.
func (s *ReviewService) Update(ctx context.Context, id string, patch repositories.ReviewPatch) (*entities.Review, error) {
	if patch.Empty() {
		return nil, apperrors.NewValidationError("no fields to update")
	}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if patch.ParkID != nil {
		if err := s.requirePark(ctx, *patch.ParkID); err != nil {
			return nil, err
		}
	}
	if patch.FacilityID != nil {
		if err := s.requireFacility(ctx, *patch.FacilityID); err != nil {
			return nil, err
		}
	}

	// Load the pre-update state so the old park's cache entries can be
	// dropped when the patch reassigns the review.
	previous, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.reviewRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if previous.ParkID != nil && (updated.ParkID == nil || *previous.ParkID != *updated.ParkID) {
		s.invalidatePark(ctx, *previous.ParkID)
	}
	s.afterMutation(ctx, entities.ReviewEventUpdated, updated)
	return updated, nil
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, id string) (*entities.Review, error) {
	deleted, err := s.reviewRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, entities.ReviewEventDeleted, deleted)
	return deleted, nil
}

// ListByPark retrieves a park's reviews
func (s *ReviewService) ListByPark(ctx context.Context, parkID string, limit int) ([]*entities.Review, error) {
	if err := s.requirePark(ctx, parkID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByPark(ctx, parkID, limit)
}

// ListByFacility retrieves a facility's reviews
func (s *ReviewService) ListByFacility(ctx context.Context, facilityID int64, limit int) ([]*entities.Review, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByFacility(ctx, facilityID, limit)
}

// ListByUser retrieves a user's reviews
func (s *ReviewService) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Review, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID))
	}
	return s.reviewRepo.ListByUser(ctx, userID, limit)
}

func (s *ReviewService) validate(ctx context.Context, review *entities.Review) error {
	if err := validateRating(review.Rating); err != nil {
		return err
	}
	if !review.HasTarget() {
		return apperrors.NewValidationError("review must reference a park or a facility")
	}
	if review.UserID <= 0 {
		return apperrors.NewValidationError("user_id is required")
	}

	exists, err := s.userRepo.Exists(ctx, review.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %d not found", review.UserID))
	}

	if review.ParkID != nil {
		if err := s.requirePark(ctx, *review.ParkID); err != nil {
			return err
		}
	}
	if review.FacilityID != nil {
		if err := s.requireFacility(ctx, *review.FacilityID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReviewService) requirePark(ctx context.Context, parkID string) error {
	exists, err := s.parkRepo.Exists(ctx, parkID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", parkID))
	}
	return nil
}

func (s *ReviewService) requireFacility(ctx context.Context, facilityID int64) error {
	exists, err := s.facilityRepo.Exists(ctx, facilityID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %d not found", facilityID))
	}
	return nil
}

// afterMutation publishes the review event and drops affected cache
// entries. Both are best-effort: the mutation already committed.
func (s *ReviewService) afterMutation(ctx context.Context, eventType string, review *entities.Review) {
	event := &entities.ReviewEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ReviewID:   review.ID,
		ParkID:     review.ParkID,
		FacilityID: review.FacilityID,
		Rating:     review.Rating,
		Timestamp:  time.Now().UTC(),
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, providers.EventChannelReviews, event); err != nil {
			observability.GetLogger().Warn().Err(err).
				Str("review_id", review.ID).
				Msg("failed to publish review event")
		}
		if review.ParkID != nil {
			if err := s.eventBus.Publish(ctx, providers.GetParkChannel(*review.ParkID), event); err != nil {
				observability.GetLogger().Warn().Err(err).
					Str("park_id", *review.ParkID).
					Msg("failed to publish park review event")
			}
		}
	}

	if review.ParkID != nil {
		s.invalidatePark(ctx, *review.ParkID)
	}
}

func (s *ReviewService) invalidatePark(ctx context.Context, parkID string) {
	if s.invalidator != nil {
		s.invalidator.InvalidatePark(ctx, parkID)
	}
}

func validateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return apperrors.NewValidationError("rating must be between 0 and 5")
	}
	return nil
}
