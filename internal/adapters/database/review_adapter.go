package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// Aggregate recompute statements. AVG over an empty set is NULL, which is
// the "no rating yet" sentinel downstream consumers expect; zero-rated
// reviews are excluded from averages but counted in total_facility_reviews.
const (
	recomputeParkRatingQuery = `
		UPDATE parks
		SET avg_rating = (
			SELECT AVG(rating) FROM reviews
			WHERE park_id = $1 AND rating > 0
		)
		WHERE park_id = $1`

	recomputeFacilityRatingQuery = `
		UPDATE facilities
		SET avg_facility_rating = (
			SELECT AVG(rating) FROM reviews
			WHERE facility_id = $1 AND rating > 0
		),
		total_facility_reviews = (
			SELECT COUNT(*) FROM reviews
			WHERE facility_id = $1
		)
		WHERE facility_id = $1`

	selectReviewQuery = `
		SELECT r.review_id, r.user_id, r.park_id, r.facility_id, r.rating,
		       r.comment, r.create_time, r.last_update_time, u.username
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id`
)

// ReviewAdapter implements the ReviewRepository interface. It is the only
// writer of the denormalized rating fields on parks and facilities: every
// review mutation and its aggregate recomputation happen in one
// transaction, so readers never observe a review without its aggregate.
type ReviewAdapter struct {
	client *postgres.Client
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{client: client}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Create inserts a review and recomputes aggregates for its targets
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	tx, err := a.client.BeginTx(ctx, sql.LevelReadCommitted)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (review_id, user_id, park_id, facility_id, rating, comment, create_time, last_update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		review.ID,
		review.UserID,
		review.ParkID,
		review.FacilityID,
		review.Rating,
		sql.NullString{String: review.Comment, Valid: review.Comment != ""},
		review.CreateTime,
		review.UpdateTime,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}

	if err := recomputeTargets(ctx, tx, review.ParkID, review.FacilityID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit review create", err)
	}
	return nil
}

// GetByID retrieves a review with its reviewer username
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	row := a.client.DB().QueryRowContext(ctx, selectReviewQuery+` WHERE r.review_id = $1`, id)

	review, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}
	return review, nil
}

// Update applies a patch and recomputes aggregates for both the old and
// new targets when linkage changes.
func (a *ReviewAdapter) Update(ctx context.Context, id string, patch repositories.ReviewPatch) (*entities.Review, error) {
	if patch.Empty() {
		return nil, apperrors.NewValidationError("no fields to update")
	}

	tx, err := a.client.BeginTx(ctx, sql.LevelReadCommitted)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Lock the row so concurrent updates of the same review serialize.
	current := &entities.Review{}
	var comment sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT review_id, user_id, park_id, facility_id, rating, comment, create_time, last_update_time
		FROM reviews WHERE review_id = $1 FOR UPDATE`, id).Scan(
		&current.ID,
		&current.UserID,
		&current.ParkID,
		&current.FacilityID,
		&current.Rating,
		&comment,
		&current.CreateTime,
		&current.UpdateTime,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load review for update", err)
	}
	current.Comment = comment.String

	oldParkID, oldFacilityID := current.ParkID, current.FacilityID

	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Rating != nil {
		sets = append(sets, "rating = "+arg(*patch.Rating))
		current.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		sets = append(sets, "comment = "+arg(sql.NullString{String: *patch.Comment, Valid: *patch.Comment != ""}))
		current.Comment = *patch.Comment
	}
	if patch.ParkID != nil {
		sets = append(sets, "park_id = "+arg(*patch.ParkID))
		current.ParkID = patch.ParkID
	}
	if patch.FacilityID != nil {
		sets = append(sets, "facility_id = "+arg(*patch.FacilityID))
		current.FacilityID = patch.FacilityID
	}

	now := time.Now().UTC()
	sets = append(sets, "last_update_time = "+arg(now))
	current.UpdateTime = now

	query := "UPDATE reviews SET " + strings.Join(sets, ", ") + " WHERE review_id = " + arg(id)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to update review", err)
	}

	// Recompute every entity the review referenced before or after the
	// patch; a reassigned review must not leave the previous target stale.
	if err := recomputeTargets(ctx, tx, oldParkID, oldFacilityID); err != nil {
		return nil, err
	}
	if parkChanged(oldParkID, current.ParkID) || facilityChanged(oldFacilityID, current.FacilityID) {
		if err := recomputeTargets(ctx, tx, current.ParkID, current.FacilityID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit review update", err)
	}
	return current, nil
}

// Delete removes a review and recomputes aggregates for its targets
func (a *ReviewAdapter) Delete(ctx context.Context, id string) (*entities.Review, error) {
	tx, err := a.client.BeginTx(ctx, sql.LevelReadCommitted)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	deleted := &entities.Review{}
	var comment sql.NullString
	err = tx.QueryRowContext(ctx, `
		DELETE FROM reviews WHERE review_id = $1
		RETURNING review_id, user_id, park_id, facility_id, rating, comment, create_time, last_update_time`, id).Scan(
		&deleted.ID,
		&deleted.UserID,
		&deleted.ParkID,
		&deleted.FacilityID,
		&deleted.Rating,
		&comment,
		&deleted.CreateTime,
		&deleted.UpdateTime,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to delete review", err)
	}
	deleted.Comment = comment.String

	if err := recomputeTargets(ctx, tx, deleted.ParkID, deleted.FacilityID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit review delete", err)
	}
	return deleted, nil
}

// ListByPark retrieves a park's reviews, most recent first
func (a *ReviewAdapter) ListByPark(ctx context.Context, parkID string, limit int) ([]*entities.Review, error) {
	return a.listReviews(ctx, selectReviewQuery+`
		WHERE r.park_id = $1 ORDER BY r.create_time DESC LIMIT $2`, parkID, normalizeLimit(limit))
}

// ListByFacility retrieves a facility's reviews, most recent first
func (a *ReviewAdapter) ListByFacility(ctx context.Context, facilityID int64, limit int) ([]*entities.Review, error) {
	return a.listReviews(ctx, selectReviewQuery+`
		WHERE r.facility_id = $1 ORDER BY r.create_time DESC LIMIT $2`, facilityID, normalizeLimit(limit))
}

// ListByUser retrieves a user's reviews, most recent first
func (a *ReviewAdapter) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Review, error) {
	return a.listReviews(ctx, selectReviewQuery+`
		WHERE r.user_id = $1 ORDER BY r.create_time DESC LIMIT $2`, userID, normalizeLimit(limit))
}

// RecomputeParkRating recalculates a park's avg_rating outside a review
// mutation (bulk-import path). Idempotent.
func (a *ReviewAdapter) RecomputeParkRating(ctx context.Context, parkID string) error {
	return recomputePark(ctx, a.client.DB(), parkID)
}

// RecomputeFacilityRating recalculates a facility's aggregates outside a
// review mutation (bulk-import path). Idempotent.
func (a *ReviewAdapter) RecomputeFacilityRating(ctx context.Context, facilityID int64) error {
	return recomputeFacility(ctx, a.client.DB(), facilityID)
}

func (a *ReviewAdapter) listReviews(ctx context.Context, query string, args ...interface{}) ([]*entities.Review, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate reviews", err)
	}

	return reviews, nil
}

func recomputeTargets(ctx context.Context, exec execer, parkID *string, facilityID *int64) error {
	if parkID != nil {
		if err := recomputePark(ctx, exec, *parkID); err != nil {
			return err
		}
	}
	if facilityID != nil {
		if err := recomputeFacility(ctx, exec, *facilityID); err != nil {
			return err
		}
	}
	return nil
}

func recomputePark(ctx context.Context, exec execer, parkID string) error {
	if _, err := exec.ExecContext(ctx, recomputeParkRatingQuery, parkID); err != nil {
		return apperrors.NewInternalError("failed to recompute park rating", err)
	}
	return nil
}

func recomputeFacility(ctx context.Context, exec execer, facilityID int64) error {
	if _, err := exec.ExecContext(ctx, recomputeFacilityRatingQuery, facilityID); err != nil {
		return apperrors.NewInternalError("failed to recompute facility rating", err)
	}
	return nil
}

func parkChanged(old, new *string) bool {
	switch {
	case old == nil && new == nil:
		return false
	case old == nil || new == nil:
		return true
	default:
		return *old != *new
	}
}

func facilityChanged(old, new *int64) bool {
	switch {
	case old == nil && new == nil:
		return false
	case old == nil || new == nil:
		return true
	default:
		return *old != *new
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	var comment sql.NullString

	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.ParkID,
		&review.FacilityID,
		&review.Rating,
		&comment,
		&review.CreateTime,
		&review.UpdateTime,
		&review.Username,
	)
	if err != nil {
		return nil, err
	}

	review.Comment = comment.String
	return review, nil
}
