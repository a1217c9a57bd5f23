package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
	"github.com/lib/pq"
)

var parkColumns = []interface{}{
	"park_id", "park_name", "borough", "zipcode", "latitude", "longitude",
	"park_type", "acres", "is_waterfront", "avg_rating",
}

// ParkAdapter implements the ParkRepository interface over Postgres.
type ParkAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewParkAdapter creates a new park adapter
func NewParkAdapter(client *postgres.Client) repositories.ParkRepository {
	return &ParkAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a park row. Used by the seed path; avg_rating starts unset.
func (a *ParkAdapter) Create(ctx context.Context, park *entities.Park) error {
	record := goqu.Record{
		"park_id":       park.ID,
		"park_name":     park.Name,
		"borough":       sql.NullString{String: park.Borough, Valid: park.Borough != ""},
		"zipcode":       sql.NullString{String: park.ZipCode, Valid: park.ZipCode != ""},
		"latitude":      park.Latitude,
		"longitude":     park.Longitude,
		"park_type":     sql.NullString{String: park.ParkType, Valid: park.ParkType != ""},
		"acres":         nullFloat(park.Acres),
		"is_waterfront": park.IsWaterfront,
		"avg_rating":    nullFloat(park.AvgRating),
	}

	query, args, err := a.db.Insert("parks").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build park insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create park", err)
	}

	return nil
}

// GetByID retrieves a park with its facilities and trails
func (a *ParkAdapter) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	parks, err := a.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(parks) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", id))
	}
	return parks[0], nil
}

// GetByIDs retrieves multiple parks with facilities and trails
func (a *ParkAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	if len(ids) == 0 {
		return []*entities.Park{}, nil
	}

	parks, err := a.selectParks(ctx, a.db.Select(parkColumns...).From("parks").
		Where(goqu.Ex{"park_id": ids}).
		Order(goqu.I("park_id").Asc()))
	if err != nil {
		return nil, err
	}

	if err := a.attachCollections(ctx, parks); err != nil {
		return nil, err
	}

	return parks, nil
}

// GetByIDsDetailed additionally loads each park's most recent reviews with
// reviewer usernames.
func (a *ParkAdapter) GetByIDsDetailed(ctx context.Context, ids []string, reviewLimit int) ([]*entities.Park, error) {
	parks, err := a.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(parks) == 0 {
		return parks, nil
	}
	if reviewLimit <= 0 {
		reviewLimit = 5
	}

	// Most recent N reviews per park in one round-trip.
	query := `
		SELECT review_id, user_id, park_id, facility_id, rating, comment,
		       create_time, last_update_time, username
		FROM (
			SELECT r.review_id, r.user_id, r.park_id, r.facility_id, r.rating,
			       r.comment, r.create_time, r.last_update_time, u.username,
			       ROW_NUMBER() OVER (PARTITION BY r.park_id ORDER BY r.create_time DESC) AS rn
			FROM reviews r
			JOIN users u ON u.user_id = r.user_id
			WHERE r.park_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY park_id, create_time DESC
	`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids), reviewLimit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load park reviews", err)
	}
	defer rows.Close()

	byPark := make(map[string][]*entities.Review)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan park review", err)
		}
		if review.ParkID != nil {
			byPark[*review.ParkID] = append(byPark[*review.ParkID], review)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate park reviews", err)
	}

	for _, park := range parks {
		park.Reviews = byPark[park.ID]
	}

	return parks, nil
}

// List retrieves parks matching the filter, without nested collections
func (a *ParkAdapter) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	ds := a.db.Select(parkColumns...).From("parks")

	if filter.Borough != "" {
		ds = ds.Where(goqu.Ex{"borough": filter.Borough})
	}
	if filter.ParkType != "" {
		ds = ds.Where(goqu.Ex{"park_type": filter.ParkType})
	}
	if filter.IsWaterfront != nil {
		ds = ds.Where(goqu.Ex{"is_waterfront": *filter.IsWaterfront})
	}
	if filter.MinRating > 0 {
		ds = ds.Where(goqu.C("avg_rating").Gte(filter.MinRating))
	}

	ds = ds.Order(goqu.I("park_id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.selectParks(ctx, ds)
}

// ListCatalog retrieves the full catalog with facilities and trails in
// stable park_id order. This is the scorer's read path; ordering must be
// deterministic so tie scores rank reproducibly.
func (a *ParkAdapter) ListCatalog(ctx context.Context) ([]*entities.Park, error) {
	parks, err := a.selectParks(ctx, a.db.Select(parkColumns...).From("parks").
		Order(goqu.I("park_id").Asc()))
	if err != nil {
		return nil, err
	}

	if err := a.attachCollections(ctx, parks); err != nil {
		return nil, err
	}

	return parks, nil
}

// TopRatedByBorough retrieves the highest-rated parks in a borough
func (a *ParkAdapter) TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error) {
	if limit <= 0 {
		limit = 10
	}
	return a.selectParks(ctx, a.db.Select(parkColumns...).From("parks").
		Where(goqu.Ex{"borough": borough}, goqu.C("avg_rating").IsNotNull()).
		Order(goqu.I("avg_rating").Desc(), goqu.I("park_id").Asc()).
		Limit(uint(limit)))
}

// Statistics computes review statistics for a park
func (a *ParkAdapter) Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error) {
	query := `
		SELECT p.park_id,
		       p.park_name,
		       COUNT(r.review_id) AS total_reviews,
		       COUNT(DISTINCT r.user_id) AS unique_reviewers,
		       ROUND(AVG(r.rating) FILTER (WHERE r.rating > 0), 2) AS avg_rating,
		       MIN(r.rating) AS min_rating,
		       MAX(r.rating) AS max_rating,
		       COUNT(r.review_id) FILTER (WHERE r.rating = 5) AS five_star_count,
		       COUNT(DISTINCT r.facility_id) AS facilities_reviewed
		FROM parks p
		LEFT JOIN reviews r ON r.park_id = p.park_id
		WHERE p.park_id = $1
		GROUP BY p.park_id, p.park_name
	`

	stats := &entities.ParkStatistics{}
	var avgRating, minRating, maxRating sql.NullFloat64
	err := a.client.DB().QueryRowContext(ctx, query, id).Scan(
		&stats.ParkID,
		&stats.ParkName,
		&stats.TotalReviews,
		&stats.UniqueReviewers,
		&avgRating,
		&minRating,
		&maxRating,
		&stats.FiveStarCount,
		&stats.FacilitiesReviewed,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to compute park statistics", err)
	}

	stats.AvgRating = floatPtr(avgRating)
	stats.MinRating = floatPtr(minRating)
	stats.MaxRating = floatPtr(maxRating)
	return stats, nil
}

// Exists reports whether a park exists
func (a *ParkAdapter) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := a.client.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parks WHERE park_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check park existence", err)
	}
	return exists, nil
}

func (a *ParkAdapter) selectParks(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Park, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build park query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query parks", err)
	}
	defer rows.Close()

	parks := []*entities.Park{}
	for rows.Next() {
		park, err := scanPark(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan park", err)
		}
		parks = append(parks, park)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate parks", err)
	}

	return parks, nil
}

// attachCollections loads facilities and trails for the given parks in two
// round-trips and groups them by park.
func (a *ParkAdapter) attachCollections(ctx context.Context, parks []*entities.Park) error {
	if len(parks) == 0 {
		return nil
	}

	ids := make([]string, len(parks))
	index := make(map[string]*entities.Park, len(parks))
	for i, park := range parks {
		ids[i] = park.ID
		index[park.ID] = park
		park.Facilities = []*entities.Facility{}
		park.Trails = []*entities.Trail{}
	}

	facilities, err := selectFacilities(ctx, a.client, a.db.Select(facilityColumns...).
		From("facilities").
		Where(goqu.Ex{"park_id": ids}).
		Order(goqu.I("facility_id").Asc()))
	if err != nil {
		return err
	}
	for _, facility := range facilities {
		if park, ok := index[facility.ParkID]; ok {
			park.Facilities = append(park.Facilities, facility)
		}
	}

	trails, err := selectTrails(ctx, a.client, a.db.Select(trailColumns...).
		From("trails").
		Where(goqu.Ex{"park_id": ids}).
		Order(goqu.I("trail_id").Asc()))
	if err != nil {
		return err
	}
	for _, trail := range trails {
		if park, ok := index[trail.ParkID]; ok {
			park.Trails = append(park.Trails, trail)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPark(row rowScanner) (*entities.Park, error) {
	park := &entities.Park{}
	var borough, zipcode, parkType sql.NullString
	var acres, avgRating sql.NullFloat64

	err := row.Scan(
		&park.ID,
		&park.Name,
		&borough,
		&zipcode,
		&park.Latitude,
		&park.Longitude,
		&parkType,
		&acres,
		&park.IsWaterfront,
		&avgRating,
	)
	if err != nil {
		return nil, err
	}

	park.Borough = borough.String
	park.ZipCode = zipcode.String
	park.ParkType = parkType.String
	park.Acres = floatPtr(acres)
	park.AvgRating = floatPtr(avgRating)
	return park, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
