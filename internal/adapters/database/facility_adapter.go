package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

var facilityColumns = []interface{}{
	"facility_id", "park_id", "facility_type", "dimensions", "surface_type",
	"is_lighted", "is_accessible", "field_condition", "avg_facility_rating",
	"total_facility_reviews",
}

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a facility row (seed path). The adapter assigns the
// generated facility_id back onto the entity.
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	record := goqu.Record{
		"park_id":                facility.ParkID,
		"facility_type":          facility.FacilityType,
		"dimensions":             sql.NullString{String: facility.Dimensions, Valid: facility.Dimensions != ""},
		"surface_type":           sql.NullString{String: facility.SurfaceType, Valid: facility.SurfaceType != ""},
		"is_lighted":             facility.IsLighted,
		"is_accessible":          facility.IsAccessible,
		"field_condition":        sql.NullString{String: facility.FieldCondition, Valid: facility.FieldCondition != ""},
		"avg_facility_rating":    nullFloat(facility.AvgRating),
		"total_facility_reviews": facility.TotalReviews,
	}

	query, args, err := a.db.Insert("facilities").Rows(record).
		Returning("facility_id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build facility insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&facility.ID); err != nil {
		return apperrors.NewInternalError("failed to create facility", err)
	}

	return nil
}

// GetByID retrieves a facility by ID
func (a *FacilityAdapter) GetByID(ctx context.Context, id int64) (*entities.Facility, error) {
	facilities, err := selectFacilities(ctx, a.client, a.db.Select(facilityColumns...).
		From("facilities").
		Where(goqu.Ex{"facility_id": id}))
	if err != nil {
		return nil, err
	}
	if len(facilities) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %d not found", id))
	}
	return facilities[0], nil
}

// ListByPark retrieves all facilities of a park
func (a *FacilityAdapter) ListByPark(ctx context.Context, parkID string) ([]*entities.Facility, error) {
	return selectFacilities(ctx, a.client, a.db.Select(facilityColumns...).
		From("facilities").
		Where(goqu.Ex{"park_id": parkID}).
		Order(goqu.I("facility_id").Asc()))
}

// List retrieves facilities matching the filter
func (a *FacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	ds := a.db.Select(facilityColumns...).From("facilities")

	if filter.FacilityType != "" {
		ds = ds.Where(goqu.Ex{"facility_type": filter.FacilityType})
	}
	if filter.ParkID != "" {
		ds = ds.Where(goqu.Ex{"park_id": filter.ParkID})
	}

	ds = ds.Order(goqu.I("facility_id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return selectFacilities(ctx, a.client, ds)
}

// Exists reports whether a facility exists
func (a *FacilityAdapter) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := a.client.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM facilities WHERE facility_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check facility existence", err)
	}
	return exists, nil
}

func selectFacilities(ctx context.Context, client *postgres.Client, ds *goqu.SelectDataset) ([]*entities.Facility, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build facility query", err)
	}

	rows, err := client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.Facility{}
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate facilities", err)
	}

	return facilities, nil
}

func scanFacility(row rowScanner) (*entities.Facility, error) {
	facility := &entities.Facility{}
	var dimensions, surfaceType, fieldCondition sql.NullString
	var avgRating sql.NullFloat64

	err := row.Scan(
		&facility.ID,
		&facility.ParkID,
		&facility.FacilityType,
		&dimensions,
		&surfaceType,
		&facility.IsLighted,
		&facility.IsAccessible,
		&fieldCondition,
		&avgRating,
		&facility.TotalReviews,
	)
	if err != nil {
		return nil, err
	}

	facility.Dimensions = dimensions.String
	facility.SurfaceType = surfaceType.String
	facility.FieldCondition = fieldCondition.String
	facility.AvgRating = floatPtr(avgRating)
	return facility, nil
}
