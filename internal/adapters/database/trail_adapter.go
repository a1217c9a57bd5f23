package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

var trailColumns = []interface{}{
	"trail_id", "park_id", "trail_name", "width_ft", "surface",
}

// TrailAdapter implements the TrailRepository interface
type TrailAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTrailAdapter creates a new trail adapter
func NewTrailAdapter(client *postgres.Client) repositories.TrailRepository {
	return &TrailAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a trail row (seed path)
func (a *TrailAdapter) Create(ctx context.Context, trail *entities.Trail) error {
	record := goqu.Record{
		"park_id":    trail.ParkID,
		"trail_name": sql.NullString{String: trail.Name, Valid: trail.Name != ""},
		"width_ft":   sql.NullString{String: trail.WidthFt, Valid: trail.WidthFt != ""},
		"surface":    sql.NullString{String: trail.Surface, Valid: trail.Surface != ""},
	}

	query, args, err := a.db.Insert("trails").Rows(record).
		Returning("trail_id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build trail insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&trail.ID); err != nil {
		return apperrors.NewInternalError("failed to create trail", err)
	}

	return nil
}

// ListByPark retrieves all trails of a park
func (a *TrailAdapter) ListByPark(ctx context.Context, parkID string) ([]*entities.Trail, error) {
	return selectTrails(ctx, a.client, a.db.Select(trailColumns...).
		From("trails").
		Where(goqu.Ex{"park_id": parkID}).
		Order(goqu.I("trail_id").Asc()))
}

func selectTrails(ctx context.Context, client *postgres.Client, ds *goqu.SelectDataset) ([]*entities.Trail, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build trail query", err)
	}

	rows, err := client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query trails", err)
	}
	defer rows.Close()

	trails := []*entities.Trail{}
	for rows.Next() {
		trail := &entities.Trail{}
		var name, widthFt, surface sql.NullString
		if err := rows.Scan(&trail.ID, &trail.ParkID, &name, &widthFt, &surface); err != nil {
			return nil, apperrors.NewInternalError("failed to scan trail", err)
		}
		trail.Name = name.String
		trail.WidthFt = widthFt.String
		trail.Surface = surface.String
		trails = append(trails, trail)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate trails", err)
	}

	return trails, nil
}
