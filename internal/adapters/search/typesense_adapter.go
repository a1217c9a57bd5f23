package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	tsclient "github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/typesense"
)

const collectionName = "parks"

// TypesenseAdapter implements park name search using Typesense. The index
// holds the catalog fields needed to render a search result card; callers
// wanting full detail re-fetch from Postgres by ID.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ParkSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the parks collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "borough", Type: "string", Facet: pointer.True()},
			{Name: "park_type", Type: "string", Facet: pointer.True()},
			{Name: "is_waterfront", Type: "bool"},
			{Name: "rating", Type: "float"},
			{Name: "acres", Type: "float"},
			{Name: "facility_types", Type: "string[]"},
		},
		DefaultSortingField: pointer.String("rating"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a park document
func (a *TypesenseAdapter) Index(ctx context.Context, park *entities.Park) error {
	acres := 0.0
	if park.Acres != nil {
		acres = *park.Acres
	}

	document := map[string]interface{}{
		"id":             park.ID,
		"name":           park.Name,
		"borough":        park.Borough,
		"park_type":      park.ParkType,
		"is_waterfront":  park.IsWaterfront,
		"rating":         park.Rating(),
		"acres":          acres,
		"facility_types": park.FacilityTypes(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index park: %w", err)
	}

	return nil
}

// Delete removes a park from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete park from index: %w", err)
	}
	return nil
}

// Search searches parks by name, typo-tolerant, best rated first on ties
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Park, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = "*"
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name"),
		SortBy:  pointer.String("_text_match:desc,rating:desc"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search parks: %w", err)
	}

	parks := []*entities.Park{}
	if result.Hits == nil {
		return parks, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		parks = append(parks, parkFromDocument(*hit.Document))
	}

	return parks, nil
}

// parkFromDocument rebuilds a partial Park entity from an index document.
// Typesense returns map[string]interface{}, so every field is cast defensively.
func parkFromDocument(doc map[string]interface{}) *entities.Park {
	park := &entities.Park{}

	if val, ok := doc["id"].(string); ok {
		park.ID = val
	}
	if val, ok := doc["name"].(string); ok {
		park.Name = val
	}
	if val, ok := doc["borough"].(string); ok {
		park.Borough = val
	}
	if val, ok := doc["park_type"].(string); ok {
		park.ParkType = val
	}
	if val, ok := doc["is_waterfront"].(bool); ok {
		park.IsWaterfront = val
	}
	if val, ok := doc["rating"].(float64); ok && val > 0 {
		rating := val
		park.AvgRating = &rating
	}
	if val, ok := doc["acres"].(float64); ok && val > 0 {
		acres := val
		park.Acres = &acres
	}
	if raw, ok := doc["facility_types"].([]interface{}); ok {
		for _, item := range raw {
			if facilityType, ok := item.(string); ok {
				park.Facilities = append(park.Facilities, &entities.Facility{FacilityType: facilityType})
			}
		}
	}

	return park
}
