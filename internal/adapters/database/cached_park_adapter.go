package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
)

// CachedParkAdapter wraps ParkAdapter with caching. The full catalog read
// feeding the recommendation scorer is the hot path, so it gets its own
// key; review mutations invalidate park keys through InvalidatePark.
type CachedParkAdapter struct {
	adapter repositories.ParkRepository
	cache   providers.CacheProvider
}

// NewCachedParkAdapter creates a new cached park adapter
func NewCachedParkAdapter(adapter repositories.ParkRepository, cache providers.CacheProvider) *CachedParkAdapter {
	return &CachedParkAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	parkByIDTTL     = 300 // 5 minutes for single park
	parkCatalogTTL  = 180 // 3 minutes for the scorer catalog
	parkListTTL     = 180 // 3 minutes for filtered lists
	parkDetailedTTL = 120 // 2 minutes for parks with embedded reviews
	parkStatsTTL    = 120 // 2 minutes for statistics
)

// Cache key generators
func parkCacheKey(id string) string {
	return fmt.Sprintf("park:%s", id)
}

func parkDetailedCacheKey(id string, reviewLimit int) string {
	return fmt.Sprintf("park:detailed:%s:%d", id, reviewLimit)
}

func parkStatsCacheKey(id string) string {
	return fmt.Sprintf("park:stats:%s", id)
}

func parkListCacheKey(filter repositories.ParkFilter) string {
	waterfront := "any"
	if filter.IsWaterfront != nil {
		waterfront = fmt.Sprintf("%t", *filter.IsWaterfront)
	}
	return fmt.Sprintf("parks:list:%s:%s:%s:%.1f:%d:%d",
		filter.Borough, filter.ParkType, waterfront, filter.MinRating, filter.Limit, filter.Offset)
}

const parkCatalogCacheKey = "parks:catalog"

// Create creates a park and invalidates catalog caches
func (a *CachedParkAdapter) Create(ctx context.Context, park *entities.Park) error {
	if err := a.adapter.Create(ctx, park); err != nil {
		return err
	}

	go a.invalidateCatalog()
	return nil
}

// GetByID retrieves a park by ID with caching
func (a *CachedParkAdapter) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	cacheKey := parkCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var park entities.Park
		if err := json.Unmarshal(cached, &park); err == nil {
			observability.RecordCacheHit(ctx, "park")
			return &park, nil
		}
	}
	observability.RecordCacheMiss(ctx, "park")

	park, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Populate asynchronously to keep the read path fast
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(park); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, parkByIDTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Str("park_id", id).Msg("failed to cache park")
			}
		}
	}()

	return park, nil
}

// GetByIDs retrieves multiple parks by IDs with batch caching
func (a *CachedParkAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	if len(ids) == 0 {
		return []*entities.Park{}, nil
	}

	cacheKeys := make([]string, len(ids))
	for i, id := range ids {
		cacheKeys[i] = parkCacheKey(id)
	}

	cached, _ := a.cache.GetMulti(ctx, cacheKeys)

	byID := make(map[string]*entities.Park, len(ids))
	missingIDs := make([]string, 0)
	for i, id := range ids {
		if data, ok := cached[cacheKeys[i]]; ok {
			var park entities.Park
			if err := json.Unmarshal(data, &park); err == nil {
				observability.RecordCacheHit(ctx, "park")
				byID[id] = &park
				continue
			}
		}
		observability.RecordCacheMiss(ctx, "park")
		missingIDs = append(missingIDs, id)
	}

	if len(missingIDs) > 0 {
		dbParks, err := a.adapter.GetByIDs(ctx, missingIDs)
		if err != nil {
			return nil, err
		}
		for _, park := range dbParks {
			byID[park.ID] = park
		}

		go func() {
			bgCtx := context.Background()
			items := make(map[string][]byte, len(dbParks))
			for _, park := range dbParks {
				if data, err := json.Marshal(park); err == nil {
					items[parkCacheKey(park.ID)] = data
				}
			}
			if err := a.cache.SetMulti(bgCtx, items, parkByIDTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to batch cache parks")
			}
		}()
	}

	// Preserve the caller's requested order
	parks := make([]*entities.Park, 0, len(ids))
	for _, id := range ids {
		if park, ok := byID[id]; ok {
			parks = append(parks, park)
		}
	}
	return parks, nil
}

// GetByIDsDetailed retrieves parks with recent reviews, cached per park
func (a *CachedParkAdapter) GetByIDsDetailed(ctx context.Context, ids []string, reviewLimit int) ([]*entities.Park, error) {
	if len(ids) == 0 {
		return []*entities.Park{}, nil
	}

	cacheKeys := make([]string, len(ids))
	for i, id := range ids {
		cacheKeys[i] = parkDetailedCacheKey(id, reviewLimit)
	}

	cached, _ := a.cache.GetMulti(ctx, cacheKeys)

	byID := make(map[string]*entities.Park, len(ids))
	missingIDs := make([]string, 0)
	for i, id := range ids {
		if data, ok := cached[cacheKeys[i]]; ok {
			var park entities.Park
			if err := json.Unmarshal(data, &park); err == nil {
				observability.RecordCacheHit(ctx, "park_detailed")
				byID[id] = &park
				continue
			}
		}
		observability.RecordCacheMiss(ctx, "park_detailed")
		missingIDs = append(missingIDs, id)
	}

	if len(missingIDs) > 0 {
		dbParks, err := a.adapter.GetByIDsDetailed(ctx, missingIDs, reviewLimit)
		if err != nil {
			return nil, err
		}
		for _, park := range dbParks {
			byID[park.ID] = park
		}

		go func() {
			bgCtx := context.Background()
			items := make(map[string][]byte, len(dbParks))
			for _, park := range dbParks {
				if data, err := json.Marshal(park); err == nil {
					items[parkDetailedCacheKey(park.ID, reviewLimit)] = data
				}
			}
			if err := a.cache.SetMulti(bgCtx, items, parkDetailedTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to batch cache detailed parks")
			}
		}()
	}

	parks := make([]*entities.Park, 0, len(ids))
	for _, id := range ids {
		if park, ok := byID[id]; ok {
			parks = append(parks, park)
		}
	}
	return parks, nil
}

// List retrieves parks matching the filter with caching
func (a *CachedParkAdapter) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	cacheKey := parkListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var parks []*entities.Park
		if err := json.Unmarshal(cached, &parks); err == nil {
			observability.RecordCacheHit(ctx, "park_list")
			return parks, nil
		}
	}
	observability.RecordCacheMiss(ctx, "park_list")

	parks, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(parks); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, parkListTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to cache park list")
			}
		}
	}()

	return parks, nil
}

// ListCatalog retrieves the full scorer catalog with caching
func (a *CachedParkAdapter) ListCatalog(ctx context.Context) ([]*entities.Park, error) {
	if cached, err := a.cache.Get(ctx, parkCatalogCacheKey); err == nil {
		var parks []*entities.Park
		if err := json.Unmarshal(cached, &parks); err == nil {
			observability.RecordCacheHit(ctx, "park_catalog")
			return parks, nil
		}
	}
	observability.RecordCacheMiss(ctx, "park_catalog")

	parks, err := a.adapter.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(parks); err == nil {
			if err := a.cache.Set(bgCtx, parkCatalogCacheKey, data, parkCatalogTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to cache park catalog")
			}
		}
	}()

	return parks, nil
}

// TopRatedByBorough retrieves the highest-rated parks in a borough (uncached;
// only the seed summary uses it)
func (a *CachedParkAdapter) TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error) {
	return a.adapter.TopRatedByBorough(ctx, borough, limit)
}

// Statistics computes review statistics for a park with caching
func (a *CachedParkAdapter) Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error) {
	cacheKey := parkStatsCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var stats entities.ParkStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			observability.RecordCacheHit(ctx, "park_stats")
			return &stats, nil
		}
	}
	observability.RecordCacheMiss(ctx, "park_stats")

	stats, err := a.adapter.Statistics(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(stats); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, parkStatsTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Str("park_id", id).Msg("failed to cache park statistics")
			}
		}
	}()

	return stats, nil
}

// Exists reports whether a park exists (uncached; single indexed lookup)
func (a *CachedParkAdapter) Exists(ctx context.Context, id string) (bool, error) {
	return a.adapter.Exists(ctx, id)
}

// InvalidatePark drops every cached entry derived from a park's reviews.
// Review mutations call this after the aggregate recompute commits.
func (a *CachedParkAdapter) InvalidatePark(ctx context.Context, id string) {
	logger := observability.GetLogger()
	if err := a.cache.Delete(ctx, parkCacheKey(id)); err != nil {
		logger.Warn().Err(err).Str("park_id", id).Msg("failed to invalidate park cache")
	}
	if err := a.cache.DeletePattern(ctx, fmt.Sprintf("park:detailed:%s:*", id)); err != nil {
		logger.Warn().Err(err).Str("park_id", id).Msg("failed to invalidate detailed park cache")
	}
	if err := a.cache.Delete(ctx, parkStatsCacheKey(id)); err != nil {
		logger.Warn().Err(err).Str("park_id", id).Msg("failed to invalidate park statistics cache")
	}
	a.invalidateCatalog()
}

func (a *CachedParkAdapter) invalidateCatalog() {
	bgCtx := context.Background()
	logger := observability.GetLogger()
	if err := a.cache.Delete(bgCtx, parkCatalogCacheKey); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate park catalog cache")
	}
	if err := a.cache.DeletePattern(bgCtx, "parks:list:*"); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate park list caches")
	}
}
