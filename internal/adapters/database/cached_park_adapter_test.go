package database

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmypark/findmypark-nyc/internal/domain/entities"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	apperrors "github.com/findmypark/findmypark-nyc/pkg/errors"
)

// memCache is an in-memory CacheProvider. Cached adapter writes happen in
// goroutines, so access is mutex-guarded.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("key not found")
}

func (c *memCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := map[string][]byte{}
	for _, key := range keys {
		if v, ok := c.data[key]; ok {
			result[key] = v
		}
	}
	return result, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range items {
		c.data[k] = v
	}
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) put(t *testing.T, key string, value interface{}) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// memParkRepo counts the calls that reach the underlying store.
type memParkRepo struct {
	mu            sync.Mutex
	parks         map[string]*entities.Park
	getByIDCalls  int
	getByIDsArgs  [][]string
	catalogCalls  int
	detailedCalls int
}

func newMemParkRepo(parks ...*entities.Park) *memParkRepo {
	repo := &memParkRepo{parks: map[string]*entities.Park{}}
	for _, p := range parks {
		repo.parks[p.ID] = p
	}
	return repo
}

func (m *memParkRepo) Create(ctx context.Context, park *entities.Park) error {
	m.parks[park.ID] = park
	return nil
}

func (m *memParkRepo) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	m.mu.Lock()
	m.getByIDCalls++
	m.mu.Unlock()
	if p, ok := m.parks[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("park not found")
}

func (m *memParkRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	m.mu.Lock()
	m.getByIDsArgs = append(m.getByIDsArgs, ids)
	m.mu.Unlock()
	return m.byIDs(ids), nil
}

func (m *memParkRepo) GetByIDsDetailed(ctx context.Context, ids []string, reviewLimit int) ([]*entities.Park, error) {
	m.mu.Lock()
	m.detailedCalls++
	m.mu.Unlock()
	return m.byIDs(ids), nil
}

func (m *memParkRepo) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	return m.all(), nil
}

func (m *memParkRepo) ListCatalog(ctx context.Context) ([]*entities.Park, error) {
	m.mu.Lock()
	m.catalogCalls++
	m.mu.Unlock()
	return m.all(), nil
}

func (m *memParkRepo) TopRatedByBorough(ctx context.Context, borough string, limit int) ([]*entities.Park, error) {
	return m.all(), nil
}

func (m *memParkRepo) Statistics(ctx context.Context, id string) (*entities.ParkStatistics, error) {
	return &entities.ParkStatistics{ParkID: id}, nil
}

func (m *memParkRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.parks[id]
	return ok, nil
}

func (m *memParkRepo) all() []*entities.Park {
	parks := []*entities.Park{}
	for _, p := range m.parks {
		parks = append(parks, p)
	}
	return parks
}

func (m *memParkRepo) byIDs(ids []string) []*entities.Park {
	parks := []*entities.Park{}
	for _, id := range ids {
		if p, ok := m.parks[id]; ok {
			parks = append(parks, p)
		}
	}
	return parks
}

func waitForKey(t *testing.T, cache *memCache, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cache.has(key) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("key %s never appeared in cache", key)
}

func TestCachedParkAdapter_GetByID_HitSkipsDatabase(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo()
	adapter := NewCachedParkAdapter(repo, cache)

	cache.put(t, parkCacheKey("P001"), &entities.Park{ID: "P001", Name: "Prospect Park"})

	park, err := adapter.GetByID(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Prospect Park", park.Name)
	assert.Equal(t, 0, repo.getByIDCalls)
}

func TestCachedParkAdapter_GetByID_MissPopulatesCache(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo(&entities.Park{ID: "P001", Name: "Prospect Park"})
	adapter := NewCachedParkAdapter(repo, cache)

	park, err := adapter.GetByID(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "P001", park.ID)
	assert.Equal(t, 1, repo.getByIDCalls)

	waitForKey(t, cache, parkCacheKey("P001"))
}

func TestCachedParkAdapter_GetByIDs_FetchesOnlyMissing(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo(
		&entities.Park{ID: "P001", Name: "Prospect Park"},
		&entities.Park{ID: "P002", Name: "Astoria Park"},
	)
	adapter := NewCachedParkAdapter(repo, cache)

	cache.put(t, parkCacheKey("P001"), &entities.Park{ID: "P001", Name: "Prospect Park"})

	parks, err := adapter.GetByIDs(context.Background(), []string{"P001", "P002"})
	require.NoError(t, err)
	require.Len(t, parks, 2)

	// Requested order is preserved regardless of cache hits.
	assert.Equal(t, "P001", parks[0].ID)
	assert.Equal(t, "P002", parks[1].ID)

	require.Len(t, repo.getByIDsArgs, 1)
	assert.Equal(t, []string{"P002"}, repo.getByIDsArgs[0])
}

func TestCachedParkAdapter_ListCatalog_SecondReadHitsCache(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo(&entities.Park{ID: "P001", Name: "Prospect Park"})
	adapter := NewCachedParkAdapter(repo, cache)

	_, err := adapter.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.catalogCalls)

	waitForKey(t, cache, parkCatalogCacheKey)

	parks, err := adapter.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, parks, 1)
	assert.Equal(t, 1, repo.catalogCalls)
}

func TestCachedParkAdapter_InvalidatePark_DropsDerivedKeys(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo()
	adapter := NewCachedParkAdapter(repo, cache)

	cache.put(t, parkCacheKey("P001"), &entities.Park{ID: "P001"})
	cache.put(t, parkDetailedCacheKey("P001", 5), &entities.Park{ID: "P001"})
	cache.put(t, parkStatsCacheKey("P001"), &entities.ParkStatistics{ParkID: "P001"})
	cache.put(t, parkCatalogCacheKey, []*entities.Park{{ID: "P001"}})
	listKey := parkListCacheKey(repositories.ParkFilter{Borough: "Brooklyn"})
	cache.put(t, listKey, []*entities.Park{{ID: "P001"}})
	cache.put(t, parkCacheKey("P002"), &entities.Park{ID: "P002"})

	adapter.InvalidatePark(context.Background(), "P001")

	assert.False(t, cache.has(parkCacheKey("P001")))
	assert.False(t, cache.has(parkDetailedCacheKey("P001", 5)))
	assert.False(t, cache.has(parkStatsCacheKey("P001")))
	assert.False(t, cache.has(parkCatalogCacheKey))
	assert.False(t, cache.has(listKey))

	// Unrelated parks keep their entries.
	assert.True(t, cache.has(parkCacheKey("P002")))
}

func TestCachedParkAdapter_CorruptEntryFallsThrough(t *testing.T) {
	cache := newMemCache()
	repo := newMemParkRepo(&entities.Park{ID: "P001", Name: "Prospect Park"})
	adapter := NewCachedParkAdapter(repo, cache)

	require.NoError(t, cache.Set(context.Background(), parkCacheKey("P001"), []byte("{corrupt"), 300))

	park, err := adapter.GetByID(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Prospect Park", park.Name)
	assert.Equal(t, 1, repo.getByIDCalls)
}
