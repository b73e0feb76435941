package collector

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmigration/widcollector/pkg/errors"
	"netmigration/widcollector/services/cache"
)

// MockCacheService implements cache.CacheService in memory
type MockCacheService struct {
	mu     sync.Mutex
	items  map[string][]byte
	setErr error
	sets   int
}

var _ cache.CacheService = (*MockCacheService)(nil)

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{items: make(map[string][]byte)}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return v, nil
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func TestCachedServesSecondLookupFromCache(t *testing.T) {
	ctx := context.Background()
	inner := newFakeCollector(testRecord(t, "1234567"))
	mc := NewMockCacheService()
	c := NewCached(inner, mc, time.Hour)

	require.NoError(t, c.Connect(ctx))

	first, found, err := c.SearchByService(ctx, "1234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, mc.items, CacheKey("FAKE", "1234567"))

	second, found, err := c.SearchByService(ctx, "1234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, inner.searches)
	assert.Equal(t, first.ServiceID, second.ServiceID)
	assert.Equal(t, first.RingName, second.RingName)
	assert.Equal(t, first.RawData, second.RawData)
}

func TestCachedTrimsServiceID(t *testing.T) {
	ctx := context.Background()
	inner := newFakeCollector(testRecord(t, "1234567"))
	mc := NewMockCacheService()
	c := NewCached(inner, mc, time.Hour)
	require.NoError(t, c.Connect(ctx))

	rec, found, err := c.SearchByService(ctx, " 1234567 ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1234567", rec.ServiceID)

	_, found, err = c.SearchByService(ctx, "1234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, inner.searches)
	assert.Len(t, mc.items, 1)

	_, _, err = c.SearchByService(ctx, "  ")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, 1, inner.searches)
}

func TestCachedDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	inner := newFakeCollector()
	mc := NewMockCacheService()
	c := NewCached(inner, mc, time.Hour)
	require.NoError(t, c.Connect(ctx))

	rec, found, err := c.SearchByService(ctx, "999")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
	assert.Empty(t, mc.items)

	inner.searchErr = errors.NewAmbiguous("FAKE", "999", 2)
	_, _, err = c.SearchByService(ctx, "999")
	assert.True(t, errors.IsType(err, errors.ErrorTypeAmbiguous))
	assert.Empty(t, mc.items)
}

func TestCachedRequiresConnection(t *testing.T) {
	inner := newFakeCollector(testRecord(t, "1"))
	mc := NewMockCacheService()
	mc.items[CacheKey("FAKE", "1")] = []byte(`{"service_id":"1"}`)
	c := NewCached(inner, mc, time.Hour)

	_, _, err := c.SearchByService(context.Background(), "1")
	assert.True(t, errors.IsNotConnected(err))
}

func TestCachedBypassesBrokenCache(t *testing.T) {
	ctx := context.Background()
	inner := newFakeCollector(testRecord(t, "1"))
	mc := NewMockCacheService()
	mc.items[CacheKey("FAKE", "1")] = []byte("not json")
	mc.setErr = stderrors.New("server down")
	c := NewCached(inner, mc, time.Hour)
	require.NoError(t, c.Connect(ctx))

	rec, found, err := c.SearchByService(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", rec.ServiceID)
	assert.Equal(t, 1, inner.searches)
	assert.Equal(t, 1, mc.sets)
	assert.NotContains(t, mc.items, CacheKey("FAKE", "1"))
}

func TestCachedDelegatesSession(t *testing.T) {
	ctx := context.Background()
	inner := newFakeCollector()
	c := NewCached(inner, NewMockCacheService(), time.Hour)

	assert.Equal(t, "FAKE", c.Name())
	assert.Same(t, inner, c.Unwrap())
	assert.NoError(t, c.Connect(ctx))
	assert.True(t, inner.IsConnected())

	group, err := c.SearchByGroup(ctx, "ME-BHBA_0015")
	assert.NoError(t, err)
	assert.Empty(t, group)

	assert.NoError(t, c.Disconnect())
	assert.False(t, c.IsConnected())
}
