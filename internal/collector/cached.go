package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"netmigration/widcollector/internal/record"
	"netmigration/widcollector/logger"
	"netmigration/widcollector/pkg/errors"
	"netmigration/widcollector/services/cache"
)

// Cached serves SearchByService from a record cache before asking the
// wrapped collector. Only found records are cached.
type Cached struct {
	inner Collector
	cache cache.CacheService
	ttl   time.Duration
	log   *logger.Logger
}

var _ Collector = (*Cached)(nil)

// NewCached wraps inner with a record cache
func NewCached(inner Collector, cacheSvc cache.CacheService, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		cache: cacheSvc,
		ttl:   ttl,
		log:   logger.ForCache().WithField("collector", inner.Name()),
	}
}

// CacheKey returns the cache key of a service record
func CacheKey(source, serviceID string) string {
	return fmt.Sprintf("record:%s:%s", source, serviceID)
}

func (c *Cached) Name() string                      { return c.inner.Name() }
func (c *Cached) Connect(ctx context.Context) error { return c.inner.Connect(ctx) }
func (c *Cached) Disconnect() error                 { return c.inner.Disconnect() }
func (c *Cached) IsConnected() bool                 { return c.inner.IsConnected() }

// Unwrap returns the wrapped collector
func (c *Cached) Unwrap() Collector { return c.inner }

func (c *Cached) SearchByService(ctx context.Context, serviceID string) (*record.ServiceData, bool, error) {
	if !c.inner.IsConnected() {
		return nil, false, errors.NewNotConnected(c.Name())
	}

	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, false, errors.NewValidation(c.Name(), "service id is required")
	}

	key := CacheKey(c.Name(), serviceID)
	if rec, ok := c.load(key); ok {
		c.log.Debug().Str("service_id", serviceID).Msg("Record served from cache")
		return rec, true, nil
	}

	rec, found, err := c.inner.SearchByService(ctx, serviceID)
	if err != nil || !found {
		return rec, found, err
	}

	c.store(key, rec)
	return rec, true, nil
}

func (c *Cached) SearchByGroup(ctx context.Context, groupID string) ([]record.ServiceData, error) {
	return c.inner.SearchByGroup(ctx, groupID)
}

func (c *Cached) load(key string) (*record.ServiceData, bool) {
	data, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var rec record.ServiceData
	if err := json.Unmarshal(data, &rec); err != nil || rec.ServiceID == "" {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cache entry")
		_ = c.cache.Delete(key)
		return nil, false
	}
	return &rec, true
}

func (c *Cached) store(key string, rec *record.ServiceData) {
	data, err := json.Marshal(rec)
	if err != nil {
		c.log.Warn().Err(errors.NewCache(c.Name(), "encode record", err)).Msg("Record not cached")
		return
	}
	if err := c.cache.Set(key, data, c.ttl); err != nil {
		c.log.Warn().Err(errors.NewCache(c.Name(), "store record", err)).Str("key", key).Msg("Record not cached")
	}
}
