package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const (
	keyPrefix = "widcollector:"
	// memcached rejects longer keys
	maxKeyLength = 250
)

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = 500 * time.Millisecond
	return &MemcacheService{
		client: client,
	}
}

// Ping checks that every configured server answers
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(storageKey(key))
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        storageKey(key),
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(storageKey(key))
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}

// storageKey namespaces key and replaces characters memcached does not
// accept. Keys that end up too long are hashed.
func storageKey(key string) string {
	k := keyPrefix + strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f || r > 0x7e {
			return '_'
		}
		return r
	}, key)
	if len(k) <= maxKeyLength {
		return k
	}
	sum := sha1.Sum([]byte(key))
	return keyPrefix + "h:" + hex.EncodeToString(sum[:])
}
