package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a value
	err := mc.Set("record:WID:1234567", []byte(`{"service_id":"1234567"}`), 1*time.Second)
	assert.NoError(t, err)

	// Get the value
	value, err := mc.Get("record:WID:1234567")
	assert.NoError(t, err)
	assert.Equal(t, `{"service_id":"1234567"}`, string(value))

	// Delete the value
	err = mc.Delete("record:WID:1234567")
	assert.NoError(t, err)

	// Try to get the deleted value
	_, err = mc.Get("record:WID:1234567")
	assert.Error(t, err)

	// Deleting a missing key is not an error
	assert.NoError(t, mc.Delete("record:WID:1234567"))
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "widcollector:record:WID:1234567", storageKey("record:WID:1234567"))
	assert.Equal(t, "widcollector:record:WID:12_34", storageKey("record:WID:12 34"))
	assert.Equal(t, "widcollector:record:WID:Ingenier_a", storageKey("record:WID:Ingeniería"))

	long := storageKey(strings.Repeat("x", 400))
	assert.LessOrEqual(t, len(long), maxKeyLength)
	assert.True(t, strings.HasPrefix(long, "widcollector:h:"))
	assert.Equal(t, long, storageKey(strings.Repeat("x", 400)))
}
