package cache

import (
	"time"
)

// CacheService stores opaque values, such as encoded service records, under string keys
type CacheService interface {
	// Get retrieves a value. A missing key is an error.
	Get(key string) ([]byte, error)

	// Set stores a value that expires after expiration
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(key string) error
}
