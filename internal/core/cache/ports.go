package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("key not found")

// Cache defines the caching operations interface following hexagonal architecture.
// Implementations: RedisAdapter for shared deployments, MemoryAdapter for a single process.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns an error wrapping ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Backend   string `json:"backend"`
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Expired   uint64 `json:"expired"`
}

// StatsProvider is implemented by caches that can report usage counters.
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}
