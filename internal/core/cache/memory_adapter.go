package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryAdapter implements the Cache interface in process memory.
// When full, expired entries are dropped first, then the least recently used one.
type MemoryAdapter struct {
	items    *ttlcache.Cache[string, []byte]
	bounded  bool
	stopOnce sync.Once

	evictions atomic.Uint64
	expired   atomic.Uint64
}

// NewMemoryAdapter creates an in-memory cache holding at most maxEntries values.
// A non-positive maxEntries disables the bound.
func NewMemoryAdapter(maxEntries int) *MemoryAdapter {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(maxEntries)))
	}

	m := &MemoryAdapter{
		items:   ttlcache.New[string, []byte](opts...),
		bounded: maxEntries > 0,
	}
	m.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, []byte]) {
		switch reason {
		case ttlcache.EvictionReasonCapacityReached:
			m.evictions.Add(1)
		case ttlcache.EvictionReasonExpired:
			m.expired.Add(1)
		}
	})
	go m.items.Start()
	return m
}

// Get retrieves a copy of the value stored under key.
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	item := m.items.Get(key)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	value := item.Value()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value with the specified TTL.
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	if m.bounded {
		m.items.DeleteExpired()
	}
	m.items.Set(key, stored, ttl)
	return nil
}

// Delete removes a value by key. Deleting a missing key is not an error.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Ping always succeeds.
func (m *MemoryAdapter) Ping(_ context.Context) error {
	return nil
}

// Stats returns a snapshot of the usage counters.
// Eviction and expiry counts are recorded asynchronously and may trail by a moment.
func (m *MemoryAdapter) Stats(_ context.Context) (Stats, error) {
	m.items.DeleteExpired()
	metrics := m.items.Metrics()

	return Stats{
		Backend:   "memory",
		Entries:   m.items.Len(),
		Hits:      metrics.Hits,
		Misses:    metrics.Misses,
		Evictions: m.evictions.Load(),
		Expired:   m.expired.Load(),
	}, nil
}

// Close stops the expiry loop and releases every entry.
func (m *MemoryAdapter) Close() error {
	m.stopOnce.Do(m.items.Stop)
	m.items.DeleteAll()
	return nil
}
