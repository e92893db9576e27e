package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryAdapter(t *testing.T, max int) *MemoryAdapter {
	m := NewMemoryAdapter(max)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemoryAdapter_GetSet(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)
	ctx := context.Background()

	value := []byte("value")
	require.NoError(t, m.Set(ctx, "k", value, time.Minute))

	// Mutating the caller's slice must not affect the cached copy.
	value[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryAdapter_GetNotFound(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryAdapter_TTL(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", []byte("1"), 50*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", []byte("2"), 0))

	_, err := m.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		stats, err := m.Stats(ctx)
		return err == nil && stats.Expired == 1 && stats.Entries == 1
	}, time.Second, 10*time.Millisecond)
}

// TestMemoryAdapter_ReadDoesNotExtendTTL verifies that hits leave the expiry untouched.
func TestMemoryAdapter_ReadDoesNotExtendTTL(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 80*time.Millisecond))
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		_, _ = m.Get(ctx, "k")
	}

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAdapter_EvictsLeastRecentlyUsed(t *testing.T) {
	m := newTestMemoryAdapter(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))

	// Touch "a" so "b" becomes the oldest.
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3"), 0))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		stats, err := m.Stats(ctx)
		return err == nil && stats.Evictions == 1 && stats.Entries == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryAdapter_ExpiredEntriesFreeRoomFirst(t *testing.T) {
	m := newTestMemoryAdapter(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "fresh", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "stale", []byte("2"), 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, m.Set(ctx, "new", []byte("3"), 0))

	_, err := m.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "new")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		stats, err := m.Stats(ctx)
		return err == nil && stats.Expired == 1 && stats.Entries == 2
	}, time.Second, 10*time.Millisecond)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Evictions)
}

func TestMemoryAdapter_Delete(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAdapter_Stats(t *testing.T) {
	m := newTestMemoryAdapter(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	_, _ = m.Get(ctx, "k")
	_, _ = m.Get(ctx, "k")
	_, _ = m.Get(ctx, "nope")

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Backend: "memory", Entries: 1, Hits: 2, Misses: 1}, stats)

	assert.NoError(t, m.Ping(ctx))
	assert.NoError(t, m.Close())

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestMemoryAdapter_Concurrent(t *testing.T) {
	m := newTestMemoryAdapter(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = m.Set(ctx, key, []byte{byte(i)}, time.Minute)
			_, _ = m.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Entries)
}

var _ Cache = (*MemoryAdapter)(nil)
var _ StatsProvider = (*MemoryAdapter)(nil)
var _ Cache = (*RedisAdapter)(nil)
var _ StatsProvider = (*RedisAdapter)(nil)
