package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("returns stored value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
		data, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "copy", []byte("abc"), 0))
		data, _, _ := store.Get(ctx, "copy")
		data[0] = 'z'
		again, _, _ := store.Get(ctx, "copy")
		assert.Equal(t, "abc", string(again))
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now))

	require.NoError(t, store.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("2"), 0))

	clock.Advance(2 * time.Second)

	_, ok, _ := store.Get(ctx, "short")
	assert.False(t, ok, "expired entry should miss")
	_, ok, _ = store.Get(ctx, "forever")
	assert.True(t, ok, "zero ttl never expires")
}

func TestMemoryStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStore(WithClock(clock.Now))

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "b", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "c", []byte("1"), time.Hour))

	clock.Advance(time.Minute)
	assert.Equal(t, 2, store.Cleanup())
	assert.Equal(t, 1, store.Stats().Entries)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, k := range []string{"u1:invoices:list", "u1:invoices:stats", "u1:clients:list", "u2:invoices:list"} {
		require.NoError(t, store.Set(ctx, k, []byte("x"), 0))
	}

	n, err := store.DeletePrefix(ctx, "u1:invoices")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := store.Get(ctx, "u1:clients:list")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, "u2:invoices:list")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, "u1:invoices:stats")
	assert.False(t, ok)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	_, _, _ = store.Get(ctx, "k")
	_, _, _ = store.Get(ctx, "k")
	_, _, _ = store.Get(ctx, "nope")

	stats := store.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 0.0001)
	assert.Equal(t, 0.0, Stats{}.HitRate())
}

func TestMemoryStore_StartCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemoryStore()
	store.StartCleanup(ctx, 5*time.Millisecond)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))
	assert.Eventually(t, func() bool {
		return store.Stats().Entries == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k"
			if i%2 == 0 {
				_ = store.Set(ctx, key, []byte("v"), time.Minute)
			} else {
				_, _, _ = store.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	_, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
}
