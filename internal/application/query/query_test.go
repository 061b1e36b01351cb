package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/cache"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

func newTestClient(t *testing.T) (*Client, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	return NewClient(store, config.CacheConfig{}, nil), store
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	assert.Equal(t, "tasks:a:1", Key("tasks", "a", 1))
	assert.Equal(t, "tasks:detail:"+id.String(), DetailKey("tasks", id))
	assert.Equal(t, "projects:stats", StatsKey("projects"))
	assert.Equal(t, id.String()+":tasks:stats", Scoped(id, StatsKey("tasks")))

	type filter struct {
		Page   int
		Status []string
	}
	a := ListKey("tasks", filter{Page: 1, Status: []string{"todo"}})
	b := ListKey("tasks", filter{Page: 1, Status: []string{"todo"}})
	c := ListKey("tasks", filter{Page: 2, Status: []string{"todo"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestStaleTimes(t *testing.T) {
	st := StaleTimesFromConfig(config.CacheConfig{})
	ttl, ok := st.TTL(TierUserData)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, ttl)
	ttl, ok = st.TTL(TierAnalytics)
	assert.True(t, ok)
	assert.Equal(t, 60*time.Second, ttl)
	ttl, ok = st.TTL(TierStatic)
	assert.True(t, ok)
	assert.Zero(t, ttl)
	_, ok = st.TTL(TierRealtime)
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("caches successful loads", func(t *testing.T) {
		c, _ := newTestClient(t)
		calls := 0
		load := func(context.Context) (item, error) {
			calls++
			return item{ID: 1, Status: "todo"}, nil
		}
		v, err := Fetch(ctx, c, userID, "tasks:detail:1", TierUserData, load)
		require.NoError(t, err)
		assert.Equal(t, 1, v.ID)
		v, err = Fetch(ctx, c, userID, "tasks:detail:1", TierUserData, load)
		require.NoError(t, err)
		assert.Equal(t, "todo", v.Status)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		c, _ := newTestClient(t)
		calls := 0
		load := func(context.Context) (item, error) {
			calls++
			return item{}, errors.New("boom")
		}
		_, err := Fetch(ctx, c, userID, "k", TierUserData, load)
		require.Error(t, err)
		_, err = Fetch(ctx, c, userID, "k", TierUserData, load)
		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("realtime always loads", func(t *testing.T) {
		c, store := newTestClient(t)
		calls := 0
		load := func(context.Context) (item, error) {
			calls++
			return item{ID: calls}, nil
		}
		_, _ = Fetch(ctx, c, userID, "messages:list", TierRealtime, load)
		v, _ := Fetch(ctx, c, userID, "messages:list", TierRealtime, load)
		assert.Equal(t, 2, v.ID)
		assert.Zero(t, store.Stats().Entries)
	})

	t.Run("scopes by user", func(t *testing.T) {
		c, _ := newTestClient(t)
		other := uuid.New()
		_, _ = Fetch(ctx, c, userID, "clients:stats", TierUserData, func(context.Context) (item, error) {
			return item{ID: 1}, nil
		})
		v, _ := Fetch(ctx, c, other, "clients:stats", TierUserData, func(context.Context) (item, error) {
			return item{ID: 2}, nil
		})
		assert.Equal(t, 2, v.ID)
	})

	t.Run("requires a user", func(t *testing.T) {
		c, _ := newTestClient(t)
		_, err := Fetch(ctx, c, uuid.Nil, "k", TierUserData, func(context.Context) (item, error) {
			return item{}, nil
		})
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})

	t.Run("collapses concurrent loads", func(t *testing.T) {
		c, _ := newTestClient(t)
		var calls int32
		release := make(chan struct{})
		load := func(context.Context) (item, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return item{ID: 7}, nil
		}
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := Fetch(ctx, c, userID, "analytics:dashboard", TierAnalytics, load)
				assert.NoError(t, err)
				assert.Equal(t, 7, v.ID)
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()
		assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	})
}

func TestFetch_InvalidationDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	userID := uuid.New()
	key := StatsKey(ResourceInvoices)

	var mu sync.Mutex
	current := "old"
	read := func() string {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	snapshotted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan item)
	go func() {
		v, err := Fetch(ctx, c, userID, key, TierUserData, func(context.Context) (item, error) {
			status := read()
			close(snapshotted)
			<-release
			return item{Status: status}, nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-snapshotted
	mu.Lock()
	current = "new"
	mu.Unlock()
	c.InvalidateResource(ctx, userID, ResourceInvoices)
	close(release)
	assert.Equal(t, "old", (<-done).Status)

	v, err := Fetch(ctx, c, userID, key, TierUserData, func(context.Context) (item, error) {
		return item{Status: read()}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v.Status)
}

func TestFetch_LoadAfterInvalidationDoesNotJoinStaleFlight(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	userID := uuid.New()
	key := StatsKey(ResourceClients)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = Fetch(ctx, c, userID, key, TierUserData, func(context.Context) (item, error) {
			close(started)
			<-release
			return item{Status: "old"}, nil
		})
	}()
	<-started
	c.InvalidateResource(ctx, userID, ResourceClients)

	v, err := Fetch(ctx, c, userID, key, TierUserData, func(context.Context) (item, error) {
		return item{Status: "new"}, nil
	})
	close(release)
	require.NoError(t, err)
	assert.Equal(t, "new", v.Status)
}

func TestInvalidateResource(t *testing.T) {
	ctx := context.Background()
	c, store := newTestClient(t)
	userID, other := uuid.New(), uuid.New()

	for _, k := range []string{"invoices:list:x", "analytics:dashboard", "clients:stats", "tasks:list:y"} {
		require.NoError(t, Put(ctx, c, userID, k, TierUserData, item{ID: 1}))
	}
	require.NoError(t, Put(ctx, c, other, "invoices:list:x", TierUserData, item{ID: 1}))

	removed := c.InvalidateResource(ctx, userID, ResourceInvoices)
	assert.Equal(t, 3, removed)

	_, ok := Peek[item](ctx, c, userID, "tasks:list:y")
	assert.True(t, ok)
	_, ok = Peek[item](ctx, c, other, "invoices:list:x")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Stats().Entries)
}

func TestTaskFanOutTouchesProjectStatsOnly(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	userID := uuid.New()
	require.NoError(t, Put(ctx, c, userID, "projects:stats", TierUserData, item{}))
	require.NoError(t, Put(ctx, c, userID, "projects:list:a", TierUserData, item{}))

	c.InvalidateResource(ctx, userID, ResourceTasks)

	_, ok := Peek[item](ctx, c, userID, "projects:stats")
	assert.False(t, ok)
	_, ok = Peek[item](ctx, c, userID, "projects:list:a")
	assert.True(t, ok)
}

func TestOptimistic(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := DetailKey(ResourceTasks, uuid.New())
	setDone := func(prev item) item {
		prev.Status = "done"
		return prev
	}

	t.Run("rollback restores snapshot", func(t *testing.T) {
		c, _ := newTestClient(t)
		require.NoError(t, Put(ctx, c, userID, key, TierUserData, item{ID: 1, Status: "todo"}))

		tx, err := Begin(ctx, c, userID, ResourceTasks, key, TierUserData, setDone)
		require.NoError(t, err)
		v, _ := Peek[item](ctx, c, userID, key)
		assert.Equal(t, "done", v.Status)

		require.NoError(t, tx.Rollback(ctx))
		v, ok := Peek[item](ctx, c, userID, key)
		require.True(t, ok)
		assert.Equal(t, item{ID: 1, Status: "todo"}, v)
	})

	t.Run("rollback leaves nothing when nothing was cached", func(t *testing.T) {
		c, _ := newTestClient(t)
		tx, err := Begin(ctx, c, userID, ResourceTasks, key, TierUserData, setDone)
		require.NoError(t, err)
		_, ok := Peek[item](ctx, c, userID, key)
		assert.False(t, ok)
		require.NoError(t, tx.Rollback(ctx))
		_, ok = Peek[item](ctx, c, userID, key)
		assert.False(t, ok)
	})

	t.Run("commit writes actual and fans out", func(t *testing.T) {
		c, _ := newTestClient(t)
		require.NoError(t, Put(ctx, c, userID, "projects:stats", TierUserData, item{}))
		tx, err := Begin(ctx, c, userID, ResourceTasks, key, TierUserData, setDone)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx, item{ID: 1, Status: "done"}))

		v, ok := Peek[item](ctx, c, userID, key)
		require.True(t, ok)
		assert.Equal(t, item{ID: 1, Status: "done"}, v)
		_, ok = Peek[item](ctx, c, userID, "projects:stats")
		assert.False(t, ok)
		// second call is a no-op
		require.NoError(t, tx.Rollback(ctx))
		_, ok = Peek[item](ctx, c, userID, key)
		assert.True(t, ok)
	})

	t.Run("run rolls back on failure", func(t *testing.T) {
		c, _ := newTestClient(t)
		require.NoError(t, Put(ctx, c, userID, key, TierUserData, item{ID: 1, Status: "todo"}))
		boom := errors.New("db down")
		_, err := Run(ctx, c, userID, ResourceTasks, key, TierUserData, setDone, func(context.Context) (item, error) {
			v, _ := Peek[item](ctx, c, userID, key)
			assert.Equal(t, "done", v.Status)
			return item{}, boom
		})
		assert.ErrorIs(t, err, boom)
		v, _ := Peek[item](ctx, c, userID, key)
		assert.Equal(t, "todo", v.Status)
	})
}
