package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/cache"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is the query cache shared by application services
type Client struct {
	store  cache.Store
	stale  StaleTimes
	group  singleflight.Group
	fanOut map[string][]string
	gens   generations
	logger *zap.Logger
}

// generations counts invalidations per user and key prefix. A load that
// started before an invalidation of its key must not repopulate the cache.
type generations struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]map[string]uint64
}

func (g *generations) bump(userID uuid.UUID, prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.byUser == nil {
		g.byUser = make(map[uuid.UUID]map[string]uint64)
	}
	m, ok := g.byUser[userID]
	if !ok {
		m = make(map[string]uint64)
		g.byUser[userID] = m
	}
	m[prefix]++
}

// of sums the generations of every invalidated prefix covering key
func (g *generations) of(userID uuid.UUID, key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var n uint64
	for prefix, gen := range g.byUser[userID] {
		if strings.HasPrefix(key, prefix) {
			n += gen
		}
	}
	return n
}

// Option configures a Client
type Option func(*Client)

// WithFanOut replaces the invalidation table
func WithFanOut(table map[string][]string) Option {
	return func(c *Client) {
		c.fanOut = table
	}
}

// WithStaleTimes overrides the tier ttls
func WithStaleTimes(st StaleTimes) Option {
	return func(c *Client) {
		c.stale = st
	}
}

// NewClient creates a query cache over store
func NewClient(store cache.Store, cfg config.CacheConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		store:  store,
		stale:  StaleTimesFromConfig(cfg),
		fanOut: DefaultFanOut(),
		logger: logger.Named("query"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the underlying store
func (c *Client) Store() cache.Store {
	return c.store
}

// Fetch reads key for userID through the cache. Concurrent misses for the
// same key share one loader call. Realtime queries always call the loader.
func Fetch[T any](ctx context.Context, c *Client, userID uuid.UUID, key string, tier Tier, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if userID == uuid.Nil {
		return zero, shared.ErrUnauthenticated
	}
	ttl, cached := c.stale.TTL(tier)
	if !cached {
		return loader(ctx)
	}
	scoped := Scoped(userID, key)

	if raw, ok, err := c.store.Get(ctx, scoped); err != nil {
		c.logger.Warn("cache read failed", zap.String("key", scoped), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		_ = c.store.Delete(ctx, scoped)
	}

	// Loads begun after an invalidation never join a flight begun before it.
	gen := c.gens.of(userID, key)
	flight := scoped + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if c.gens.of(userID, key) != gen {
			return loaded, nil
		}
		if raw, err := json.Marshal(loaded); err == nil {
			if err := c.store.Set(ctx, scoped, raw, ttl); err != nil {
				c.logger.Warn("cache write failed", zap.String("key", scoped), zap.Error(err))
			}
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// Peek returns the cached value of key without loading
func Peek[T any](ctx context.Context, c *Client, userID uuid.UUID, key string) (T, bool) {
	var v T
	raw, ok, err := c.store.Get(ctx, Scoped(userID, key))
	if err != nil || !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// Put writes v under key with the tier's ttl
func Put[T any](ctx context.Context, c *Client, userID uuid.UUID, key string, tier Tier, v T) error {
	ttl, cached := c.stale.TTL(tier)
	if !cached {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.store.Set(ctx, Scoped(userID, key), raw, ttl)
}

// Prefixes returns the key prefixes dropped after a write to resource
func (c *Client) Prefixes(resource string) []string {
	if p, ok := c.fanOut[resource]; ok {
		return p
	}
	return []string{whole(resource)}
}

// InvalidateResource drops every cached query the write to resource may
// have changed for userID. Failures are logged; the write already happened.
func (c *Client) InvalidateResource(ctx context.Context, userID uuid.UUID, resource string) int {
	removed := 0
	for _, prefix := range c.Prefixes(resource) {
		c.gens.bump(userID, prefix)
		n, err := c.store.DeletePrefix(ctx, Scoped(userID, prefix))
		if err != nil {
			c.logger.Warn("cache invalidation failed",
				zap.String("resource", resource),
				zap.String("prefix", prefix),
				zap.Error(err),
			)
			continue
		}
		removed += n
	}
	c.logger.Debug("invalidated",
		zap.String("resource", resource),
		zap.String("user_id", userID.String()),
		zap.Int("removed", removed),
	)
	return removed
}

// InvalidateKey drops a single key
func (c *Client) InvalidateKey(ctx context.Context, userID uuid.UUID, key string) {
	c.gens.bump(userID, key)
	if err := c.store.Delete(ctx, Scoped(userID, key)); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Resources lists the resources with a fan-out entry
func (c *Client) Resources() []string {
	out := make([]string, 0, len(c.fanOut))
	for r := range c.fanOut {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
