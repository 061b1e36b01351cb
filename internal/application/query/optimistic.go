package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Optimistic is a cache transaction around one mutation. The predicted
// value is visible to readers until Commit or Rollback.
type Optimistic[T any] struct {
	client   *Client
	userID   uuid.UUID
	key      string
	resource string
	tier     Tier

	mu       sync.Mutex
	snapshot []byte
	existed  bool
	done     bool
}

// Begin snapshots key and writes apply(previous) in its place. Nothing is
// written when the key is not cached.
func Begin[T any](ctx context.Context, c *Client, userID uuid.UUID, resource, key string, tier Tier, apply func(prev T) T) (*Optimistic[T], error) {
	scoped := Scoped(userID, key)
	raw, ok, err := c.store.Get(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", key, err)
	}
	var prev T
	if ok {
		if err := json.Unmarshal(raw, &prev); err != nil {
			ok = false
		}
	}
	tx := &Optimistic[T]{
		client:   c,
		userID:   userID,
		key:      key,
		resource: resource,
		tier:     tier,
		snapshot: raw,
		existed:  ok,
	}
	if !ok {
		return tx, nil
	}
	if err := Put(ctx, c, userID, key, tier, apply(prev)); err != nil {
		return nil, err
	}
	return tx, nil
}

// Commit fans out invalidation for the resource then stores the server result
func (o *Optimistic[T]) Commit(ctx context.Context, actual T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return nil
	}
	o.done = true
	o.client.InvalidateResource(ctx, o.userID, o.resource)
	return Put(ctx, o.client, o.userID, o.key, o.tier, actual)
}

// Rollback restores the snapshot, or removes the key when none existed
func (o *Optimistic[T]) Rollback(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return nil
	}
	o.done = true
	scoped := Scoped(o.userID, o.key)
	if !o.existed {
		return o.client.store.Delete(ctx, scoped)
	}
	ttl, _ := o.client.stale.TTL(o.tier)
	return o.client.store.Set(ctx, scoped, o.snapshot, ttl)
}

// Run wraps begin, mutate and commit or rollback. The mutation error is
// returned unchanged after a rollback.
func Run[T any](ctx context.Context, c *Client, userID uuid.UUID, resource, key string, tier Tier, apply func(prev T) T, mutate func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	tx, err := Begin(ctx, c, userID, resource, key, tier, apply)
	if err != nil {
		c.logger.Warn("optimistic update skipped", zap.String("key", key), zap.Error(err))
		v, merr := mutate(ctx)
		if merr != nil {
			return zero, merr
		}
		c.InvalidateResource(ctx, userID, resource)
		return v, nil
	}
	v, err := mutate(ctx)
	if err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil {
			c.logger.Warn("optimistic rollback failed", zap.String("key", key), zap.Error(rerr))
		}
		return zero, err
	}
	if err := tx.Commit(ctx, v); err != nil {
		c.logger.Warn("optimistic commit failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
