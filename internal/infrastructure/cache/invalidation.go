package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout        = 5 * time.Second
	DefaultInvalidationChannel = "agencydesk:cache:invalidate"
)

// InvalidationAction is what a peer should drop from its L1
type InvalidationAction string

const (
	InvalidationDelete       InvalidationAction = "delete"
	InvalidationDeletePrefix InvalidationAction = "delete_prefix"
)

// InvalidationMessage is published after a write so other instances drop stale L1 entries
type InvalidationMessage struct {
	Action    InvalidationAction `json:"action"`
	Key       string             `json:"key"`
	Origin    string             `json:"origin"`
	Timestamp int64              `json:"timestamp"`
}

// RedisInvalidator broadcasts L1 invalidations across instances over Redis Pub/Sub
type RedisInvalidator struct {
	client    *redis.Client
	channel   string
	origin    string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisInvalidatorOption configures the invalidator
type RedisInvalidatorOption func(*RedisInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator on a shared client; the caller closes the client
func NewRedisInvalidator(client *redis.Client, opts ...RedisInvalidatorOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:  client,
		channel: DefaultInvalidationChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Origin identifies this instance; its own messages are ignored on receipt
func (i *RedisInvalidator) Origin() string {
	return i.origin
}

// Publish sends an invalidation to every subscriber
func (i *RedisInvalidator) Publish(ctx context.Context, msg InvalidationMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	if msg.Origin == "" {
		msg.Origin = i.origin
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish cache invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation message: %w", err)
	}
	return nil
}

// Subscribe blocks, invoking apply for every message from another instance
func (i *RedisInvalidator) Subscribe(ctx context.Context, apply func(msg InvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Cache invalidation subscription stopped")
			return subCtx.Err()
		case raw, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			var msg InvalidationMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message",
					zap.String("payload", raw.Payload),
					zap.Error(err))
				continue
			}
			if msg.Origin == i.origin {
				continue
			}
			i.dispatch(apply, msg)
		}
	}
}

func (i *RedisInvalidator) dispatch(apply func(InvalidationMessage), msg InvalidationMessage) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in cache invalidation callback", zap.Any("panic", r))
		}
	}()
	apply(msg)
}

func (i *RedisInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription, waiting up to five seconds for it to exit
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for invalidation subscription to stop")
		}
	}
	return nil
}

// ApplyTo returns a callback that removes the invalidated entries from store
func ApplyTo(store Store, logger *zap.Logger) func(InvalidationMessage) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(msg InvalidationMessage) {
		ctx := context.Background()
		switch msg.Action {
		case InvalidationDelete:
			_ = store.Delete(ctx, msg.Key)
		case InvalidationDeletePrefix:
			_, _ = store.DeletePrefix(ctx, msg.Key)
		default:
			logger.Warn("Unknown cache invalidation action", zap.String("action", string(msg.Action)))
		}
	}
}

// BroadcastStore wraps a Store and publishes every delete to peers.
// Reads and writes pass through unchanged.
type BroadcastStore struct {
	Store
	invalidator *RedisInvalidator
	logger      *zap.Logger
}

// NewBroadcastStore creates a BroadcastStore
func NewBroadcastStore(store Store, invalidator *RedisInvalidator, logger *zap.Logger) *BroadcastStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastStore{Store: store, invalidator: invalidator, logger: logger}
}

// Delete removes key locally and tells peers to do the same
func (s *BroadcastStore) Delete(ctx context.Context, key string) error {
	if err := s.Store.Delete(ctx, key); err != nil {
		return err
	}
	s.publish(ctx, InvalidationMessage{Action: InvalidationDelete, Key: key})
	return nil
}

// DeletePrefix removes the prefix locally and tells peers to do the same
func (s *BroadcastStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	n, err := s.Store.DeletePrefix(ctx, prefix)
	if err != nil {
		return n, err
	}
	s.publish(ctx, InvalidationMessage{Action: InvalidationDeletePrefix, Key: prefix})
	return n, nil
}

func (s *BroadcastStore) publish(ctx context.Context, msg InvalidationMessage) {
	if err := s.invalidator.Publish(ctx, msg); err != nil {
		s.logger.Warn("Cache invalidation broadcast failed", zap.String("key", msg.Key), zap.Error(err))
	}
}
