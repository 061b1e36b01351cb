package cache

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stack is the assembled query-cache store plus the resources it owns
type Stack struct {
	Store       Store
	L1          *MemoryStore
	client      *redis.Client
	invalidator *RedisInvalidator
	cancel      context.CancelFunc
}

// StoreFactory builds the cache store from configuration
type StoreFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption configures the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory and the stores it builds
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to L1 only.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a factory
func NewStoreFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the L1 store and, when Redis L2 is enabled and reachable,
// wraps it in a tiered store with cross-instance invalidation. The cleanup
// loop and the subscription stop when ctx is cancelled or Close is called.
func (f *StoreFactory) Create(ctx context.Context) (*Stack, error) {
	runCtx, cancel := context.WithCancel(ctx)
	l1 := NewMemoryStore(WithMemoryLogger(f.logger))
	l1.StartCleanup(runCtx, f.cacheConfig.CleanupInterval)

	stack := &Stack{Store: l1, L1: l1, cancel: cancel}
	if !f.cacheConfig.RedisL2 || !f.redisConfig.Enabled {
		f.logger.Info("Using in-memory query cache")
		return stack, nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			cancel()
			return nil, fmt.Errorf("Redis required for query cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory query cache. "+
			"Instances will not share cached entries.",
			zap.Error(err))
		return stack, nil
	}

	l2 := NewRedisStore(client, f.cacheConfig.KeyPrefix, f.logger)
	tiered := NewTieredStore(l1, l2, WithTieredLogger(f.logger), WithL1TTL(f.cacheConfig.UserDataTTL))
	invalidator := NewRedisInvalidator(client, WithInvalidatorLogger(f.logger))

	go func() {
		if err := invalidator.Subscribe(runCtx, ApplyTo(l1, f.logger)); err != nil && runCtx.Err() == nil {
			f.logger.Error("Cache invalidation subscription ended", zap.Error(err))
		}
	}()

	stack.Store = NewBroadcastStore(tiered, invalidator, f.logger)
	stack.client = client
	stack.invalidator = invalidator
	f.logger.Info("Using tiered query cache", zap.String("redis", f.redisConfig.Addr()))
	return stack, nil
}

// Close stops background loops and releases the Redis client
func (s *Stack) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.invalidator != nil {
		_ = s.invalidator.Close()
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
