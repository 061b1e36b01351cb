package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TieredStore reads L1 first, then L2, and fills L1 from L2 hits for no
// longer than the entry has left in L2.
// Writes and deletes go to both tiers. L2 failures are logged and
// degrade to L1-only behavior.
type TieredStore struct {
	l1     *MemoryStore
	l2     Store
	l1TTL  time.Duration
	logger *zap.Logger
}

// TieredStoreOption configures a TieredStore
type TieredStoreOption func(*TieredStore)

// WithL1TTL caps how long an entry lives in L1 regardless of its L2 TTL
func WithL1TTL(ttl time.Duration) TieredStoreOption {
	return func(s *TieredStore) {
		s.l1TTL = ttl
	}
}

// WithTieredLogger sets the logger
func WithTieredLogger(logger *zap.Logger) TieredStoreOption {
	return func(s *TieredStore) {
		s.logger = logger
	}
}

// NewTieredStore combines an in-memory L1 with a shared L2
func NewTieredStore(l1 *MemoryStore, l2 Store, opts ...TieredStoreOption) *TieredStore {
	s := &TieredStore{
		l1:     l1,
		l2:     l2,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TieredStore) localTTL(ttl time.Duration) time.Duration {
	if s.l1TTL > 0 && (ttl == 0 || ttl > s.l1TTL) {
		return s.l1TTL
	}
	return ttl
}

// Get returns the value from L1, falling back to L2
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, _ := s.l1.Get(ctx, key); ok {
		return data, true, nil
	}
	data, ttl, ok, err := s.getL2(ctx, key)
	if err != nil {
		s.logger.Warn("L2 cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	if ttl >= 0 {
		_ = s.l1.Set(ctx, key, data, s.localTTL(ttl))
	}
	return data, true, nil
}

// getL2 reads key from L2 with its remaining ttl. A negative ttl means the
// entry is about to expire and must not be copied into L1.
func (s *TieredStore) getL2(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	r, ok := s.l2.(TTLReader)
	if !ok {
		data, ok, err := s.l2.Get(ctx, key)
		return data, s.l1TTL, ok, err
	}
	data, ttl, ok, err := r.GetWithTTL(ctx, key)
	if ok && ttl > 0 && ttl < time.Millisecond {
		ttl = -1
	}
	return data, ttl, ok, err
}

// Set writes to both tiers
func (s *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = s.l1.Set(ctx, key, value, s.localTTL(ttl))
	if err := s.l2.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("L2 cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Delete removes key from both tiers
func (s *TieredStore) Delete(ctx context.Context, key string) error {
	_ = s.l1.Delete(ctx, key)
	if err := s.l2.Delete(ctx, key); err != nil {
		s.logger.Warn("L2 cache delete failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// DeletePrefix removes the prefix from both tiers and reports the larger count
func (s *TieredStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	local, _ := s.l1.DeletePrefix(ctx, prefix)
	remote, err := s.l2.DeletePrefix(ctx, prefix)
	if err != nil {
		s.logger.Warn("L2 cache prefix delete failed", zap.String("prefix", prefix), zap.Error(err))
	}
	if remote > local {
		return remote, nil
	}
	return local, nil
}

// L1 exposes the local tier so invalidation messages from other instances can clear it
func (s *TieredStore) L1() *MemoryStore {
	return s.l1
}

var _ Store = (*TieredStore)(nil)
