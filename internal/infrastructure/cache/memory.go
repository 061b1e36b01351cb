package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process Store backed by sync.Map.
// Expired entries are dropped on read and by the cleanup loop.
type MemoryStore struct {
	entries sync.Map
	hits    atomic.Int64
	misses  atomic.Int64
	now     func() time.Time
	logger  *zap.Logger
}

// MemoryStoreOption configures a MemoryStore
type MemoryStoreOption func(*MemoryStore)

// WithMemoryLogger sets the logger used by the cleanup loop
func WithMemoryLogger(logger *zap.Logger) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the live value under key
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		s.misses.Add(1)
		return nil, false, nil
	}
	entry := v.(*memoryEntry)
	if entry.expired(s.now()) {
		s.entries.CompareAndDelete(key, v)
		s.misses.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return append([]byte(nil), entry.value...), true, nil
}

// GetWithTTL returns the live value under key with its remaining lifetime
func (s *MemoryStore) GetWithTTL(_ context.Context, key string) ([]byte, time.Duration, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		s.misses.Add(1)
		return nil, 0, false, nil
	}
	entry := v.(*memoryEntry)
	now := s.now()
	if entry.expired(now) {
		s.entries.CompareAndDelete(key, v)
		s.misses.Add(1)
		return nil, 0, false, nil
	}
	s.hits.Add(1)
	var ttl time.Duration
	if !entry.expiresAt.IsZero() {
		ttl = entry.expiresAt.Sub(now)
	}
	return append([]byte(nil), entry.value...), ttl, true, nil
}

// Set stores a copy of value under key
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries.Store(key, entry)
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// DeletePrefix removes every key starting with prefix
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	s.entries.Range(func(k, _ interface{}) bool {
		if hasPrefix(k.(string), prefix) {
			s.entries.Delete(k)
			removed++
		}
		return true
	})
	return removed, nil
}

// Cleanup drops expired entries and returns how many were removed
func (s *MemoryStore) Cleanup() int {
	now := s.now()
	removed := 0
	s.entries.Range(func(k, v interface{}) bool {
		if v.(*memoryEntry).expired(now) {
			s.entries.CompareAndDelete(k, v)
			removed++
		}
		return true
	})
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is cancelled
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					s.logger.Debug("Expired cache entries removed", zap.Int("count", n))
				}
			}
		}
	}()
}

// Stats returns the hit/miss counters and the current entry count
func (s *MemoryStore) Stats() Stats {
	entries := 0
	s.entries.Range(func(_, _ interface{}) bool {
		entries++
		return true
	})
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: entries,
	}
}

var (
	_ Store     = (*MemoryStore)(nil)
	_ TTLReader = (*MemoryStore)(nil)
)
