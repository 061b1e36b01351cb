// Package cache provides the byte-oriented key/value stores behind the query
// cache: an in-memory L1, a Redis L2 and a tiered combination of both.
package cache

import (
	"context"
	"strings"
	"time"
)

// Store is a TTL key/value store. Values are opaque bytes, normally JSON.
// A ttl of zero means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and returns how many went
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// TTLReader is implemented by stores that can report how long an entry has
// left. A ttl of zero means the entry never expires.
type TTLReader interface {
	GetWithTTL(ctx context.Context, key string) ([]byte, time.Duration, bool, error)
}

// Stats are hit/miss counters of a store
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// HitRate returns hits/(hits+misses), 0 when nothing was read
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func hasPrefix(key, prefix string) bool {
	return prefix == "" || strings.HasPrefix(key, prefix)
}
