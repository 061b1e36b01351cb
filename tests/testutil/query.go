package testutil

import (
	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/infrastructure/cache"
	"github.com/agencydesk/backend/internal/infrastructure/config"
)

// NewQueryClient returns a query cache over a fresh in-memory store
func NewQueryClient() (*query.Client, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return query.NewClient(store, config.CacheConfig{}, nil), store
}
