package auth

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/infrastructure/cache"
)

const revokedPrefix = "auth:revoked:"

// TokenBlacklist rejects tokens by JTI until they would have expired anyway.
// Entries live in the shared cache store, so with the Redis tier enabled a
// logout is honoured by every instance.
type TokenBlacklist struct {
	store cache.Store
}

// NewTokenBlacklist creates a blacklist backed by store
func NewTokenBlacklist(store cache.Store) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

// Revoke blacklists jti for ttl. A non-positive ttl is a no-op since the
// token is already expired.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return b.store.Set(ctx, revokedPrefix+jti, []byte("1"), ttl)
}

// IsRevoked reports whether jti was revoked
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok, err := b.store.Get(ctx, revokedPrefix+jti)
	return ok, err
}
