// Package query is the server-side query cache: user scoped keys, stale
// time tiers, read-through fetches with request collapsing, invalidation
// fan-out after writes and optimistic cache transactions.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Common key segments
const (
	SegmentList   = "list"
	SegmentDetail = "detail"
	SegmentStats  = "stats"
)

// Key joins a resource and params into "resource:p1:p2"
func Key(resource string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, resource)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

// ListKey embeds the canonical encoding of a filter value
func ListKey(resource string, filter any) string {
	return Key(resource, SegmentList, FilterHash(filter))
}

// DetailKey is the key of one record
func DetailKey(resource string, id uuid.UUID) string {
	return Key(resource, SegmentDetail, id)
}

// StatsKey is the key of a resource's statistics
func StatsKey(resource string) string {
	return Key(resource, SegmentStats)
}

// FilterHash returns a short digest of the JSON encoding of filter. Struct
// fields encode in declaration order and map keys sorted, so equal filters
// always produce equal hashes.
func FilterHash(filter any) string {
	b, err := json.Marshal(filter)
	if err != nil {
		b = []byte(fmt.Sprintf("%#v", filter))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

// Scoped prefixes key with the owner so users never share entries
func Scoped(userID uuid.UUID, key string) string {
	return userID.String() + ":" + key
}
