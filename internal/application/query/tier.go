package query

import (
	"time"

	"github.com/agencydesk/backend/internal/infrastructure/config"
)

// Tier is the stale time class of a query
type Tier int

const (
	// TierStatic never goes stale
	TierStatic Tier = iota
	// TierUserData covers projects, clients, tasks, invoices and similar
	TierUserData
	// TierAnalytics matches the dashboard polling interval
	TierAnalytics
	// TierRealtime is never cached
	TierRealtime
)

const (
	DefaultUserDataTTL  = 5 * time.Minute
	DefaultAnalyticsTTL = 60 * time.Second
)

func (t Tier) String() string {
	switch t {
	case TierStatic:
		return "static"
	case TierUserData:
		return "user_data"
	case TierAnalytics:
		return "analytics"
	case TierRealtime:
		return "realtime"
	}
	return "unknown"
}

// StaleTimes maps tiers to time to live
type StaleTimes struct {
	UserData  time.Duration
	Analytics time.Duration
}

// StaleTimesFromConfig fills unset values with defaults
func StaleTimesFromConfig(cfg config.CacheConfig) StaleTimes {
	st := StaleTimes{UserData: cfg.UserDataTTL, Analytics: cfg.AnalyticsTTL}
	if st.UserData <= 0 {
		st.UserData = DefaultUserDataTTL
	}
	if st.Analytics <= 0 {
		st.Analytics = DefaultAnalyticsTTL
	}
	return st
}

// TTL returns the store ttl for a tier and whether the tier is cached at all.
// A zero ttl means no expiry.
func (s StaleTimes) TTL(t Tier) (time.Duration, bool) {
	switch t {
	case TierStatic:
		return 0, true
	case TierUserData:
		return s.UserData, true
	case TierAnalytics:
		return s.Analytics, true
	}
	return 0, false
}
