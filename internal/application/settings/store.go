// Package settings keeps per-user key/value state such as export
// configuration and integration credentials.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Migration upgrades a stored value by one version
type Migration func(value json.RawMessage) (json.RawMessage, error)

// ErrUnknownKey is returned for keys that were never registered
var ErrUnknownKey = shared.NewDomainError("UNKNOWN_SETTING", "Unknown setting key")

type keySpec struct {
	secret     bool
	migrations []Migration
}

// Store reads and writes settings. Secret keys are sealed at rest and never
// cached; other values go through the query cache.
type Store struct {
	repo   settings.Repository
	sealer settings.Sealer
	cache  *query.Client
	keys   map[settings.Key]*keySpec
	logger *zap.Logger
	now    func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithSealer enables sealing of secret keys. Without one, secret keys are
// stored as plain JSON.
func WithSealer(sealer settings.Sealer) StoreOption {
	return func(s *Store) {
		s.sealer = sealer
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store with the built-in keys registered
func NewStore(repo settings.Repository, cache *query.Client, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		cache:  cache,
		keys:   map[settings.Key]*keySpec{},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Register(settings.KeyQuickBooksExport, false, migrateQuickBooksV1)
	s.Register(settings.KeyReportTemplate, false)
	s.Register(settings.KeyXeroConnection, true)
	s.Register(settings.KeyAPIKeys, true)
	s.Register(settings.KeyConnectedAccounts, true)
	return s
}

// Register declares a key. migrations[i] upgrades version i+1 to i+2, so
// the current version is len(migrations)+1.
func (s *Store) Register(key settings.Key, secret bool, migrations ...Migration) {
	s.keys[key] = &keySpec{secret: secret, migrations: migrations}
}

// Registered reports whether key is known
func (s *Store) Registered(key settings.Key) bool {
	_, ok := s.keys[key]
	return ok
}

// IsSecret reports whether key is sealed at rest
func (s *Store) IsSecret(key settings.Key) bool {
	ks, ok := s.keys[key]
	return ok && ks.secret
}

// CurrentVersion returns the version new writes of key carry
func (s *Store) CurrentVersion(key settings.Key) int {
	ks, ok := s.keys[key]
	if !ok {
		return 1
	}
	return len(ks.migrations) + 1
}

func (s *Store) lookup(key settings.Key) (*keySpec, error) {
	ks, ok := s.keys[key]
	if !ok {
		return nil, ErrUnknownKey
	}
	return ks, nil
}

func additionalData(userID uuid.UUID, key settings.Key) []byte {
	return []byte(userID.String() + "/" + string(key))
}

// Raw returns the decoded JSON of key, upgrading stale versions on the way.
// A missing key yields nil, false.
func (s *Store) Raw(ctx context.Context, userID uuid.UUID, key settings.Key) (json.RawMessage, bool, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, false, err
	}
	ks, err := s.lookup(key)
	if err != nil {
		return nil, false, err
	}
	if ks.secret {
		return s.load(ctx, userID, key, ks)
	}

	type entry struct {
		Value json.RawMessage `json:"value"`
		Found bool            `json:"found"`
	}
	e, err := query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceSettings, string(key)), query.TierUserData, func(ctx context.Context) (entry, error) {
		v, found, err := s.load(ctx, userID, key, ks)
		return entry{Value: v, Found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	return e.Value, e.Found, nil
}

func (s *Store) load(ctx context.Context, userID uuid.UUID, key settings.Key, ks *keySpec) (json.RawMessage, bool, error) {
	row, err := s.repo.Find(ctx, userID, key)
	if errors.Is(err, settings.ErrSettingNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load setting %s: %w", key, err)
	}
	value, err := s.open(userID, row)
	if err != nil {
		return nil, false, err
	}
	current := len(ks.migrations) + 1
	if row.Version < current {
		value, err = s.upgrade(ctx, userID, key, ks, row.Version, value)
		if err != nil {
			return nil, false, err
		}
	}
	return value, true, nil
}

func (s *Store) upgrade(ctx context.Context, userID uuid.UUID, key settings.Key, ks *keySpec, from int, value json.RawMessage) (json.RawMessage, error) {
	if from < 1 {
		from = 1
	}
	for v := from; v <= len(ks.migrations); v++ {
		next, err := ks.migrations[v-1](value)
		if err != nil {
			return nil, fmt.Errorf("migrate setting %s from v%d: %w", key, v, err)
		}
		value = next
	}
	if err := s.write(ctx, userID, key, ks, value); err != nil {
		return nil, err
	}
	s.logger.Info("Setting migrated",
		zap.String("user_id", userID.String()),
		zap.String("key", string(key)),
		zap.Int("from_version", from),
		zap.Int("to_version", len(ks.migrations)+1))
	return value, nil
}

func (s *Store) open(userID uuid.UUID, row *settings.Setting) (json.RawMessage, error) {
	if !row.Sealed {
		return row.Value, nil
	}
	if s.sealer == nil {
		return nil, fmt.Errorf("setting %s is sealed but no sealer is configured", row.Key)
	}
	var sealed []byte
	if err := json.Unmarshal(row.Value, &sealed); err != nil {
		return nil, fmt.Errorf("decode sealed setting %s: %w", row.Key, err)
	}
	plain, err := s.sealer.Open(sealed, additionalData(userID, row.Key))
	if err != nil {
		return nil, fmt.Errorf("open setting %s: %w", row.Key, err)
	}
	return plain, nil
}

func (s *Store) write(ctx context.Context, userID uuid.UUID, key settings.Key, ks *keySpec, value json.RawMessage) error {
	row := &settings.Setting{
		UserID:    userID,
		Key:       key,
		Value:     value,
		Version:   len(ks.migrations) + 1,
		UpdatedAt: s.now(),
	}
	if ks.secret && s.sealer != nil {
		sealed, err := s.sealer.Seal(value, additionalData(userID, key))
		if err != nil {
			return fmt.Errorf("seal setting %s: %w", key, err)
		}
		encoded, err := json.Marshal(sealed)
		if err != nil {
			return err
		}
		row.Value = encoded
		row.Sealed = true
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	s.cache.InvalidateKey(ctx, userID, query.Key(query.ResourceSettings, string(key)))
	return nil
}

// SetRaw stores already encoded JSON under key
func (s *Store) SetRaw(ctx context.Context, userID uuid.UUID, key settings.Key, value json.RawMessage) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	ks, err := s.lookup(key)
	if err != nil {
		return err
	}
	if !json.Valid(value) {
		return shared.NewDomainError("INVALID_SETTING", "Setting value must be valid JSON")
	}
	return s.write(ctx, userID, key, ks, value)
}

// Delete removes key; deleting a missing key is not an error
func (s *Store) Delete(ctx context.Context, userID uuid.UUID, key settings.Key) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if _, err := s.lookup(key); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	s.cache.InvalidateKey(ctx, userID, query.Key(query.ResourceSettings, string(key)))
	return nil
}

// Entry describes a stored setting. Value is omitted for secret keys.
type Entry struct {
	Key       settings.Key    `json:"key"`
	Version   int             `json:"version"`
	Secret    bool            `json:"secret"`
	Value     json.RawMessage `json:"value,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// List returns every stored setting of the user ordered by key
func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e := Entry{Key: row.Key, Version: row.Version, Secret: s.IsSecret(row.Key), UpdatedAt: row.UpdatedAt}
		if !e.Secret && !row.Sealed {
			e.Value = row.Value
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Migrate upgrades every stale setting of the user and returns how many changed
func (s *Store) Migrate(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := shared.RequireUser(userID); err != nil {
		return 0, err
	}
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list settings: %w", err)
	}
	migrated := 0
	for i := range rows {
		row := &rows[i]
		ks, ok := s.keys[row.Key]
		if !ok || row.Version >= len(ks.migrations)+1 {
			continue
		}
		value, err := s.open(userID, row)
		if err != nil {
			return migrated, err
		}
		if _, err := s.upgrade(ctx, userID, row.Key, ks, row.Version, value); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}

// Get decodes key into T. A missing key yields the zero value and false.
func Get[T any](ctx context.Context, s *Store, userID uuid.UUID, key settings.Key) (T, bool, error) {
	var out T
	raw, found, err := s.Raw(ctx, userID, key)
	if err != nil || !found {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return out, true, nil
}

// GetOr decodes key into T, returning def when nothing is stored
func GetOr[T any](ctx context.Context, s *Store, userID uuid.UUID, key settings.Key, def T) (T, error) {
	v, found, err := Get[T](ctx, s, userID, key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// Set encodes v and stores it under key at the current version
func Set[T any](ctx context.Context, s *Store, userID uuid.UUID, key settings.Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return s.SetRaw(ctx, userID, key, raw)
}
