package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/internal/infrastructure/secrets"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *persistence.GormSettingsRepository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.NewSealer(key)
	require.NoError(t, err)
	repo := persistence.NewGormSettingsRepository(db)
	return NewStore(repo, qc, WithSealer(sealer)), repo
}

func TestStore_GetSetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	_, found, err := Get[settings.ReportTemplate](ctx, store, userID, settings.KeyReportTemplate)
	require.NoError(t, err)
	assert.False(t, found)

	tpl := settings.ReportTemplate{Name: "Monthly", Sections: []string{"pl", "cashflow"}, Period: "month", Currency: "EUR"}
	require.NoError(t, Set(ctx, store, userID, settings.KeyReportTemplate, tpl))

	got, found, err := Get[settings.ReportTemplate](ctx, store, userID, settings.KeyReportTemplate)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, tpl, got)

	_, found, err = Get[settings.ReportTemplate](ctx, store, testutil.OtherUserID, settings.KeyReportTemplate)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, userID, settings.KeyReportTemplate))
	def, err := GetOr(ctx, store, userID, settings.KeyReportTemplate, settings.ReportTemplate{Name: "Default"})
	require.NoError(t, err)
	assert.Equal(t, "Default", def.Name)

	err = store.SetRaw(ctx, userID, settings.Key("unknown.key"), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownKey)
	err = store.SetRaw(ctx, userID, settings.KeyReportTemplate, json.RawMessage(`{not json`))
	assert.Error(t, err)
	_, _, err = store.Raw(ctx, uuid.Nil, settings.KeyReportTemplate)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestStore_SealsSecretKeys(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	keys := settings.APIKeys{"plaid_secret": "s3cr3t"}
	require.NoError(t, Set(ctx, store, userID, settings.KeyAPIKeys, keys))

	row, err := repo.Find(ctx, userID, settings.KeyAPIKeys)
	require.NoError(t, err)
	assert.True(t, row.Sealed)
	assert.NotContains(t, string(row.Value), "s3cr3t")

	got, found, err := Get[settings.APIKeys](ctx, store, userID, settings.KeyAPIKeys)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "s3cr3t", got["plaid_secret"])

	entries, err := store.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Secret)
	assert.Nil(t, entries[0].Value)
}

func TestStore_MigratesOnRead(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	assert.Equal(t, 2, store.CurrentVersion(settings.KeyQuickBooksExport))

	require.NoError(t, repo.Save(ctx, &settings.Setting{
		UserID:  userID,
		Key:     settings.KeyQuickBooksExport,
		Value:   json.RawMessage(`{"mapping":{"Design":"Design Income"}}`),
		Version: 1,
	}))

	cfg, found, err := Get[settings.QuickBooksExport](ctx, store, userID, settings.KeyQuickBooksExport)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Design Income", cfg.AccountMapping["Design"])
	assert.Equal(t, "01/02/2006", cfg.DateFormat)
	assert.Equal(t, "Checking", cfg.BankAccount)

	row, err := repo.Find(ctx, userID, settings.KeyQuickBooksExport)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Version)
	assert.NotContains(t, string(row.Value), `"mapping"`)
}

func TestStore_MigrateAll(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	require.NoError(t, repo.Save(ctx, &settings.Setting{
		UserID:  userID,
		Key:     settings.KeyQuickBooksExport,
		Value:   json.RawMessage(`{"bank_account":"Savings"}`),
		Version: 1,
	}))
	require.NoError(t, Set(ctx, store, userID, settings.KeyReportTemplate, settings.ReportTemplate{Name: "x"}))

	n, err := store.Migrate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cfg, err := GetOr(ctx, store, userID, settings.KeyQuickBooksExport, settings.DefaultQuickBooksExport())
	require.NoError(t, err)
	assert.Equal(t, "Savings", cfg.BankAccount)

	n, err = store.Migrate(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
