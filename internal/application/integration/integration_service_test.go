package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	appsettings "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/agencydesk/backend/internal/infrastructure/integration/plaid"
	"github.com/agencydesk/backend/internal/infrastructure/integration/xero"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/internal/infrastructure/secrets"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, db *gorm.DB) *appsettings.Store {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.NewSealer(key)
	require.NoError(t, err)
	qc, _ := testutil.NewQueryClient()
	return appsettings.NewStore(persistence.NewGormSettingsRepository(db), qc, appsettings.WithSealer(sealer))
}

// plaidServer fakes the Plaid endpoints used by the banking service
type plaidServer struct {
	removed atomic.Int32
	cursors []string
}

func (p *plaidServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/link/token/create", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"link_token":"link-sandbox-1","expiration":"2026-02-10T16:00:00Z","request_id":"r1"}`))
	})
	mux.HandleFunc("/item/public_token/exchange", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"access-sandbox-1","item_id":"item-1"}`))
	})
	mux.HandleFunc("/accounts/get", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accounts":[
			{"account_id":"acc-1","name":"Business Checking","mask":"0001","type":"depository","subtype":"checking"},
			{"account_id":"acc-2","name":"Savings","mask":"0002","type":"depository","subtype":"savings"}
		],"item":{"item_id":"item-1","institution_id":"ins_109508"}}`))
	})
	mux.HandleFunc("/transactions/sync", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cursor, _ := body["cursor"].(string)
		p.cursors = append(p.cursors, cursor)
		if cursor == "" {
			_, _ = w.Write([]byte(`{"added":[
				{"transaction_id":"tx-1","account_id":"acc-1","amount":12.5,"date":"2026-02-01","name":"COFFEE 123","merchant_name":"Blue Bottle"},
				{"transaction_id":"tx-2","account_id":"acc-1","amount":-1500,"date":"2026-02-03","name":"ACME PAYMENT"},
				{"transaction_id":"tx-3","account_id":"acc-2","amount":-20,"date":"2026-02-03","name":"Interest"},
				{"transaction_id":"tx-4","account_id":"acc-1","amount":9.99,"date":"2026-02-04","name":"Pending","pending":true}
			],"next_cursor":"cursor-1","has_more":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"added":[
			{"transaction_id":"tx-2","account_id":"acc-1","amount":-1500,"date":"2026-02-03","name":"ACME PAYMENT"},
			{"transaction_id":"tx-5","account_id":"acc-1","amount":49,"date":"2026-02-08","name":"Hosting"}
		],"next_cursor":"cursor-2","has_more":false}`))
	})
	mux.HandleFunc("/item/remove", func(w http.ResponseWriter, r *http.Request) {
		p.removed.Add(1)
		_, _ = w.Write([]byte(`{"request_id":"r2"}`))
	})
	return mux
}

type bankingFixture struct {
	svc   *BankingService
	fake  *plaidServer
	txs   finance.BankTransactionRepository
	db    *gorm.DB
	store *appsettings.Store
}

func newBankingFixture(t *testing.T) *bankingFixture {
	t.Helper()
	fake := &plaidServer{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := plaid.NewClient(config.PlaidConfig{BaseURL: server.URL, ClientID: "cid", Secret: "sec", ClientName: "AgencyDesk"}, nil)
	require.NoError(t, err)

	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	store := newStore(t, db)
	txs := persistence.NewGormBankTransactionRepository(db)
	return &bankingFixture{
		svc:   NewBankingService(client, store, txs, qc, nil, WithClock(func() time.Time { return fixedNow })),
		fake:  fake,
		txs:   txs,
		db:    db,
		store: store,
	}
}

func (f *bankingFixture) connect(t *testing.T) []AccountResponse {
	t.Helper()
	accounts, err := f.svc.ExchangePublicToken(context.Background(), testutil.TestUserID, ExchangeTokenRequest{PublicToken: "public-sandbox-1"})
	require.NoError(t, err)
	return accounts
}

func TestBankingService_CreateLinkToken(t *testing.T) {
	f := newBankingFixture(t)

	token, err := f.svc.CreateLinkToken(context.Background(), testutil.TestUserID)
	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-1", token.LinkToken)
	assert.Equal(t, 16, token.Expiration.Hour())
}

func TestBankingService_ExchangeStoresSealedAccounts(t *testing.T) {
	f := newBankingFixture(t)
	ctx := context.Background()

	accounts := f.connect(t)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Business Checking", accounts[0].Name)
	assert.Equal(t, "ins_109508", accounts[0].Institution)

	listed, err := f.svc.ListAccounts(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	row, err := persistence.NewGormSettingsRepository(f.db).Find(ctx, testutil.TestUserID, settings.KeyConnectedAccounts)
	require.NoError(t, err)
	assert.True(t, row.Sealed)
	assert.NotContains(t, string(row.Value), "access-sandbox-1")

	stored, ok, err := appsettings.Get[settings.ConnectedAccounts](ctx, f.store, testutil.TestUserID, settings.KeyConnectedAccounts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "access-sandbox-1", stored.Find("acc-1").AccessToken)

	// Linking the same item again replaces rather than duplicates
	f.connect(t)
	listed, err = f.svc.ListAccounts(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestBankingService_SyncAccount(t *testing.T) {
	f := newBankingFixture(t)
	ctx := context.Background()
	f.connect(t)

	result, err := f.svc.SyncAccount(ctx, testutil.TestUserID, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 2, result.Skipped)

	txs, err := f.txs.ListAll(ctx, testutil.TestUserID, finance.TransactionFilter{AccountID: "acc-1"})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	amounts := map[string]string{}
	for _, tx := range txs {
		amounts[tx.ExternalID] = tx.Amount.String()
	}
	assert.Equal(t, "-12.5", amounts["tx-1"])
	assert.Equal(t, "1500", amounts["tx-2"])

	// The stored cursor resumes the next sync; redelivered rows are not duplicated
	result, err = f.svc.SyncAccount(ctx, testutil.TestUserID, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{"", "cursor-1"}, f.fake.cursors)

	listed, err := f.svc.ListAccounts(ctx, testutil.TestUserID)
	require.NoError(t, err)
	for _, a := range listed {
		if a.AccountID == "acc-1" {
			require.NotNil(t, a.LastSyncedAt)
			assert.True(t, a.LastSyncedAt.Equal(fixedNow))
		} else {
			assert.Nil(t, a.LastSyncedAt)
		}
	}

	_, err = f.svc.SyncAccount(ctx, testutil.TestUserID, "acc-9")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBankingService_DisconnectAccount(t *testing.T) {
	f := newBankingFixture(t)
	ctx := context.Background()
	f.connect(t)
	_, err := f.svc.SyncAccount(ctx, testutil.TestUserID, "acc-1")
	require.NoError(t, err)

	// acc-2 still uses the item, so it is not revoked yet
	require.NoError(t, f.svc.DisconnectAccount(ctx, testutil.TestUserID, "acc-1"))
	assert.Equal(t, int32(0), f.fake.removed.Load())

	txs, err := f.txs.ListAll(ctx, testutil.TestUserID, finance.TransactionFilter{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Empty(t, txs)

	require.NoError(t, f.svc.DisconnectAccount(ctx, testutil.TestUserID, "acc-2"))
	assert.Equal(t, int32(1), f.fake.removed.Load())

	listed, err := f.svc.ListAccounts(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, f.svc.DisconnectAccount(ctx, testutil.TestUserID, "acc-2"), shared.ErrNotFound)
}

func TestBankingService_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_message":"provided public token is expired"}`))
	}))
	t.Cleanup(server.Close)
	client, err := plaid.NewClient(config.PlaidConfig{BaseURL: server.URL, ClientID: "cid", Secret: "sec"}, nil)
	require.NoError(t, err)

	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	svc := NewBankingService(client, newStore(t, db), persistence.NewGormBankTransactionRepository(db), qc, nil)

	_, err = svc.ExchangePublicToken(context.Background(), testutil.TestUserID, ExchangeTokenRequest{PublicToken: "old"})
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "UPSTREAM_ERROR", de.Code)
	assert.Contains(t, de.Message, "public token is expired")
}

func TestBankingService_RequiresUser(t *testing.T) {
	f := newBankingFixture(t)
	_, err := f.svc.ListAccounts(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

// xeroServer fakes the Xero identity and accounting endpoints
type xeroServer struct {
	pushed       []xero.Invoice
	tenantHeader string
	deleted      atomic.Int32
}

func (x *xeroServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"xero-at","refresh_token":"xero-rt","token_type":"Bearer","expires_in":1800}`))
	})
	mux.HandleFunc("/connections", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"conn-1","tenantId":"tenant-1","tenantName":"Studio","tenantType":"ORGANISATION"}]`))
	})
	mux.HandleFunc("/connections/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/connections/conn-1", r.URL.Path)
		x.deleted.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api.xro/2.0/Invoices", func(w http.ResponseWriter, r *http.Request) {
		x.tenantHeader = r.Header.Get("xero-tenant-id")
		var in struct {
			Invoices []xero.Invoice `json:"Invoices"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		x.pushed = in.Invoices
		for i := range in.Invoices {
			in.Invoices[i].InvoiceID = "xero-" + in.Invoices[i].InvoiceNumber
		}
		_ = json.NewEncoder(w).Encode(in)
	})
	return mux
}

type xeroFixture struct {
	svc      *XeroService
	fake     *xeroServer
	invoices billing.InvoiceRepository
	clients  crm.ClientRepository
}

func newXeroFixture(t *testing.T) *xeroFixture {
	t.Helper()
	fake := &xeroServer{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := xero.NewClient(config.XeroConfig{
		ClientID:     "xid",
		ClientSecret: "xsecret",
		RedirectURL:  "http://localhost/api/v1/integrations/xero/callback",
		AuthURL:      server.URL + "/authorize",
		TokenURL:     server.URL + "/token",
		APIBaseURL:   server.URL,
		Scopes:       []string{"offline_access", "accounting.transactions"},
	}, nil)
	require.NoError(t, err)

	db := testutil.NewTestDB(t)
	invoices := persistence.NewGormInvoiceRepository(db)
	clients := persistence.NewGormClientRepository(db)
	return &xeroFixture{
		svc:      NewXeroService(client, newStore(t, db), invoices, clients, nil, WithClock(func() time.Time { return fixedNow })),
		fake:     fake,
		invoices: invoices,
		clients:  clients,
	}
}

func (f *xeroFixture) connect(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	auth, err := f.svc.Authorize(ctx, testutil.TestUserID)
	require.NoError(t, err)
	_, err = f.svc.Callback(ctx, testutil.TestUserID, CallbackRequest{Code: "auth-code", State: auth.State})
	require.NoError(t, err)
}

func TestXeroService_AuthorizeAndCallback(t *testing.T) {
	f := newXeroFixture(t)
	ctx := context.Background()

	auth, err := f.svc.Authorize(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.NotEmpty(t, auth.State)
	assert.True(t, strings.Contains(auth.URL, "state="+auth.State))

	_, err = f.svc.Callback(ctx, testutil.TestUserID, CallbackRequest{Code: "auth-code", State: "forged"})
	assert.ErrorIs(t, err, ErrOAuthStateInvalid)

	conn, err := f.svc.Callback(ctx, testutil.TestUserID, CallbackRequest{Code: "auth-code", State: auth.State})
	require.NoError(t, err)
	assert.True(t, conn.Connected)
	assert.Equal(t, "tenant-1", conn.TenantID)
	require.NotNil(t, conn.ConnectedAt)
	assert.True(t, conn.ConnectedAt.Equal(fixedNow))

	// The state is single use
	_, err = f.svc.Callback(ctx, testutil.TestUserID, CallbackRequest{Code: "auth-code", State: auth.State})
	assert.ErrorIs(t, err, ErrOAuthStateInvalid)

	status, err := f.svc.Status(ctx, testutil.OtherUserID)
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestXeroService_SyncPushesPaidInvoices(t *testing.T) {
	f := newXeroFixture(t)
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, testutil.TestUserID)
	assert.ErrorIs(t, err, ErrXeroNotConnected)
	f.connect(t)

	client, err := crm.NewClient(testutil.TestUserID, "Jane Doe", "jane@studio.example")
	require.NoError(t, err)
	client.Company = "Studio Co"
	require.NoError(t, f.clients.Save(ctx, client))

	issued := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	items := []billing.LineItem{{Description: "Brand design", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(120)}}
	paid, err := billing.NewInvoice(testutil.TestUserID, client.ID, "INV-202601-00001", issued, issued.AddDate(0, 0, 30), items, decimal.Zero, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, paid.Send())
	require.NoError(t, paid.TransitionTo(billing.InvoiceStatusPaid))
	require.NoError(t, f.invoices.Save(ctx, paid))

	draft, err := billing.NewInvoice(testutil.TestUserID, client.ID, "INV-202601-00002", issued, issued, items, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, f.invoices.Save(ctx, draft))

	result, err := f.svc.Sync(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, []string{"INV-202601-00001"}, result.Invoices)

	assert.Equal(t, "tenant-1", f.fake.tenantHeader)
	require.Len(t, f.fake.pushed, 1)
	inv := f.fake.pushed[0]
	assert.Equal(t, "ACCREC", inv.Type)
	assert.Equal(t, "AUTHORISED", inv.Status)
	assert.Equal(t, "Studio Co", inv.Contact.Name)
	assert.Equal(t, "jane@studio.example", inv.Contact.EmailAddress)
	assert.Equal(t, "2026-01-05", inv.Date)
	assert.Equal(t, "2026-02-04", inv.DueDate)
	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, "120", inv.LineItems[0].UnitAmount.String())
	assert.Equal(t, "Discount", inv.LineItems[1].Description)
	assert.Equal(t, "-100", inv.LineItems[1].UnitAmount.String())
}

func TestXeroService_SyncWithNothingToPush(t *testing.T) {
	f := newXeroFixture(t)
	f.connect(t)

	result, err := f.svc.Sync(context.Background(), testutil.TestUserID)
	require.NoError(t, err)
	assert.Zero(t, result.Pushed)
	assert.Empty(t, result.Invoices)
	assert.Nil(t, f.fake.pushed)
}

func TestXeroService_Disconnect(t *testing.T) {
	f := newXeroFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Disconnect(ctx, testutil.TestUserID), ErrXeroNotConnected)
	f.connect(t)

	require.NoError(t, f.svc.Disconnect(ctx, testutil.TestUserID))
	assert.Equal(t, int32(1), f.fake.deleted.Load())

	status, err := f.svc.Status(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.False(t, status.Connected)
}
