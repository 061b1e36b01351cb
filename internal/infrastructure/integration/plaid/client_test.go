package plaid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(config.PlaidConfig{BaseURL: server.URL, ClientID: "cid", Secret: "sec", ClientName: "AgencyDesk"}, nil)
	require.NoError(t, err)
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.PlaidConfig{Secret: "s"}, nil)
	assert.ErrorIs(t, err, ErrMissingClientID)
	_, err = NewClient(config.PlaidConfig{ClientID: "c"}, nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestCreateLinkToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/link/token/create", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "cid", body["client_id"])
		assert.Equal(t, "sec", body["secret"])
		assert.Equal(t, []any{"US"}, body["country_codes"])
		assert.Equal(t, map[string]any{"client_user_id": "user-1"}, body["user"])
		_, _ = w.Write([]byte(`{"link_token":"link-sandbox-123","expiration":"2024-01-01T00:00:00Z","request_id":"r1"}`))
	})

	resp := c.CreateLinkToken(context.Background(), "user-1")
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "link-sandbox-123", resp.Data.LinkToken)
}

func TestExchangePublicToken_ErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_type":"INVALID_INPUT","error_code":"INVALID_PUBLIC_TOKEN","error_message":"provided public token is in an invalid format"}`))
	})

	resp := c.ExchangePublicToken(context.Background(), "bad")
	assert.False(t, resp.Success)
	assert.Equal(t, "provided public token is in an invalid format", resp.Error)
}

func TestSyncTransactions_PagesUntilDone(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body := decodeBody(t, r)
		if calls == 1 {
			_, hasCursor := body["cursor"]
			assert.False(t, hasCursor)
			_, _ = w.Write([]byte(`{"added":[{"transaction_id":"t1","account_id":"a1","amount":12.5,"date":"2024-01-02","name":"Coffee"}],"next_cursor":"c1","has_more":true}`))
			return
		}
		assert.Equal(t, "c1", body["cursor"])
		_, _ = w.Write([]byte(`{"added":[{"transaction_id":"t2","account_id":"a1","amount":-100,"date":"2024-01-03","name":"Deposit","merchant_name":"Acme"}],"next_cursor":"c2","has_more":false}`))
	})

	result, err := c.SyncTransactions(context.Background(), "access", "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, result.Added, 2)
	assert.Equal(t, "c2", result.NextCursor)
	assert.Equal(t, "Acme", result.Added[1].Description())
	assert.Equal(t, "12.5", result.Added[0].Amount.String())

	d, err := result.Added[0].ParsedDate()
	require.NoError(t, err)
	assert.Equal(t, 2, d.Day())
}

func TestSyncTransactions_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_message":"the provided access token is invalid"}`))
	})
	_, err := c.SyncTransactions(context.Background(), "access", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is invalid")
}
