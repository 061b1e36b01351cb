package integration

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/settings"
)

// ---------------------------------------------------------------------------
// Banking (Plaid) DTOs
// ---------------------------------------------------------------------------

// LinkTokenResponse carries the token the browser opens Plaid Link with
type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// ExchangeTokenRequest carries the public token returned by Plaid Link
type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token" binding:"required"`
}

// AccountResponse is a connected bank account without its access token
type AccountResponse struct {
	AccountID    string     `json:"account_id"`
	ItemID       string     `json:"item_id"`
	Name         string     `json:"name"`
	Mask         string     `json:"mask"`
	Type         string     `json:"type"`
	Subtype      string     `json:"subtype"`
	Institution  string     `json:"institution"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// ToAccountResponse converts a stored account to a response
func ToAccountResponse(a settings.ConnectedAccount) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		ItemID:       a.ItemID,
		Name:         a.Name,
		Mask:         a.Mask,
		Type:         a.Type,
		Subtype:      a.Subtype,
		Institution:  a.Institution,
		LastSyncedAt: a.LastSyncedAt,
	}
}

// ToAccountResponses converts stored accounts to responses
func ToAccountResponses(accounts settings.ConnectedAccounts) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts.Redacted() {
		out[i] = ToAccountResponse(a)
	}
	return out
}

// SyncResult reports one account sync
type SyncResult struct {
	AccountID  string    `json:"account_id"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Duplicates int       `json:"duplicates"`
	Skipped    int       `json:"skipped"`
	SyncedAt   time.Time `json:"synced_at"`
}

// ---------------------------------------------------------------------------
// Xero DTOs
// ---------------------------------------------------------------------------

// AuthorizeResponse carries the consent URL to redirect the browser to
type AuthorizeResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// CallbackRequest carries the query parameters of the OAuth2 redirect
type CallbackRequest struct {
	Code  string `form:"code" json:"code" binding:"required"`
	State string `form:"state" json:"state" binding:"required"`
}

// ConnectionResponse describes the Xero connection without its tokens
type ConnectionResponse struct {
	Connected   bool       `json:"connected"`
	TenantID    string     `json:"tenant_id,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// ToConnectionResponse converts a stored connection to a response
func ToConnectionResponse(c settings.XeroConnection) ConnectionResponse {
	if c.TenantID == "" || c.AccessToken == "" {
		return ConnectionResponse{}
	}
	at := c.ConnectedAt
	return ConnectionResponse{Connected: true, TenantID: c.TenantID, ConnectedAt: &at}
}

// XeroSyncResult reports which invoices were pushed
type XeroSyncResult struct {
	Pushed   int      `json:"pushed"`
	Invoices []string `json:"invoices"`
}
