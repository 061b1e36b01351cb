package settings

import (
	"encoding/json"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Key names a per-user setting
type Key string

const (
	KeyQuickBooksExport  Key = "quickbooks.export"
	KeyXeroConnection    Key = "xero.connection"
	KeyAPIKeys           Key = "integrations.api_keys"
	KeyReportTemplate    Key = "reports.template"
	KeyConnectedAccounts Key = "banking.connected_accounts"
)

var ErrSettingNotFound = shared.NewNotFoundError("Setting")

// Setting is one stored value. Value holds JSON, sealed when the key is secret.
type Setting struct {
	UserID    uuid.UUID
	Key       Key
	Value     json.RawMessage
	Version   int
	Sealed    bool
	UpdatedAt time.Time
}

// QuickBooksExport configures QuickBooks CSV / IIF exports
type QuickBooksExport struct {
	// AccountMapping maps a finance category to a QuickBooks account name
	AccountMapping map[string]string `json:"account_mapping"`
	DateFormat     string            `json:"date_format"`
	IncomeAccount  string            `json:"income_account"`
	ExpenseAccount string            `json:"expense_account"`
	BankAccount    string            `json:"bank_account"`
}

// AccountFor resolves the QuickBooks account for a category
func (q QuickBooksExport) AccountFor(category string, expense bool) string {
	if acct, ok := q.AccountMapping[category]; ok && acct != "" {
		return acct
	}
	if expense {
		return q.ExpenseAccount
	}
	return q.IncomeAccount
}

// DefaultQuickBooksExport is used when nothing is stored
func DefaultQuickBooksExport() QuickBooksExport {
	return QuickBooksExport{
		AccountMapping: map[string]string{},
		DateFormat:     "01/02/2006",
		IncomeAccount:  "Income",
		ExpenseAccount: "Expenses",
		BankAccount:    "Checking",
	}
}

// XeroConnection is the stored OAuth2 session with Xero
type XeroConnection struct {
	TenantID     string    `json:"tenant_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	ConnectedAt  time.Time `json:"connected_at"`
	// State is the pending authorize state until the callback completes
	State string `json:"state,omitempty"`
}

// APIKeys holds third-party credentials entered by the user
type APIKeys map[string]string

// ReportTemplate is a saved financial report configuration
type ReportTemplate struct {
	Name       string   `json:"name"`
	Sections   []string `json:"sections"`
	Period     string   `json:"period"`
	Currency   string   `json:"currency"`
	ShowCharts bool     `json:"show_charts"`
}

// ConnectedAccount is a bank account linked through Plaid
type ConnectedAccount struct {
	AccountID    string     `json:"account_id"`
	ItemID       string     `json:"item_id"`
	AccessToken  string     `json:"access_token"`
	Name         string     `json:"name"`
	Mask         string     `json:"mask"`
	Type         string     `json:"type"`
	Subtype      string     `json:"subtype"`
	Institution  string     `json:"institution"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	// Cursor is the Plaid transactions sync cursor
	Cursor string `json:"cursor,omitempty"`
}

// ConnectedAccounts is the list stored under KeyConnectedAccounts
type ConnectedAccounts []ConnectedAccount

// Find returns the account with id or nil
func (a ConnectedAccounts) Find(id string) *ConnectedAccount {
	for i := range a {
		if a[i].AccountID == id {
			return &a[i]
		}
	}
	return nil
}

// Without returns the accounts minus id
func (a ConnectedAccounts) Without(id string) ConnectedAccounts {
	out := make(ConnectedAccounts, 0, len(a))
	for _, acct := range a {
		if acct.AccountID != id {
			out = append(out, acct)
		}
	}
	return out
}

// Redacted strips access tokens for responses
func (a ConnectedAccounts) Redacted() ConnectedAccounts {
	out := make(ConnectedAccounts, len(a))
	for i, acct := range a {
		acct.AccessToken = ""
		out[i] = acct
	}
	return out
}
