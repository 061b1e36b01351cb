// Package plaid talks to the documented Plaid REST API: link tokens,
// public token exchange, accounts, transaction sync and item removal.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/infrastructure/apiclient"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMissingClientID = errors.New("plaid: client id is required")
	ErrMissingSecret   = errors.New("plaid: secret is required")
)

const syncPageSize = 250

// Client is a Plaid API client
type Client struct {
	api          *apiclient.Client
	clientID     string
	secret       string
	clientName   string
	countryCodes []string
	logger       *zap.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg config.PlaidConfig, logger *zap.Logger, opts ...apiclient.Option) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	countries := cfg.CountryCodes
	if len(countries) == 0 {
		countries = []string{"US"}
	}
	opts = append([]apiclient.Option{apiclient.WithLogger(logger)}, opts...)
	return &Client{
		api:          apiclient.New(cfg.BaseURL, opts...),
		clientID:     cfg.ClientID,
		secret:       cfg.Secret,
		clientName:   cfg.ClientName,
		countryCodes: countries,
		logger:       logger,
	}, nil
}

type credentials struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

func (c *Client) creds() credentials {
	return credentials{ClientID: c.clientID, Secret: c.secret}
}

// LinkToken is the short-lived token the browser uses to open Plaid Link
type LinkToken struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id"`
}

// CreateLinkToken creates a link token for userRef
func (c *Client) CreateLinkToken(ctx context.Context, userRef string) apiclient.Response[LinkToken] {
	body := struct {
		credentials
		ClientName   string            `json:"client_name"`
		CountryCodes []string          `json:"country_codes"`
		Language     string            `json:"language"`
		Products     []string          `json:"products"`
		User         map[string]string `json:"user"`
	}{
		credentials:  c.creds(),
		ClientName:   c.clientName,
		CountryCodes: c.countryCodes,
		Language:     "en",
		Products:     []string{"transactions"},
		User:         map[string]string{"client_user_id": userRef},
	}
	return apiclient.Post[LinkToken](ctx, c.api, "/link/token/create", body)
}

// Exchange is the result of exchanging a public token
type Exchange struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangePublicToken swaps the Link public token for a long-lived access token
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) apiclient.Response[Exchange] {
	body := struct {
		credentials
		PublicToken string `json:"public_token"`
	}{c.creds(), publicToken}
	return apiclient.Post[Exchange](ctx, c.api, "/item/public_token/exchange", body)
}

// Account is a bank account on an item
type Account struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Mask      string `json:"mask"`
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
}

// AccountsResult is the /accounts/get response
type AccountsResult struct {
	Accounts []Account `json:"accounts"`
	Item     struct {
		ItemID        string `json:"item_id"`
		InstitutionID string `json:"institution_id"`
	} `json:"item"`
}

type accessTokenBody struct {
	credentials
	AccessToken string `json:"access_token"`
}

// GetAccounts lists the accounts of an item
func (c *Client) GetAccounts(ctx context.Context, accessToken string) apiclient.Response[AccountsResult] {
	return apiclient.Post[AccountsResult](ctx, c.api, "/accounts/get", accessTokenBody{c.creds(), accessToken})
}

// Transaction is a Plaid transaction. Plaid amounts are positive for money leaving the account.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Name          string          `json:"name"`
	MerchantName  string          `json:"merchant_name"`
	Pending       bool            `json:"pending"`
}

// ParsedDate parses the YYYY-MM-DD date
func (t Transaction) ParsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", t.Date)
}

// Description prefers the merchant name
func (t Transaction) Description() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}

// SyncPage is one /transactions/sync page
type SyncPage struct {
	Added      []Transaction `json:"added"`
	Modified   []Transaction `json:"modified"`
	NextCursor string        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
}

// SyncResult accumulates every page of a sync
type SyncResult struct {
	Added      []Transaction
	NextCursor string
}

// SyncTransactions pages /transactions/sync from cursor until has_more is false
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResult, error) {
	result := &SyncResult{NextCursor: cursor}
	for {
		body := struct {
			credentials
			AccessToken string `json:"access_token"`
			Cursor      string `json:"cursor,omitempty"`
			Count       int    `json:"count"`
		}{c.creds(), accessToken, result.NextCursor, syncPageSize}

		page, err := apiclient.Post[SyncPage](ctx, c.api, "/transactions/sync", body).Unwrap()
		if err != nil {
			return nil, fmt.Errorf("plaid: transactions sync failed: %w", err)
		}
		result.Added = append(result.Added, page.Added...)
		result.NextCursor = page.NextCursor
		if !page.HasMore {
			break
		}
	}
	c.logger.Debug("Plaid transactions synced", zap.Int("added", len(result.Added)))
	return result, nil
}

// RemoveItem revokes the access token
func (c *Client) RemoveItem(ctx context.Context, accessToken string) apiclient.Response[struct{}] {
	return apiclient.Post[struct{}](ctx, c.api, "/item/remove", accessTokenBody{c.creds(), accessToken})
}
