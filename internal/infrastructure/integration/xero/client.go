// Package xero implements the Xero OAuth2 flow and the accounting calls
// used to push paid invoices.
package xero

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agencydesk/backend/internal/infrastructure/apiclient"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var (
	ErrMissingClientID     = errors.New("xero: client id is required")
	ErrMissingClientSecret = errors.New("xero: client secret is required")
	ErrMissingRedirectURL  = errors.New("xero: redirect url is required")
	ErrNoTenant            = errors.New("xero: no organisation is connected to this token")
)

const tenantHeader = "xero-tenant-id"

// Client wraps the OAuth2 configuration and API base URL
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	logger     *zap.Logger
	// httpClient is the transport used for token exchange; nil means default
	httpClient *http.Client
}

// NewClient creates a client from configuration
func NewClient(cfg config.XeroConfig, logger *zap.Logger) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}
	if cfg.RedirectURL == "" {
		return nil, ErrMissingRedirectURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		logger:     logger,
	}, nil
}

// WithHTTPClient sets the transport used for token requests and API calls
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) context(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// AuthorizeURL returns the consent URL carrying state
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the callback code for a token
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(c.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("xero: failed to exchange code: %w", err)
	}
	return token, nil
}

// api returns an envelope client that authorizes with token and refreshes it as needed
func (c *Client) api(ctx context.Context, token *oauth2.Token, opts ...apiclient.Option) *apiclient.Client {
	hc := c.oauth.Client(c.context(ctx), token)
	opts = append([]apiclient.Option{apiclient.WithHTTPClient(hc), apiclient.WithLogger(c.logger)}, opts...)
	return apiclient.New(c.apiBaseURL, opts...)
}

// Connection is an organisation the token can access
type Connection struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	TenantType string `json:"tenantType"`
}

// Connections lists the organisations authorized for token
func (c *Client) Connections(ctx context.Context, token *oauth2.Token) apiclient.Response[[]Connection] {
	return apiclient.Get[[]Connection](ctx, c.api(ctx, token), "/connections", nil)
}

// FirstTenant returns the first connected organisation id
func (c *Client) FirstTenant(ctx context.Context, token *oauth2.Token) (string, error) {
	conns, err := c.Connections(ctx, token).Unwrap()
	if err != nil {
		return "", fmt.Errorf("xero: failed to list connections: %w", err)
	}
	if len(conns) == 0 {
		return "", ErrNoTenant
	}
	return conns[0].TenantID, nil
}

// Contact is the invoice recipient
type Contact struct {
	Name         string `json:"Name"`
	EmailAddress string `json:"EmailAddress,omitempty"`
}

// LineItem is a Xero invoice line
type LineItem struct {
	Description string          `json:"Description"`
	Quantity    decimal.Decimal `json:"Quantity"`
	UnitAmount  decimal.Decimal `json:"UnitAmount"`
	AccountCode string          `json:"AccountCode,omitempty"`
}

// Invoice is an accounts receivable invoice
type Invoice struct {
	InvoiceID     string     `json:"InvoiceID,omitempty"`
	Type          string     `json:"Type"`
	Contact       Contact    `json:"Contact"`
	Date          string     `json:"Date"`
	DueDate       string     `json:"DueDate"`
	InvoiceNumber string     `json:"InvoiceNumber"`
	Reference     string     `json:"Reference,omitempty"`
	Status        string     `json:"Status"`
	CurrencyCode  string     `json:"CurrencyCode,omitempty"`
	LineItems     []LineItem `json:"LineItems"`
}

type invoicesEnvelope struct {
	Invoices []Invoice `json:"Invoices"`
}

// PushInvoices creates or updates invoices in the tenant, keyed by InvoiceNumber
func (c *Client) PushInvoices(ctx context.Context, token *oauth2.Token, tenantID string, invoices []Invoice) apiclient.Response[[]Invoice] {
	api := c.api(ctx, token, apiclient.WithHeader(tenantHeader, tenantID))
	resp := apiclient.Fetch[invoicesEnvelope](ctx, api, "/api.xro/2.0/Invoices", apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   invoicesEnvelope{Invoices: invoices},
	})
	if !resp.Success {
		return apiclient.Fail[[]Invoice](resp.Error)
	}
	return apiclient.Ok(resp.Data.Invoices)
}

// Disconnect removes the connection to tenantID so the app loses access to it
func (c *Client) Disconnect(ctx context.Context, token *oauth2.Token, tenantID string) apiclient.Response[struct{}] {
	conns, err := c.Connections(ctx, token).Unwrap()
	if err != nil {
		return apiclient.Fail[struct{}](err.Error())
	}
	for _, conn := range conns {
		if conn.TenantID == tenantID {
			return apiclient.Delete[struct{}](ctx, c.api(ctx, token), "/connections/"+conn.ID)
		}
	}
	return apiclient.Ok(struct{}{})
}
