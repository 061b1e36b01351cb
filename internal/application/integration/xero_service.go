package integration

import (
	"context"
	"fmt"
	"time"

	appsettings "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/apiclient"
	"github.com/agencydesk/backend/internal/infrastructure/integration/xero"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var (
	ErrXeroNotConnected  = shared.NewDomainError("NOT_CONNECTED", "Xero is not connected")
	ErrOAuthStateInvalid = shared.NewDomainError("INVALID_OAUTH_STATE", "Authorization state does not match")
)

const xeroDateLayout = "2006-01-02"

// Accounting is the Xero surface the sync service needs
type Accounting interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FirstTenant(ctx context.Context, token *oauth2.Token) (string, error)
	PushInvoices(ctx context.Context, token *oauth2.Token, tenantID string, invoices []xero.Invoice) apiclient.Response[[]xero.Invoice]
	Disconnect(ctx context.Context, token *oauth2.Token, tenantID string) apiclient.Response[struct{}]
}

// XeroService runs the Xero OAuth2 flow and pushes paid invoices to the
// connected organisation. The session is kept in the sealed xero.connection setting.
type XeroService struct {
	xero     Accounting
	store    *appsettings.Store
	invoices billing.InvoiceRepository
	clients  crm.ClientRepository
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewXeroService creates a XeroService
func NewXeroService(api Accounting, store *appsettings.Store, invoices billing.InvoiceRepository, clients crm.ClientRepository, logger *zap.Logger, opts ...Option) *XeroService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &XeroService{
		xero:     api,
		store:    store,
		invoices: invoices,
		clients:  clients,
		metrics:  o.metrics,
		logger:   logger,
		now:      o.now,
	}
}

// Authorize returns the consent URL. The state it carries is stored and must
// come back on the callback.
func (s *XeroService) Authorize(ctx context.Context, userID uuid.UUID) (*AuthorizeResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	conn, err := s.connection(ctx, userID)
	if err != nil {
		return nil, err
	}
	conn.State = uuid.NewString()
	if err := appsettings.Set(ctx, s.store, userID, settings.KeyXeroConnection, conn); err != nil {
		return nil, fmt.Errorf("save xero state: %w", err)
	}
	return &AuthorizeResponse{URL: s.xero.AuthorizeURL(conn.State), State: conn.State}, nil
}

// Callback completes the authorization: the code is exchanged for a token
// and the first organisation it grants becomes the connected tenant.
func (s *XeroService) Callback(ctx context.Context, userID uuid.UUID, req CallbackRequest) (*ConnectionResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	conn, err := s.connection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conn.State == "" || conn.State != req.State {
		return nil, ErrOAuthStateInvalid
	}

	token, err := s.xero.Exchange(ctx, req.Code)
	if err != nil {
		return nil, upstreamError("exchange code", err)
	}
	tenantID, err := s.xero.FirstTenant(ctx, token)
	if err != nil {
		return nil, upstreamError("list organisations", err)
	}

	conn = settings.XeroConnection{
		TenantID:     tenantID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		ConnectedAt:  s.now(),
	}
	if err := appsettings.Set(ctx, s.store, userID, settings.KeyXeroConnection, conn); err != nil {
		return nil, fmt.Errorf("save xero connection: %w", err)
	}

	s.logger.Info("Xero connected",
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", tenantID))
	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// Status reports whether Xero is connected
func (s *XeroService) Status(ctx context.Context, userID uuid.UUID) (*ConnectionResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	conn, err := s.connection(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// Sync pushes every paid invoice as an authorised receivable. Xero matches
// on invoice number, so repeated syncs update rather than duplicate.
func (s *XeroService) Sync(ctx context.Context, userID uuid.UUID) (*XeroSyncResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	conn, err := s.connected(ctx, userID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoices.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	clients, err := s.clients.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	byID := make(map[uuid.UUID]crm.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	payload := make([]xero.Invoice, 0)
	for _, inv := range invoices {
		if inv.Status != billing.InvoiceStatusPaid {
			continue
		}
		payload = append(payload, toXeroInvoice(inv, byID[inv.ClientID]))
	}
	result := &XeroSyncResult{Invoices: []string{}}
	if len(payload) == 0 {
		return result, nil
	}

	pushed, err := s.xero.PushInvoices(ctx, tokenOf(conn), conn.TenantID, payload).Unwrap()
	if err != nil {
		return nil, upstreamError("push invoices", err)
	}
	for _, inv := range pushed {
		result.Invoices = append(result.Invoices, inv.InvoiceNumber)
	}
	result.Pushed = len(pushed)

	s.metrics.ExportGenerated(ctx, "xero")
	s.logger.Info("Invoices pushed to Xero",
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", conn.TenantID),
		zap.Int("pushed", result.Pushed))
	return result, nil
}

// Disconnect revokes the tenant connection and forgets the stored session.
// The local session is removed even when revoking fails.
func (s *XeroService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	conn, err := s.connected(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.xero.Disconnect(ctx, tokenOf(conn), conn.TenantID).Err(); err != nil {
		s.logger.Warn("Failed to revoke Xero connection",
			zap.String("user_id", userID.String()),
			zap.String("tenant_id", conn.TenantID),
			zap.Error(err))
	}
	if err := s.store.Delete(ctx, userID, settings.KeyXeroConnection); err != nil {
		return fmt.Errorf("delete xero connection: %w", err)
	}
	s.logger.Info("Xero disconnected", zap.String("user_id", userID.String()))
	return nil
}

func (s *XeroService) connection(ctx context.Context, userID uuid.UUID) (settings.XeroConnection, error) {
	conn, err := appsettings.GetOr(ctx, s.store, userID, settings.KeyXeroConnection, settings.XeroConnection{})
	if err != nil {
		return conn, fmt.Errorf("load xero connection: %w", err)
	}
	return conn, nil
}

func (s *XeroService) connected(ctx context.Context, userID uuid.UUID) (settings.XeroConnection, error) {
	conn, err := s.connection(ctx, userID)
	if err != nil {
		return conn, err
	}
	if conn.TenantID == "" || conn.AccessToken == "" {
		return conn, ErrXeroNotConnected
	}
	return conn, nil
}

func tokenOf(conn settings.XeroConnection) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		TokenType:    conn.TokenType,
		Expiry:       conn.Expiry,
	}
}

// toXeroInvoice maps a paid invoice. A discount becomes a negative line.
func toXeroInvoice(inv billing.Invoice, client crm.Client) xero.Invoice {
	name := client.Name
	if client.Company != "" {
		name = client.Company
	}
	if name == "" {
		name = "Unknown client"
	}
	lines := make([]xero.LineItem, 0, len(inv.LineItems)+1)
	for _, li := range inv.LineItems {
		lines = append(lines, xero.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitPrice,
		})
	}
	if inv.DiscountAmount.IsPositive() {
		lines = append(lines, xero.LineItem{
			Description: "Discount",
			Quantity:    decimal.NewFromInt(1),
			UnitAmount:  inv.DiscountAmount.Neg(),
		})
	}
	return xero.Invoice{
		Type:          "ACCREC",
		Contact:       xero.Contact{Name: name, EmailAddress: client.Email},
		Date:          inv.IssueDate.Format(xeroDateLayout),
		DueDate:       inv.DueDate.Format(xeroDateLayout),
		InvoiceNumber: inv.InvoiceNumber,
		Reference:     inv.Notes,
		Status:        "AUTHORISED",
		CurrencyCode:  inv.Currency,
		LineItems:     lines,
	}
}
