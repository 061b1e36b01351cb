package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultPaymentTerm is the due date offset when a request has none
const DefaultPaymentTerm = 30 * 24 * time.Hour

// InvoiceService handles invoice operations
type InvoiceService struct {
	repo    billing.InvoiceRepository
	cache   *query.Client
	events  shared.EventPublisher
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures an InvoiceService
type Option func(*InvoiceService)

// WithMetrics records business counters
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(s *InvoiceService) {
		s.metrics = m
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *InvoiceService) {
		s.now = now
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo billing.InvoiceRepository, cache *query.Client, events shared.EventPublisher, logger *zap.Logger, opts ...Option) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvoiceService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListInvoices returns a page of the user's invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, userID uuid.UUID, filter InvoiceListFilter) (shared.Paginated[InvoiceResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceInvoices, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[InvoiceResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[InvoiceResponse]{}, fmt.Errorf("list invoices: %w", err)
		}
		return shared.MapPage(page, ToInvoiceResponses).ToPaginated(), nil
	})
}

// GetInvoice returns an invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceInvoices, id), query.TierUserData, func(ctx context.Context) (InvoiceResponse, error) {
		invoice, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return InvoiceResponse{}, err
		}
		return ToInvoiceResponse(invoice), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateInvoice creates a draft invoice with computed totals
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	issue := s.now()
	if req.IssueDate != nil {
		issue = *req.IssueDate
	}
	due := issue.Add(DefaultPaymentTerm)
	if req.DueDate != nil {
		due = *req.DueDate
	}
	number := req.InvoiceNumber
	if number == "" {
		var err error
		if number, err = s.nextNumber(ctx, userID, issue); err != nil {
			return nil, err
		}
	}
	taxRate, discount := decimal.Zero, decimal.Zero
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}

	invoice, err := billing.NewInvoice(userID, req.ClientID, number, issue, due, toLineItems(req.LineItems), taxRate, discount)
	if err != nil {
		return nil, err
	}
	invoice.ProjectID = req.ProjectID
	invoice.Notes = req.Notes
	invoice.Terms = req.Terms
	if req.Currency != "" {
		currency := req.Currency
		if err := invoice.Apply(billing.InvoiceUpdate{Currency: &currency}); err != nil {
			return nil, err
		}
	}

	resp, err := s.save(ctx, invoice)
	if err != nil {
		return nil, err
	}
	s.metrics.InvoiceCreated(ctx)
	return resp, nil
}

// UpdateInvoice applies a partial update; totals are recomputed when pricing changes
func (s *InvoiceService) UpdateInvoice(ctx context.Context, userID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, func(i *billing.Invoice) error {
		return i.Apply(req.ToDomain())
	})
}

// DeleteInvoice deletes an invoice
func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceInvoices)
	return nil
}

// SendInvoice moves a draft to sent
func (s *InvoiceService) SendInvoice(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, (*billing.Invoice).Send)
}

// MarkViewed records that the client opened the invoice
func (s *InvoiceService) MarkViewed(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, (*billing.Invoice).MarkViewed)
}

// CancelInvoice voids the invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, (*billing.Invoice).Cancel)
}

// TransitionInvoice applies an explicit status change through the invoice machine
func (s *InvoiceService) TransitionInvoice(ctx context.Context, userID, id uuid.UUID, status billing.InvoiceStatus) (*InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, func(i *billing.Invoice) error {
		return i.TransitionTo(status)
	})
}

// RecordPayment applies a payment; covering the total marks the invoice paid
func (s *InvoiceService) RecordPayment(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*InvoiceResponse, error) {
	resp, err := s.mutate(ctx, userID, id, func(i *billing.Invoice) error {
		return i.RecordPayment(amount)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.PaymentRecorded(ctx, amount.InexactFloat64(), resp.Currency, resp.Status == string(billing.InvoiceStatusPaid))
	return resp, nil
}

// DuplicateInvoice copies an invoice into a new draft with a fresh number
func (s *InvoiceService) DuplicateInvoice(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	source, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	issue := s.now()
	number, err := s.nextNumber(ctx, userID, issue)
	if err != nil {
		return nil, err
	}
	dup, err := source.Duplicate(number, issue)
	if err != nil {
		return nil, err
	}
	resp, err := s.save(ctx, dup)
	if err != nil {
		return nil, err
	}
	s.metrics.InvoiceCreated(ctx)
	return resp, nil
}

// GetInvoiceStats returns statistics over all of the user's invoices
func (s *InvoiceService) GetInvoiceStats(ctx context.Context, userID uuid.UUID) (*billing.InvoiceStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceInvoices), query.TierUserData, func(ctx context.Context) (billing.InvoiceStats, error) {
		invoices, err := s.repo.ListAll(ctx, userID)
		if err != nil {
			return billing.InvoiceStats{}, fmt.Errorf("load invoices: %w", err)
		}
		return billing.ComputeInvoiceStats(invoices), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// nextNumber returns the next INV-YYYYMM-NNNNN number for the issue month
func (s *InvoiceService) nextNumber(ctx context.Context, userID uuid.UUID, issued time.Time) (string, error) {
	prefix := billing.InvoiceNumberPrefix(issued)
	last, err := s.repo.MaxNumberWithPrefix(ctx, userID, prefix)
	if err != nil {
		return "", fmt.Errorf("find last invoice number: %w", err)
	}
	return billing.FormatInvoiceNumber(issued, billing.InvoiceSequence(last, prefix)+1), nil
}

func (s *InvoiceService) mutate(ctx context.Context, userID, id uuid.UUID, fn func(*billing.Invoice) error) (*InvoiceResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(invoice); err != nil {
		return nil, err
	}
	return s.save(ctx, invoice)
}

// save persists the invoice, invalidates, then publishes its pending events
func (s *InvoiceService) save(ctx context.Context, invoice *billing.Invoice) (*InvoiceResponse, error) {
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	s.cache.InvalidateResource(ctx, invoice.UserID, query.ResourceInvoices)
	s.publish(ctx, invoice)
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

func (s *InvoiceService) publish(ctx context.Context, invoice *billing.Invoice) {
	events := invoice.GetDomainEvents()
	invoice.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish invoice events",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
}
