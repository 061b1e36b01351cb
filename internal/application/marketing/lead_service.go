// Package marketing implements the lead pipeline and campaigns.
package marketing

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/export"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles leads and their conversion into clients
type LeadService struct {
	leads   marketing.LeadRepository
	clients crm.ClientRepository
	cache   *query.Client
	events  shared.EventPublisher
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures the marketing services
type Option func(*options)

type options struct {
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// WithMetrics records business counters
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLeadService creates a new LeadService
func NewLeadService(leads marketing.LeadRepository, clients crm.ClientRepository, cache *query.Client, events shared.EventPublisher, logger *zap.Logger, opts ...Option) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &LeadService{
		leads:   leads,
		clients: clients,
		cache:   cache,
		events:  events,
		metrics: o.metrics,
		logger:  logger,
		now:     o.now,
	}
}

// ListLeads returns a page of leads for the selected tab
func (s *LeadService) ListLeads(ctx context.Context, userID uuid.UUID, filter LeadListFilter) (shared.Paginated[LeadResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[LeadResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceLeads, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[LeadResponse], error) {
		page, err := s.leads.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[LeadResponse]{}, fmt.Errorf("list leads: %w", err)
		}
		return shared.MapPage(page, ToLeadResponses).ToPaginated(), nil
	})
}

// GetLead returns a lead by id
func (s *LeadService) GetLead(ctx context.Context, userID, id uuid.UUID) (*LeadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceLeads, id), query.TierUserData, func(ctx context.Context) (LeadResponse, error) {
		l, err := s.leads.FindByID(ctx, userID, id)
		if err != nil {
			return LeadResponse{}, err
		}
		return ToLeadResponse(l), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLead adds a lead in the new stage
func (s *LeadService) CreateLead(ctx context.Context, userID uuid.UUID, req CreateLeadRequest) (*LeadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	lead, err := marketing.NewLead(userID, req.Name, req.Email, marketing.LeadSource(req.Source))
	if err != nil {
		return nil, err
	}
	update := marketing.LeadUpdate{
		Phone:      &req.Phone,
		Company:    &req.Company,
		Score:      &req.Score,
		Notes:      &req.Notes,
		CampaignID: req.CampaignID,
	}
	if !req.EstimatedValue.IsZero() {
		update.EstimatedValue = &req.EstimatedValue
	}
	if err := lead.Apply(update); err != nil {
		return nil, err
	}
	return s.save(ctx, lead)
}

// UpdateLead applies a partial update
func (s *LeadService) UpdateLead(ctx context.Context, userID, id uuid.UUID, req UpdateLeadRequest) (*LeadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	lead, err := s.leads.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := lead.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	return s.save(ctx, lead)
}

// TransitionLead moves a lead to another pipeline stage
func (s *LeadService) TransitionLead(ctx context.Context, userID, id uuid.UUID, req LeadStatusRequest) (*LeadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	lead, err := s.leads.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := lead.TransitionTo(marketing.LeadStatus(req.Status), s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, lead)
}

// ConvertLead turns a qualified lead into an active client. The client is
// removed again when the lead cannot be saved.
func (s *LeadService) ConvertLead(ctx context.Context, userID, id uuid.UUID) (*ConvertLeadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	lead, err := s.leads.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	client, err := lead.Convert()
	if err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("save converted client: %w", err)
	}
	if err := s.leads.Save(ctx, lead); err != nil {
		if derr := s.clients.Delete(ctx, userID, client.ID); derr != nil {
			s.logger.Error("Failed to remove client of failed lead conversion",
				zap.String("client_id", client.ID.String()), zap.Error(derr))
		}
		return nil, fmt.Errorf("save lead: %w", err)
	}

	s.cache.InvalidateResource(ctx, userID, query.ResourceLeads)
	s.metrics.LeadConverted(ctx)
	events := lead.GetDomainEvents()
	lead.ClearDomainEvents()
	s.publish(ctx, events)

	s.logger.Info("Lead converted",
		zap.String("user_id", userID.String()),
		zap.String("lead_id", lead.ID.String()),
		zap.String("client_id", client.ID.String()))
	return &ConvertLeadResponse{Lead: ToLeadResponse(lead), ClientID: client.ID}, nil
}

// DeleteLead removes a lead
func (s *LeadService) DeleteLead(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if _, err := s.leads.FindByID(ctx, userID, id); err != nil {
		return err
	}
	if err := s.leads.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceLeads)
	return nil
}

// ExportLeads renders every lead matching filter, ignoring paging, as CSV
func (s *LeadService) ExportLeads(ctx context.Context, userID uuid.UUID, filter LeadListFilter) (export.File, error) {
	if err := shared.RequireUser(userID); err != nil {
		return export.File{}, err
	}
	leads, err := s.leads.ListAll(ctx, userID, filter.ToDomain())
	if err != nil {
		return export.File{}, fmt.Errorf("load leads: %w", err)
	}
	f, err := export.LeadsCSV(leads, s.now())
	if err != nil {
		return export.File{}, err
	}
	s.metrics.ExportGenerated(ctx, "csv")
	return f, nil
}

func (s *LeadService) save(ctx context.Context, lead *marketing.Lead) (*LeadResponse, error) {
	if err := s.leads.Save(ctx, lead); err != nil {
		return nil, fmt.Errorf("save lead: %w", err)
	}
	s.cache.InvalidateResource(ctx, lead.UserID, query.ResourceLeads)
	resp := ToLeadResponse(lead)
	return &resp, nil
}

func (s *LeadService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish lead events", zap.Error(err))
	}
}
