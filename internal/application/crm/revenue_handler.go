package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
)

// RevenueHandler adds paid invoice totals to the client's lifetime revenue
type RevenueHandler struct {
	repo  crm.ClientRepository
	cache *query.Client
}

// NewRevenueHandler creates a RevenueHandler
func NewRevenueHandler(repo crm.ClientRepository, cache *query.Client) *RevenueHandler {
	return &RevenueHandler{repo: repo, cache: cache}
}

// EventTypes implements shared.EventHandler
func (h *RevenueHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePaid}
}

// Handle implements shared.EventHandler. Invoices whose client was deleted are ignored.
func (h *RevenueHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*billing.InvoicePaidEvent)
	if !ok {
		return nil
	}
	client, err := h.repo.FindByID(ctx, paid.OwnerID(), paid.ClientID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load client %s: %w", paid.ClientID, err)
	}
	client.RecordRevenue(paid.Total)
	if err := h.repo.Save(ctx, client); err != nil {
		return fmt.Errorf("record revenue: %w", err)
	}
	h.cache.InvalidateResource(ctx, client.UserID, query.ResourceClients)
	return nil
}
