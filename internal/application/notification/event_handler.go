package notification

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/messaging"
	"github.com/agencydesk/backend/internal/domain/notification"
	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventHandler turns domain events into in-app notifications
type EventHandler struct {
	service *NotificationService
	logger  *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(service *NotificationService, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{service: service, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *EventHandler) EventTypes() []string {
	return []string{
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoiceOverdue,
		scheduling.BookingConfirmedEventType,
		scheduling.BookingCancelledEventType,
		messaging.MessageSentEventType,
		marketing.LeadConvertedEventType,
	}
}

type delivery struct {
	userID uuid.UUID
	req    CreateNotificationRequest
}

// Handle implements shared.EventHandler
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var out []delivery
	switch ev := event.(type) {
	case *billing.InvoicePaidEvent:
		out = append(out, delivery{ev.OwnerID(), CreateNotificationRequest{
			Title:     "Invoice paid",
			Message:   fmt.Sprintf("Invoice %s was paid in full (%s %s)", ev.InvoiceNumber, ev.Total.StringFixed(2), ev.Currency),
			Type:      string(notification.TypeSuccess),
			Category:  string(notification.CategoryInvoice),
			ActionURL: "/invoices/" + ev.AggregateID().String(),
		}})
	case *billing.InvoiceOverdueEvent:
		out = append(out, delivery{ev.OwnerID(), CreateNotificationRequest{
			Title:     "Invoice overdue",
			Message:   fmt.Sprintf("Invoice %s is overdue with %s outstanding", ev.InvoiceNumber, ev.AmountDue.StringFixed(2)),
			Type:      string(notification.TypeWarning),
			Category:  string(notification.CategoryInvoice),
			ActionURL: "/invoices/" + ev.AggregateID().String(),
		}})
	case *scheduling.BookingConfirmedEvent:
		out = append(out, delivery{ev.OwnerID(), CreateNotificationRequest{
			Title:     "Booking confirmed",
			Message:   fmt.Sprintf("%s booked %s on %s", ev.ClientName, ev.Service, ev.StartTime.Format("Jan 2, 15:04")),
			Type:      string(notification.TypeSuccess),
			Category:  string(notification.CategoryBooking),
			ActionURL: "/bookings/" + ev.AggregateID().String(),
		}})
	case *scheduling.BookingCancelledEvent:
		out = append(out, delivery{ev.OwnerID(), CreateNotificationRequest{
			Title:     "Booking cancelled",
			Message:   fmt.Sprintf("The booking with %s on %s was cancelled", ev.ClientName, ev.StartTime.Format("Jan 2, 15:04")),
			Type:      string(notification.TypeWarning),
			Category:  string(notification.CategoryBooking),
			ActionURL: "/bookings/" + ev.AggregateID().String(),
		}})
	case *messaging.MessageSentEvent:
		for _, recipient := range ev.Recipients {
			out = append(out, delivery{recipient, CreateNotificationRequest{
				Title:     "New message",
				Message:   ev.Preview,
				Type:      string(notification.TypeInfo),
				Category:  string(notification.CategoryMessage),
				ActionURL: "/messages/" + ev.ConversationID.String(),
			}})
		}
	case *marketing.LeadConvertedEvent:
		out = append(out, delivery{ev.OwnerID(), CreateNotificationRequest{
			Title:     "Lead converted",
			Message:   fmt.Sprintf("%s is now a client", ev.LeadName),
			Type:      string(notification.TypeSuccess),
			Category:  string(notification.CategoryMarketing),
			ActionURL: "/clients/" + ev.ClientID.String(),
		}})
	default:
		return nil
	}

	var firstErr error
	for _, d := range out {
		if _, err := h.service.Notify(ctx, d.userID, d.req); err != nil {
			h.logger.Warn("Failed to create notification",
				zap.String("event_type", event.EventType()),
				zap.String("user_id", d.userID.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var _ shared.EventHandler = (*EventHandler)(nil)
