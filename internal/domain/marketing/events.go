package marketing

import (
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	LeadConvertedEventType = "LeadConverted"

	AggregateTypeLead = "Lead"
)

// LeadConvertedEvent is raised when a lead becomes a client
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	LeadName string    `json:"lead_name"`
	ClientID uuid.UUID `json:"client_id"`
}

// NewLeadConvertedEvent creates a new LeadConvertedEvent
func NewLeadConvertedEvent(l *Lead) *LeadConvertedEvent {
	e := &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(LeadConvertedEventType, AggregateTypeLead, l.ID, l.UserID),
		LeadName:        l.Name,
	}
	if l.ConvertedClientID != nil {
		e.ClientID = *l.ConvertedClientID
	}
	return e
}
