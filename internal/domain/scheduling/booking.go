package scheduling

import (
	"net/mail"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// IsValid checks if the status is a known value
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// BookingMachine holds the legal booking transitions
var BookingMachine = shared.NewStateMachine("Booking", map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
})

// Booking is an appointment requested by a client
type Booking struct {
	shared.BaseAggregateRoot
	CalendarID  *uuid.UUID
	ClientName  string
	ClientEmail string
	Service     string
	StartTime   time.Time
	EndTime     time.Time
	Status      BookingStatus
	Notes       string
	Price       decimal.Decimal
}

// NewBooking creates a pending booking
func NewBooking(userID uuid.UUID, clientName, clientEmail, service string, start, end time.Time, price decimal.Decimal) (*Booking, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if clientEmail != "" {
		if _, err := mail.ParseAddress(clientEmail); err != nil {
			return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid client email")
		}
	}
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Booking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(shared.NewOwnedEntity(userID)),
		ClientName:        clientName,
		ClientEmail:       clientEmail,
		Service:           service,
		StartTime:         start,
		EndTime:           end,
		Status:            BookingStatusPending,
		Price:             price,
	}, nil
}

// TransitionTo validates and applies a status change
func (b *Booking) TransitionTo(status BookingStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid booking status")
	}
	if err := BookingMachine.Validate(b.Status, status); err != nil {
		return err
	}
	b.Status = status
	switch status {
	case BookingStatusConfirmed:
		b.AddDomainEvent(NewBookingConfirmedEvent(b))
	case BookingStatusCancelled:
		b.AddDomainEvent(NewBookingCancelledEvent(b))
	}
	b.Touch()
	return nil
}

// Duration returns the booked time
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// BookingUpdate is a partial update; nil fields are left unchanged.
// Status changes go through TransitionTo.
type BookingUpdate struct {
	CalendarID  *uuid.UUID
	ClientName  *string
	ClientEmail *string
	Service     *string
	StartTime   *time.Time
	EndTime     *time.Time
	Notes       *string
	Price       *decimal.Decimal
}

// Apply merges the update into the booking
func (b *Booking) Apply(u BookingUpdate) error {
	start, end := b.StartTime, b.EndTime
	if u.StartTime != nil {
		start = *u.StartTime
	}
	if u.EndTime != nil {
		end = *u.EndTime
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	if u.Price != nil && u.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if u.ClientName != nil {
		name := strings.TrimSpace(*u.ClientName)
		if name == "" {
			return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
		}
		b.ClientName = name
	}
	b.StartTime, b.EndTime = start, end
	if u.CalendarID != nil {
		b.CalendarID = u.CalendarID
	}
	if u.ClientEmail != nil {
		b.ClientEmail = *u.ClientEmail
	}
	if u.Service != nil {
		b.Service = *u.Service
	}
	if u.Notes != nil {
		b.Notes = *u.Notes
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	b.Touch()
	return nil
}

// BookingFilter narrows booking list queries
type BookingFilter struct {
	shared.Filter
	Statuses   []BookingStatus
	CalendarID *uuid.UUID
	Start      shared.DateRange
}
