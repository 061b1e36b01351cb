package scheduling

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
)

const (
	BookingConfirmedEventType = "BookingConfirmed"
	BookingCancelledEventType = "BookingCancelled"

	AggregateTypeBooking = "Booking"
)

// BookingConfirmedEvent is raised when a pending booking is confirmed
type BookingConfirmedEvent struct {
	shared.BaseDomainEvent
	ClientName string    `json:"client_name"`
	Service    string    `json:"service"`
	StartTime  time.Time `json:"start_time"`
}

// NewBookingConfirmedEvent creates a new BookingConfirmedEvent
func NewBookingConfirmedEvent(b *Booking) *BookingConfirmedEvent {
	return &BookingConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(BookingConfirmedEventType, AggregateTypeBooking, b.ID, b.UserID),
		ClientName:      b.ClientName,
		Service:         b.Service,
		StartTime:       b.StartTime,
	}
}

// BookingCancelledEvent is raised when a booking is cancelled
type BookingCancelledEvent struct {
	shared.BaseDomainEvent
	ClientName string    `json:"client_name"`
	StartTime  time.Time `json:"start_time"`
}

// NewBookingCancelledEvent creates a new BookingCancelledEvent
func NewBookingCancelledEvent(b *Booking) *BookingCancelledEvent {
	return &BookingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(BookingCancelledEventType, AggregateTypeBooking, b.ID, b.UserID),
		ClientName:      b.ClientName,
		StartTime:       b.StartTime,
	}
}
