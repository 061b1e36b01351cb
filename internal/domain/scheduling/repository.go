package scheduling

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CalendarRepository defines persistence operations for calendars
type CalendarRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Calendar, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// ClearDefault unsets is_default on every calendar of the user except keep
	ClearDefault(ctx context.Context, userID, keep uuid.UUID) error
}

// EventRepository defines persistence operations for calendar events
type EventRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*CalendarEvent, error)
	List(ctx context.Context, userID uuid.UUID, filter EventFilter) (shared.PageResult[CalendarEvent], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error)
	Save(ctx context.Context, event *CalendarEvent) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// BookingRepository defines persistence operations for bookings
type BookingRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Booking, error)
	List(ctx context.Context, userID uuid.UUID, filter BookingFilter) (shared.PageResult[Booking], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
