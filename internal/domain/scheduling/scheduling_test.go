package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendarEvent_TimeRange(t *testing.T) {
	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	_, err := NewCalendarEvent(uuid.New(), "Kickoff", start, start, EventTypeMeeting)
	assert.Equal(t, ErrInvalidTimeRange, err)

	e, err := NewCalendarEvent(uuid.New(), "Kickoff", start, start.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, EventTypeMeeting, e.EventType)

	earlier := start.Add(-time.Hour)
	assert.Equal(t, ErrInvalidTimeRange, e.Apply(EventUpdate{EndTime: &earlier}))
	assert.Equal(t, start.Add(time.Hour), e.EndTime, "failed update leaves the event untouched")
}

func TestBookingMachine(t *testing.T) {
	start := time.Now().Add(time.Hour)
	b, err := NewBooking(uuid.New(), "Dana", "dana@example.com", "Consult", start, start.Add(30*time.Minute), decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.Equal(t, BookingStatusPending, b.Status)

	err = b.TransitionTo(BookingStatusCompleted)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, b.TransitionTo(BookingStatusConfirmed))
	require.NoError(t, b.TransitionTo(BookingStatusNoShow))
	assert.True(t, BookingMachine.IsTerminal(BookingStatusNoShow))
	assert.Error(t, b.TransitionTo(BookingStatusConfirmed))

	require.Len(t, b.GetDomainEvents(), 1)
	assert.Equal(t, BookingConfirmedEventType, b.GetDomainEvents()[0].EventType())
}

func TestNewBooking_Validation(t *testing.T) {
	start := time.Now()
	_, err := NewBooking(uuid.New(), "Dana", "not-an-email", "", start, start.Add(time.Hour), decimal.Zero)
	assert.Error(t, err)
	_, err = NewBooking(uuid.New(), "Dana", "", "", start, start.Add(-time.Hour), decimal.Zero)
	assert.Equal(t, ErrInvalidTimeRange, err)
}

func TestComputeCalendarStats(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) // Wednesday
	events := []CalendarEvent{
		{StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)},
		{StartTime: now.AddDate(0, 0, -1), EndTime: now.AddDate(0, 0, -1).Add(time.Hour)},
		{StartTime: now.AddDate(0, 0, 10), EndTime: now.AddDate(0, 0, 10).Add(time.Hour)},
		{StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), IsCancelled: true},
	}
	mk := func(status BookingStatus, minutes int, price int64) Booking {
		return Booking{Status: status, StartTime: now, EndTime: now.Add(time.Duration(minutes) * time.Minute), Price: decimal.NewFromInt(price)}
	}
	bookings := []Booking{
		mk(BookingStatusConfirmed, 30, 100),
		mk(BookingStatusCompleted, 90, 200),
		mk(BookingStatusNoShow, 60, 50),
		mk(BookingStatusCancelled, 600, 75),
	}

	stats := ComputeCalendarStats(events, bookings, now)
	assert.Equal(t, 4, stats.TotalEvents)
	assert.Equal(t, 2, stats.UpcomingEvents)
	assert.Equal(t, 2, stats.EventsThisWeek)
	assert.True(t, decimal.NewFromInt(300).Equal(stats.BookingRevenue))
	assert.True(t, decimal.NewFromInt(60).Equal(stats.AverageDurationMinutes))
	assert.True(t, decimal.NewFromInt(25).Equal(stats.NoShowRate))

	empty := ComputeCalendarStats(nil, nil, now)
	assert.True(t, empty.AverageDurationMinutes.IsZero())
	assert.True(t, empty.NoShowRate.IsZero())
}
