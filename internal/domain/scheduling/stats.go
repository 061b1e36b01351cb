package scheduling

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CalendarStats are derived from a user's events and bookings
type CalendarStats struct {
	TotalEvents            int             `json:"total_events"`
	UpcomingEvents         int             `json:"upcoming_events"`
	EventsThisWeek         int             `json:"events_this_week"`
	TotalBookings          int             `json:"total_bookings"`
	PendingBookings        int             `json:"pending_bookings"`
	ConfirmedBookings      int             `json:"confirmed_bookings"`
	CompletedBookings      int             `json:"completed_bookings"`
	CancelledBookings      int             `json:"cancelled_bookings"`
	NoShowBookings         int             `json:"no_show_bookings"`
	BookingRevenue         decimal.Decimal `json:"booking_revenue"`
	AverageDurationMinutes decimal.Decimal `json:"average_duration_minutes"`
	NoShowRate             decimal.Decimal `json:"no_show_rate"`
}

// startOfWeek returns Monday 00:00 of t's week
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// ComputeCalendarStats reduces events and bookings into CalendarStats.
// Average duration is taken over non-cancelled bookings.
func ComputeCalendarStats(events []CalendarEvent, bookings []Booking, now time.Time) CalendarStats {
	stats := CalendarStats{
		TotalEvents:            len(events),
		TotalBookings:          len(bookings),
		BookingRevenue:         decimal.Zero,
		AverageDurationMinutes: decimal.Zero,
	}
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	for i := range events {
		e := &events[i]
		if e.IsCancelled {
			continue
		}
		if e.StartTime.After(now) {
			stats.UpcomingEvents++
		}
		if !e.StartTime.Before(weekStart) && e.StartTime.Before(weekEnd) {
			stats.EventsThisWeek++
		}
	}

	var minutes float64
	timed := 0
	for i := range bookings {
		b := &bookings[i]
		switch b.Status {
		case BookingStatusPending:
			stats.PendingBookings++
		case BookingStatusConfirmed:
			stats.ConfirmedBookings++
			stats.BookingRevenue = stats.BookingRevenue.Add(b.Price)
		case BookingStatusCompleted:
			stats.CompletedBookings++
			stats.BookingRevenue = stats.BookingRevenue.Add(b.Price)
		case BookingStatusCancelled:
			stats.CancelledBookings++
		case BookingStatusNoShow:
			stats.NoShowBookings++
		}
		if b.Status != BookingStatusCancelled {
			minutes += b.Duration().Minutes()
			timed++
		}
	}
	if timed > 0 {
		stats.AverageDurationMinutes = shared.Round2(decimal.NewFromFloat(minutes / float64(timed)))
	}
	stats.NoShowRate = shared.PercentOf(stats.NoShowBookings, stats.TotalBookings)
	return stats
}
