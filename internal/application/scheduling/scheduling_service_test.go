package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/cache"
	"github.com/agencydesk/backend/internal/infrastructure/event"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	calendars *CalendarService
	bookings  *BookingService
	handler   *testutil.MockEventHandler
	store     *cache.MemoryStore
	cache     *query.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, store := testutil.NewQueryClient()
	bus := event.NewBus(zap.NewNop())
	handler := testutil.NewMockEventHandler(scheduling.BookingConfirmedEventType, scheduling.BookingCancelledEventType)
	bus.Subscribe(handler)

	bookingRepo := persistence.NewGormBookingRepository(db)
	return &fixture{
		calendars: NewCalendarService(persistence.NewGormCalendarRepository(db), persistence.NewGormEventRepository(db), bookingRepo, qc),
		bookings:  NewBookingService(bookingRepo, qc, bus, zap.NewNop()),
		handler:   handler,
		store:     store,
		cache:     qc,
	}
}

func TestCalendarService_DefaultCalendarIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	work, err := f.calendars.CreateCalendar(ctx, userID, CreateCalendarRequest{Name: "Work", IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, "UTC", work.Timezone)

	personal, err := f.calendars.CreateCalendar(ctx, userID, CreateCalendarRequest{Name: "Personal", IsDefault: true, Timezone: "Europe/Berlin"})
	require.NoError(t, err)

	calendars, err := f.calendars.ListCalendars(ctx, userID)
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, personal.ID, calendars[0].ID)
	assert.True(t, calendars[0].IsDefault)
	assert.False(t, calendars[1].IsDefault)

	name := "Office"
	updated, err := f.calendars.UpdateCalendar(ctx, userID, work.ID, UpdateCalendarRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Name)

	_, err = f.calendars.CreateCalendar(ctx, userID, CreateCalendarRequest{Name: "Bad", Timezone: "Mars/Olympus"})
	assert.Error(t, err)

	require.NoError(t, f.calendars.DeleteCalendar(ctx, userID, work.ID))
	_, err = f.calendars.GetCalendar(ctx, userID, work.ID)
	assert.ErrorIs(t, err, scheduling.ErrCalendarNotFound)
	_, err = f.calendars.GetCalendar(ctx, testutil.OtherUserID, personal.ID)
	assert.ErrorIs(t, err, scheduling.ErrCalendarNotFound)
}

func TestCalendarService_Events(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	_, err := f.calendars.CreateEvent(ctx, userID, CreateEventRequest{Title: "Backwards", StartTime: base, EndTime: base.Add(-time.Hour)})
	assert.ErrorIs(t, err, scheduling.ErrInvalidTimeRange)

	missing := uuid.New()
	_, err = f.calendars.CreateEvent(ctx, userID, CreateEventRequest{CalendarID: &missing, Title: "Orphan", StartTime: base, EndTime: base.Add(time.Hour)})
	assert.ErrorIs(t, err, scheduling.ErrCalendarNotFound)

	late, err := f.calendars.CreateEvent(ctx, userID, CreateEventRequest{Title: "Review", StartTime: base.Add(48 * time.Hour), EndTime: base.Add(49 * time.Hour), EventType: "call"})
	require.NoError(t, err)
	early, err := f.calendars.CreateEvent(ctx, userID, CreateEventRequest{Title: "Kickoff", StartTime: base, EndTime: base.Add(time.Hour), Attendees: []string{"a@b.test"}})
	require.NoError(t, err)
	assert.Equal(t, "meeting", early.EventType)

	page, err := f.calendars.ListEvents(ctx, userID, EventListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, early.ID, page.Data[0].ID)
	assert.Equal(t, late.ID, page.Data[1].ID)

	to := base.Add(2 * time.Hour)
	page, err = f.calendars.ListEvents(ctx, userID, EventListFilter{From: &base, To: &to})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Kickoff", page.Data[0].Title)

	before := base.Add(-time.Hour)
	_, err = f.calendars.ListEvents(ctx, userID, EventListFilter{From: &base, To: &before})
	assert.ErrorIs(t, err, scheduling.ErrInvalidTimeRange)

	cancelled := true
	_, err = f.calendars.UpdateEvent(ctx, userID, late.ID, UpdateEventRequest{IsCancelled: &cancelled})
	require.NoError(t, err)
	page, err = f.calendars.ListEvents(ctx, userID, EventListFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	page, err = f.calendars.ListEvents(ctx, userID, EventListFilter{IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	require.NoError(t, f.calendars.DeleteEvent(ctx, userID, early.ID))
	_, err = f.calendars.GetEvent(ctx, userID, early.ID)
	assert.ErrorIs(t, err, scheduling.ErrEventNotFound)
}

func TestCalendarService_UpdateEventRollsBackOnInvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	ev, err := f.calendars.CreateEvent(ctx, userID, CreateEventRequest{Title: "Sync", StartTime: base, EndTime: base.Add(time.Hour)})
	require.NoError(t, err)

	// prime the detail entry
	_, err = f.calendars.GetEvent(ctx, userID, ev.ID)
	require.NoError(t, err)

	title := "Renamed"
	end := base.Add(-time.Hour)
	_, err = f.calendars.UpdateEvent(ctx, userID, ev.ID, UpdateEventRequest{Title: &title, EndTime: &end})
	assert.ErrorIs(t, err, scheduling.ErrInvalidTimeRange)

	cached, ok := query.Peek[EventResponse](ctx, f.cache, userID, query.DetailKey(query.ResourceEvents, ev.ID))
	require.True(t, ok)
	assert.Equal(t, "Sync", cached.Title)

	updated, err := f.calendars.UpdateEvent(ctx, userID, ev.ID, UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	got, err := f.calendars.GetEvent(ctx, userID, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestBookingService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	start := time.Date(2024, 5, 7, 14, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("150")

	booking, err := f.bookings.CreateBooking(ctx, userID, CreateBookingRequest{
		ClientName:  "Dana",
		ClientEmail: "dana@example.test",
		Service:     "Consultation",
		StartTime:   start,
		EndTime:     start.Add(90 * time.Minute),
		Price:       &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", booking.Status)

	confirmed, err := f.bookings.ConfirmBooking(ctx, userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	_, err = f.bookings.TransitionBooking(ctx, userID, booking.ID, scheduling.BookingStatusPending)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	got, err := f.bookings.GetBooking(ctx, userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)

	_, err = f.bookings.CancelBooking(ctx, userID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{scheduling.BookingConfirmedEventType, scheduling.BookingCancelledEventType}, f.handler.HandledTypes())

	page, err := f.bookings.ListBookings(ctx, userID, BookingListFilter{Status: []string{"cancelled"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.Total)

	require.NoError(t, f.bookings.DeleteBooking(ctx, userID, booking.ID))
	_, err = f.bookings.GetBooking(ctx, userID, booking.ID)
	assert.ErrorIs(t, err, scheduling.ErrBookingNotFound)
}

func TestCalendarService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	start := time.Date(2024, 5, 7, 14, 0, 0, 0, time.UTC)

	for i, status := range []scheduling.BookingStatus{scheduling.BookingStatusConfirmed, scheduling.BookingStatusPending} {
		price := decimal.NewFromInt(int64(100 * (i + 1)))
		b, err := f.bookings.CreateBooking(ctx, userID, CreateBookingRequest{
			ClientName: "Client",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Price:      &price,
		})
		require.NoError(t, err)
		if status != scheduling.BookingStatusPending {
			_, err = f.bookings.TransitionBooking(ctx, userID, b.ID, status)
			require.NoError(t, err)
		}
	}

	stats, err := f.calendars.GetCalendarStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBookings)
	assert.Equal(t, 1, stats.ConfirmedBookings)
	assert.Equal(t, 1, stats.PendingBookings)
	assert.True(t, stats.BookingRevenue.Equal(decimal.NewFromInt(100)))
	assert.True(t, stats.AverageDurationMinutes.Equal(decimal.NewFromInt(60)))

	// a booking write drops the cached stats
	_, ok := query.Peek[scheduling.CalendarStats](ctx, f.cache, userID, query.StatsKey(query.ResourceCalendars))
	require.True(t, ok)
	_, err = f.bookings.CreateBooking(ctx, userID, CreateBookingRequest{ClientName: "Later", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)
	_, ok = query.Peek[scheduling.CalendarStats](ctx, f.cache, userID, query.StatsKey(query.ResourceCalendars))
	assert.False(t, ok)
}

func TestSchedulingServices_RequireUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.calendars.ListCalendars(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.calendars.ListEvents(ctx, uuid.Nil, EventListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.calendars.GetCalendarStats(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.bookings.ListBookings(ctx, uuid.Nil, BookingListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.bookings.ConfirmBooking(ctx, uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.Zero(t, f.store.Stats().Entries)
}
