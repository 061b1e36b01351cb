package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CalendarService handles calendars, their events and calendar statistics
type CalendarService struct {
	calendars scheduling.CalendarRepository
	events    scheduling.EventRepository
	bookings  scheduling.BookingRepository
	cache     *query.Client
	now       func() time.Time
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(calendars scheduling.CalendarRepository, events scheduling.EventRepository, bookings scheduling.BookingRepository, cache *query.Client) *CalendarService {
	return &CalendarService{
		calendars: calendars,
		events:    events,
		bookings:  bookings,
		cache:     cache,
		now:       time.Now,
	}
}

// ListCalendars returns all of the user's calendars
func (s *CalendarService) ListCalendars(ctx context.Context, userID uuid.UUID) ([]CalendarResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	return query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceCalendars, query.SegmentList), query.TierUserData, func(ctx context.Context) ([]CalendarResponse, error) {
		calendars, err := s.calendars.ListAll(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list calendars: %w", err)
		}
		out := make([]CalendarResponse, len(calendars))
		for i := range calendars {
			out[i] = ToCalendarResponse(&calendars[i])
		}
		return out, nil
	})
}

// GetCalendar returns a calendar by id
func (s *CalendarService) GetCalendar(ctx context.Context, userID, id uuid.UUID) (*CalendarResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	calendar, err := s.calendars.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	response := ToCalendarResponse(calendar)
	return &response, nil
}

// CreateCalendar creates a calendar. A default calendar clears the flag on the others.
func (s *CalendarService) CreateCalendar(ctx context.Context, userID uuid.UUID, req CreateCalendarRequest) (*CalendarResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	calendar, err := scheduling.NewCalendar(userID, req.Name, req.Timezone)
	if err != nil {
		return nil, err
	}
	update := scheduling.CalendarUpdate{Description: &req.Description, IsDefault: &req.IsDefault}
	if req.Color != "" {
		update.Color = &req.Color
	}
	if err := calendar.Apply(update); err != nil {
		return nil, err
	}
	return s.saveCalendar(ctx, calendar)
}

// UpdateCalendar applies a partial update
func (s *CalendarService) UpdateCalendar(ctx context.Context, userID, id uuid.UUID, req UpdateCalendarRequest) (*CalendarResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	calendar, err := s.calendars.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := calendar.Apply(scheduling.CalendarUpdate{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		Timezone:    req.Timezone,
	}); err != nil {
		return nil, err
	}
	return s.saveCalendar(ctx, calendar)
}

// DeleteCalendar deletes a calendar; its events and bookings lose the reference
func (s *CalendarService) DeleteCalendar(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.calendars.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceCalendars)
	return nil
}

func (s *CalendarService) saveCalendar(ctx context.Context, calendar *scheduling.Calendar) (*CalendarResponse, error) {
	if err := s.calendars.Save(ctx, calendar); err != nil {
		return nil, fmt.Errorf("save calendar: %w", err)
	}
	if calendar.IsDefault {
		if err := s.calendars.ClearDefault(ctx, calendar.UserID, calendar.ID); err != nil {
			return nil, fmt.Errorf("clear default calendar: %w", err)
		}
	}
	s.cache.InvalidateResource(ctx, calendar.UserID, query.ResourceCalendars)
	response := ToCalendarResponse(calendar)
	return &response, nil
}

// ListEvents returns events inside the filter window
func (s *CalendarService) ListEvents(ctx context.Context, userID uuid.UUID, filter EventListFilter) (shared.Paginated[EventResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[EventResponse]{}, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return shared.Paginated[EventResponse]{}, scheduling.ErrInvalidTimeRange
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceEvents, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[EventResponse], error) {
		page, err := s.events.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[EventResponse]{}, fmt.Errorf("list events: %w", err)
		}
		return shared.MapPage(page, ToEventResponses).ToPaginated(), nil
	})
}

// GetEvent returns an event by id
func (s *CalendarService) GetEvent(ctx context.Context, userID, id uuid.UUID) (*EventResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceEvents, id), query.TierUserData, func(ctx context.Context) (EventResponse, error) {
		ev, err := s.events.FindByID(ctx, userID, id)
		if err != nil {
			return EventResponse{}, err
		}
		return ToEventResponse(ev), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateEvent creates an event; the calendar must belong to the user
func (s *CalendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if req.CalendarID != nil {
		if _, err := s.calendars.FindByID(ctx, userID, *req.CalendarID); err != nil {
			return nil, err
		}
	}
	ev, err := scheduling.NewCalendarEvent(userID, req.Title, req.StartTime, req.EndTime, scheduling.EventType(req.EventType))
	if err != nil {
		return nil, err
	}
	if err := ev.Apply(scheduling.EventUpdate{
		CalendarID:  req.CalendarID,
		Description: &req.Description,
		AllDay:      &req.AllDay,
		Location:    &req.Location,
		Attendees:   req.Attendees,
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
	}); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceEvents)
	response := ToEventResponse(ev)
	return &response, nil
}

// UpdateEvent applies a partial update optimistically on the cached event
func (s *CalendarService) UpdateEvent(ctx context.Context, userID, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Run(ctx, s.cache, userID, query.ResourceEvents, query.DetailKey(query.ResourceEvents, id), query.TierUserData, req.predict,
		func(ctx context.Context) (EventResponse, error) {
			ev, err := s.events.FindByID(ctx, userID, id)
			if err != nil {
				return EventResponse{}, err
			}
			if err := ev.Apply(req.ToDomain()); err != nil {
				return EventResponse{}, err
			}
			if err := s.events.Save(ctx, ev); err != nil {
				return EventResponse{}, fmt.Errorf("update event: %w", err)
			}
			return ToEventResponse(ev), nil
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteEvent deletes an event
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceEvents)
	return nil
}

// GetCalendarStats derives event and booking statistics. Both sets load concurrently.
func (s *CalendarService) GetCalendarStats(ctx context.Context, userID uuid.UUID) (*scheduling.CalendarStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceCalendars), query.TierUserData, func(ctx context.Context) (scheduling.CalendarStats, error) {
		var (
			events   []scheduling.CalendarEvent
			bookings []scheduling.Booking
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			events, err = s.events.ListAll(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			bookings, err = s.bookings.ListAll(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return scheduling.CalendarStats{}, fmt.Errorf("load calendar data: %w", err)
		}
		return scheduling.ComputeCalendarStats(events, bookings, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
