package scheduling

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventType classifies calendar events
type EventType string

const (
	EventTypeMeeting  EventType = "meeting"
	EventTypeCall     EventType = "call"
	EventTypeDeadline EventType = "deadline"
	EventTypeReminder EventType = "reminder"
	EventTypeOther    EventType = "other"
)

// IsValid checks if the type is a known value
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeMeeting, EventTypeCall, EventTypeDeadline, EventTypeReminder, EventTypeOther:
		return true
	}
	return false
}

// CalendarEvent is an entry on a calendar
type CalendarEvent struct {
	shared.OwnedEntity
	CalendarID  *uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	Location    string
	EventType   EventType
	Attendees   shared.StringList
	ClientID    *uuid.UUID
	ProjectID   *uuid.UUID
	IsCancelled bool
}

// NewCalendarEvent creates an event; end must be after start
func NewCalendarEvent(userID uuid.UUID, title string, start, end time.Time, eventType EventType) (*CalendarEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Event title cannot be empty")
	}
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	if eventType == "" {
		eventType = EventTypeMeeting
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Invalid event type")
	}
	return &CalendarEvent{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Title:       title,
		StartTime:   start,
		EndTime:     end,
		EventType:   eventType,
		Attendees:   shared.StringList{},
	}, nil
}

// Duration returns the event length
func (e *CalendarEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// EventUpdate is a partial update; nil fields are left unchanged
type EventUpdate struct {
	CalendarID  *uuid.UUID
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
	Location    *string
	EventType   *EventType
	Attendees   []string
	ClientID    *uuid.UUID
	ProjectID   *uuid.UUID
	IsCancelled *bool
}

// Apply merges the update into the event
func (e *CalendarEvent) Apply(u EventUpdate) error {
	start, end := e.StartTime, e.EndTime
	if u.StartTime != nil {
		start = *u.StartTime
	}
	if u.EndTime != nil {
		end = *u.EndTime
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return shared.NewDomainError("INVALID_TITLE", "Event title cannot be empty")
		}
		e.Title = title
	}
	if u.EventType != nil {
		if !u.EventType.IsValid() {
			return shared.NewDomainError("INVALID_EVENT_TYPE", "Invalid event type")
		}
		e.EventType = *u.EventType
	}
	e.StartTime, e.EndTime = start, end
	if u.CalendarID != nil {
		e.CalendarID = u.CalendarID
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.AllDay != nil {
		e.AllDay = *u.AllDay
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Attendees != nil {
		e.Attendees = shared.StringList(u.Attendees)
	}
	if u.ClientID != nil {
		e.ClientID = u.ClientID
	}
	if u.ProjectID != nil {
		e.ProjectID = u.ProjectID
	}
	if u.IsCancelled != nil {
		e.IsCancelled = *u.IsCancelled
	}
	e.Touch()
	return nil
}

// EventFilter narrows event list queries to a time window.
// Events match when start_time >= From and end_time <= To.
type EventFilter struct {
	shared.Filter
	From             *time.Time
	To               *time.Time
	CalendarIDs      []uuid.UUID
	EventTypes       []EventType
	IncludeCancelled bool
}
