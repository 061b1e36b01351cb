package scheduling

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrCalendarNotFound = shared.NewNotFoundError("Calendar")
	ErrEventNotFound    = shared.NewNotFoundError("Event")
	ErrBookingNotFound  = shared.NewNotFoundError("Booking")
	ErrInvalidTimeRange = shared.NewDomainError("INVALID_TIME_RANGE", "End time must be after start time")
)

// Calendar groups events and bookings
type Calendar struct {
	shared.OwnedEntity
	Name        string
	Color       string
	Description string
	IsDefault   bool
	Timezone    string
}

// NewCalendar creates a calendar; timezone defaults to UTC
func NewCalendar(userID uuid.UUID, name, timezone string) (*Calendar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Calendar name cannot be empty")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, shared.NewDomainError("INVALID_TIMEZONE", "Unknown timezone: "+timezone)
	}
	return &Calendar{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Name:        name,
		Color:       "#3b82f6",
		Timezone:    timezone,
	}, nil
}

// CalendarUpdate is a partial update; nil fields are left unchanged
type CalendarUpdate struct {
	Name        *string
	Color       *string
	Description *string
	IsDefault   *bool
	Timezone    *string
}

// Apply merges the update into the calendar
func (c *Calendar) Apply(u CalendarUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Calendar name cannot be empty")
		}
		c.Name = name
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil {
			return shared.NewDomainError("INVALID_TIMEZONE", "Unknown timezone: "+*u.Timezone)
		}
		c.Timezone = *u.Timezone
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.IsDefault != nil {
		c.IsDefault = *u.IsDefault
	}
	c.Touch()
	return nil
}
