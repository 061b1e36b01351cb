package scheduling

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Calendar DTOs
// =============================================================================

// CreateCalendarRequest represents a request to create a calendar
type CreateCalendarRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Color       string `json:"color" binding:"omitempty,max=20"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
	Timezone    string `json:"timezone" binding:"max=64"`
}

// UpdateCalendarRequest represents a partial calendar update
type UpdateCalendarRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
	Description *string `json:"description"`
	IsDefault   *bool   `json:"is_default"`
	Timezone    *string `json:"timezone" binding:"omitempty,max=64"`
}

// CalendarResponse represents a calendar in API responses
type CalendarResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"is_default"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCalendarResponse converts a domain Calendar to CalendarResponse
func ToCalendarResponse(c *scheduling.Calendar) CalendarResponse {
	return CalendarResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Color:       c.Color,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		Timezone:    c.Timezone,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// =============================================================================
// Event DTOs
// =============================================================================

// CreateEventRequest represents a request to create a calendar event
type CreateEventRequest struct {
	CalendarID  *uuid.UUID `json:"calendar_id"`
	Title       string     `json:"title" binding:"required,min=1,max=300"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     time.Time  `json:"end_time" binding:"required"`
	AllDay      bool       `json:"all_day"`
	Location    string     `json:"location" binding:"max=300"`
	EventType   string     `json:"event_type" binding:"omitempty,oneof=meeting call deadline reminder other"`
	Attendees   []string   `json:"attendees"`
	ClientID    *uuid.UUID `json:"client_id"`
	ProjectID   *uuid.UUID `json:"project_id"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	CalendarID  *uuid.UUID `json:"calendar_id"`
	Title       *string    `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      *bool      `json:"all_day"`
	Location    *string    `json:"location" binding:"omitempty,max=300"`
	EventType   *string    `json:"event_type" binding:"omitempty,oneof=meeting call deadline reminder other"`
	Attendees   []string   `json:"attendees"`
	ClientID    *uuid.UUID `json:"client_id"`
	ProjectID   *uuid.UUID `json:"project_id"`
	IsCancelled *bool      `json:"is_cancelled"`
}

// ToDomain converts the request into a domain update
func (r UpdateEventRequest) ToDomain() scheduling.EventUpdate {
	u := scheduling.EventUpdate{
		CalendarID:  r.CalendarID,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		AllDay:      r.AllDay,
		Location:    r.Location,
		Attendees:   r.Attendees,
		ClientID:    r.ClientID,
		ProjectID:   r.ProjectID,
		IsCancelled: r.IsCancelled,
	}
	if r.EventType != nil {
		t := scheduling.EventType(*r.EventType)
		u.EventType = &t
	}
	return u
}

// predict applies the request to a cached response the way Apply would
func (r UpdateEventRequest) predict(prev EventResponse) EventResponse {
	if r.Title != nil {
		prev.Title = *r.Title
	}
	if r.Description != nil {
		prev.Description = *r.Description
	}
	if r.StartTime != nil {
		prev.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		prev.EndTime = *r.EndTime
	}
	if r.AllDay != nil {
		prev.AllDay = *r.AllDay
	}
	if r.Location != nil {
		prev.Location = *r.Location
	}
	if r.EventType != nil {
		prev.EventType = *r.EventType
	}
	if r.Attendees != nil {
		prev.Attendees = r.Attendees
	}
	if r.CalendarID != nil {
		prev.CalendarID = r.CalendarID
	}
	if r.IsCancelled != nil {
		prev.IsCancelled = *r.IsCancelled
	}
	return prev
}

// EventListFilter represents the query string of an event list
type EventListFilter struct {
	Page             int         `form:"page"`
	PageSize         int         `form:"page_size"`
	OrderBy          string      `form:"order_by"`
	OrderDir         string      `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search           string      `form:"search"`
	From             *time.Time  `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To               *time.Time  `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	CalendarIDs      []uuid.UUID `form:"calendar_id"`
	EventTypes       []string    `form:"event_type"`
	IncludeCancelled bool        `form:"include_cancelled"`
}

// ToDomain converts the list filter into the repository filter. Events
// default to chronological order.
func (f EventListFilter) ToDomain() scheduling.EventFilter {
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "start_time", "asc"
	}
	types := make([]scheduling.EventType, 0, len(f.EventTypes))
	for _, t := range f.EventTypes {
		types = append(types, scheduling.EventType(t))
	}
	return scheduling.EventFilter{
		Filter:           pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search),
		From:             f.From,
		To:               f.To,
		CalendarIDs:      f.CalendarIDs,
		EventTypes:       types,
		IncludeCancelled: f.IncludeCancelled,
	}
}

// EventResponse represents a calendar event in API responses
type EventResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CalendarID  *uuid.UUID `json:"calendar_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	AllDay      bool       `json:"all_day"`
	Location    string     `json:"location"`
	EventType   string     `json:"event_type"`
	Attendees   []string   `json:"attendees"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	IsCancelled bool       `json:"is_cancelled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToEventResponse converts a domain CalendarEvent to EventResponse
func ToEventResponse(e *scheduling.CalendarEvent) EventResponse {
	attendees := []string(e.Attendees)
	if attendees == nil {
		attendees = []string{}
	}
	return EventResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		CalendarID:  e.CalendarID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		AllDay:      e.AllDay,
		Location:    e.Location,
		EventType:   string(e.EventType),
		Attendees:   attendees,
		ClientID:    e.ClientID,
		ProjectID:   e.ProjectID,
		IsCancelled: e.IsCancelled,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToEventResponses converts a slice of events
func ToEventResponses(events []scheduling.CalendarEvent) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = ToEventResponse(&events[i])
	}
	return out
}

// =============================================================================
// Booking DTOs
// =============================================================================

// CreateBookingRequest represents a request to create a booking
type CreateBookingRequest struct {
	CalendarID  *uuid.UUID       `json:"calendar_id"`
	ClientName  string           `json:"client_name" binding:"required,min=1,max=200"`
	ClientEmail string           `json:"client_email" binding:"omitempty,email"`
	Service     string           `json:"service" binding:"max=200"`
	StartTime   time.Time        `json:"start_time" binding:"required"`
	EndTime     time.Time        `json:"end_time" binding:"required"`
	Notes       string           `json:"notes"`
	Price       *decimal.Decimal `json:"price"`
}

// UpdateBookingRequest represents a partial booking update
type UpdateBookingRequest struct {
	CalendarID  *uuid.UUID       `json:"calendar_id"`
	ClientName  *string          `json:"client_name" binding:"omitempty,min=1,max=200"`
	ClientEmail *string          `json:"client_email" binding:"omitempty,email"`
	Service     *string          `json:"service" binding:"omitempty,max=200"`
	StartTime   *time.Time       `json:"start_time"`
	EndTime     *time.Time       `json:"end_time"`
	Notes       *string          `json:"notes"`
	Price       *decimal.Decimal `json:"price"`
}

// ToDomain converts the request into a domain update
func (r UpdateBookingRequest) ToDomain() scheduling.BookingUpdate {
	return scheduling.BookingUpdate{
		CalendarID:  r.CalendarID,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		Service:     r.Service,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Notes:       r.Notes,
		Price:       r.Price,
	}
}

// TransitionBookingRequest represents a booking status change
type TransitionBookingRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed cancelled no_show"`
}

// BookingListFilter represents the query string of a booking list
type BookingListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	Status     []string   `form:"status"`
	CalendarID *uuid.UUID `form:"calendar_id"`
	StartFrom  *time.Time `form:"start_from" time_format:"2006-01-02"`
	StartTo    *time.Time `form:"start_to" time_format:"2006-01-02"`
}

// ToDomain converts the list filter into the repository filter
func (f BookingListFilter) ToDomain() scheduling.BookingFilter {
	statuses := make([]scheduling.BookingStatus, 0, len(f.Status))
	for _, s := range f.Status {
		statuses = append(statuses, scheduling.BookingStatus(s))
	}
	return scheduling.BookingFilter{
		Filter:     pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search),
		Statuses:   statuses,
		CalendarID: f.CalendarID,
		Start:      shared.DateRange{From: f.StartFrom, To: f.StartTo},
	}
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	CalendarID  *uuid.UUID      `json:"calendar_id,omitempty"`
	ClientName  string          `json:"client_name"`
	ClientEmail string          `json:"client_email"`
	Service     string          `json:"service"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToBookingResponse converts a domain Booking to BookingResponse
func ToBookingResponse(b *scheduling.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		CalendarID:  b.CalendarID,
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		Service:     b.Service,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		Notes:       b.Notes,
		Price:       b.Price,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToBookingResponses converts a slice of bookings
func ToBookingResponses(bookings []scheduling.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = ToBookingResponse(&bookings[i])
	}
	return out
}

func pageFilter(page, size int, orderBy, orderDir, search string) shared.Filter {
	return shared.Filter{
		Page:     page,
		PageSize: size,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
	}.Normalize()
}
