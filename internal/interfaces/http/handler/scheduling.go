package handler

import (
	schedulingapp "github.com/agencydesk/backend/internal/application/scheduling"
	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// SchedulingHandler serves /calendars, /events and /bookings
type SchedulingHandler struct {
	BaseHandler
	calendars *schedulingapp.CalendarService
	bookings  *schedulingapp.BookingService
}

// NewSchedulingHandler creates a SchedulingHandler
func NewSchedulingHandler(calendars *schedulingapp.CalendarService, bookings *schedulingapp.BookingService) *SchedulingHandler {
	return &SchedulingHandler{calendars: calendars, bookings: bookings}
}

// RegisterRoutes mounts the calendar, event and booking routes
func (h *SchedulingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/calendars").
		GET("", h.ListCalendars).
		GET("/stats", h.CalendarStats).
		GET("/:id", h.GetCalendar).
		POST("", h.CreateCalendar).
		PUT("/:id", h.UpdateCalendar).
		DELETE("/:id", h.DeleteCalendar).
		RegisterRoutes(rg)

	router.NewDomainGroup("/events").
		GET("", h.ListEvents).
		GET("/:id", h.GetEvent).
		POST("", h.CreateEvent).
		PUT("/:id", h.UpdateEvent).
		DELETE("/:id", h.DeleteEvent).
		RegisterRoutes(rg)

	router.NewDomainGroup("/bookings").
		GET("", h.ListBookings).
		GET("/:id", h.GetBooking).
		POST("", h.CreateBooking).
		PUT("/:id", h.UpdateBooking).
		PATCH("/:id/status", h.TransitionBooking).
		POST("/:id/confirm", h.ConfirmBooking).
		POST("/:id/cancel", h.CancelBooking).
		DELETE("/:id", h.DeleteBooking).
		RegisterRoutes(rg)
}

// ListCalendars returns every calendar of the user
func (h *SchedulingHandler) ListCalendars(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	calendars, err := h.calendars.ListCalendars(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calendars)
}

// GetCalendar returns one calendar
func (h *SchedulingHandler) GetCalendar(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "calendar")
	if !ok {
		return
	}

	calendar, err := h.calendars.GetCalendar(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calendar)
}

// CreateCalendar adds a calendar
func (h *SchedulingHandler) CreateCalendar(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req schedulingapp.CreateCalendarRequest
	if !h.bindJSON(c, &req) {
		return
	}

	calendar, err := h.calendars.CreateCalendar(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, calendar)
}

// UpdateCalendar applies a partial update
func (h *SchedulingHandler) UpdateCalendar(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "calendar")
	if !ok {
		return
	}
	var req schedulingapp.UpdateCalendarRequest
	if !h.bindJSON(c, &req) {
		return
	}

	calendar, err := h.calendars.UpdateCalendar(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, calendar)
}

// DeleteCalendar removes a calendar
func (h *SchedulingHandler) DeleteCalendar(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "calendar")
	if !ok {
		return
	}

	if err := h.calendars.DeleteCalendar(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CalendarStats returns event and booking counts
func (h *SchedulingHandler) CalendarStats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.calendars.GetCalendarStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListEvents returns a page of events
func (h *SchedulingHandler) ListEvents(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter schedulingapp.EventListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.calendars.ListEvents(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetEvent returns one event
func (h *SchedulingHandler) GetEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "event")
	if !ok {
		return
	}

	event, err := h.calendars.GetEvent(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, event)
}

// CreateEvent adds an event
func (h *SchedulingHandler) CreateEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req schedulingapp.CreateEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	event, err := h.calendars.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, event)
}

// UpdateEvent applies a partial update
func (h *SchedulingHandler) UpdateEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "event")
	if !ok {
		return
	}
	var req schedulingapp.UpdateEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	event, err := h.calendars.UpdateEvent(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, event)
}

// DeleteEvent removes an event
func (h *SchedulingHandler) DeleteEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "event")
	if !ok {
		return
	}

	if err := h.calendars.DeleteEvent(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListBookings returns a page of bookings
func (h *SchedulingHandler) ListBookings(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter schedulingapp.BookingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.bookings.ListBookings(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetBooking returns one booking
func (h *SchedulingHandler) GetBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, booking)
}

// CreateBooking adds a pending booking
func (h *SchedulingHandler) CreateBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req schedulingapp.CreateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, booking)
}

// UpdateBooking applies a partial update
func (h *SchedulingHandler) UpdateBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}
	var req schedulingapp.UpdateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.UpdateBooking(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, booking)
}

// TransitionBooking moves a booking to an explicit status
func (h *SchedulingHandler) TransitionBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}
	var req schedulingapp.TransitionBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.TransitionBooking(c.Request.Context(), userID, id, scheduling.BookingStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, booking)
}

// ConfirmBooking confirms a pending booking
func (h *SchedulingHandler) ConfirmBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookings.ConfirmBooking(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, booking)
}

// CancelBooking cancels a booking
func (h *SchedulingHandler) CancelBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookings.CancelBooking(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, booking)
}

// DeleteBooking removes a booking
func (h *SchedulingHandler) DeleteBooking(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "booking")
	if !ok {
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
