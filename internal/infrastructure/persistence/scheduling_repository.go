package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCalendarRepository implements scheduling.CalendarRepository using GORM
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GormCalendarRepository
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// FindByID finds a calendar of userID by its ID
func (r *GormCalendarRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*scheduling.Calendar, error) {
	model, err := findOne[models.CalendarModel](owned(ctx, r.db, &models.CalendarModel{}, userID).Where("id = ?", id), scheduling.ErrCalendarNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListAll returns the user's calendars, default first
func (r *GormCalendarRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]scheduling.Calendar, error) {
	var rows []models.CalendarModel
	err := owned(ctx, r.db, &models.CalendarModel{}, userID).
		Order("is_default DESC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.CalendarModel).ToDomain), nil
}

// Save creates or updates a calendar
func (r *GormCalendarRepository) Save(ctx context.Context, calendar *scheduling.Calendar) error {
	return r.db.WithContext(ctx).Save(models.CalendarModelFromDomain(calendar)).Error
}

// Delete permanently removes a calendar
func (r *GormCalendarRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.CalendarModel{}, userID, id, scheduling.ErrCalendarNotFound)
}

// ClearDefault unsets is_default on every calendar of the user except keep
func (r *GormCalendarRepository) ClearDefault(ctx context.Context, userID, keep uuid.UUID) error {
	return owned(ctx, r.db, &models.CalendarModel{}, userID).
		Where("id <> ? AND is_default = ?", keep, true).
		Update("is_default", false).Error
}

var _ scheduling.CalendarRepository = (*GormCalendarRepository)(nil)

// GormEventRepository implements scheduling.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// FindByID finds an event of userID by its ID
func (r *GormEventRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*scheduling.CalendarEvent, error) {
	model, err := findOne[models.CalendarEventModel](owned(ctx, r.db, &models.CalendarEventModel{}, userID).Where("id = ?", id), scheduling.ErrEventNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of events inside the filter window, by start time unless
// another order is requested.
func (r *GormEventRepository) List(ctx context.Context, userID uuid.UUID, filter scheduling.EventFilter) (shared.PageResult[scheduling.CalendarEvent], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.CalendarEventModel{}, userID), filter)
	page := filter.Filter
	if page.OrderBy == "" {
		page.OrderBy = "start_time"
		page.OrderDir = "asc"
	}
	result, err := findPage[models.CalendarEventModel](query, page, EventSortFields)
	if err != nil {
		return shared.PageResult[scheduling.CalendarEvent]{}, err
	}
	return toDomainPage(result, (*models.CalendarEventModel).ToDomain), nil
}

// ListAll returns every event of the user
func (r *GormEventRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]scheduling.CalendarEvent, error) {
	var rows []models.CalendarEventModel
	if err := owned(ctx, r.db, &models.CalendarEventModel{}, userID).Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.CalendarEventModel).ToDomain), nil
}

// Save creates or updates an event
func (r *GormEventRepository) Save(ctx context.Context, event *scheduling.CalendarEvent) error {
	return r.db.WithContext(ctx).Save(models.CalendarEventModelFromDomain(event)).Error
}

// Delete permanently removes an event
func (r *GormEventRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.CalendarEventModel{}, userID, id, scheduling.ErrEventNotFound)
}

func (r *GormEventRepository) applyFilter(query *gorm.DB, filter scheduling.EventFilter) *gorm.DB {
	if !filter.IncludeCancelled {
		query = query.Where("is_cancelled = ?", false)
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("end_time <= ?", *filter.To)
	}
	query = applySearch(query, filter.Search, "title", "description", "location")
	query = applyIn(query, "calendar_id", filter.CalendarIDs)
	return applyIn(query, "event_type", filter.EventTypes)
}

var _ scheduling.EventRepository = (*GormEventRepository)(nil)

// GormBookingRepository implements scheduling.BookingRepository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID finds a booking of userID by its ID
func (r *GormBookingRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*scheduling.Booking, error) {
	model, err := findOne[models.BookingModel](owned(ctx, r.db, &models.BookingModel{}, userID).Where("id = ?", id), scheduling.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's bookings matching filter
func (r *GormBookingRepository) List(ctx context.Context, userID uuid.UUID, filter scheduling.BookingFilter) (shared.PageResult[scheduling.Booking], error) {
	query := owned(ctx, r.db, &models.BookingModel{}, userID)
	query = applySearch(query, filter.Search, "client_name", "client_email", "service")
	query = applyIn(query, "status", filter.Statuses)
	if filter.CalendarID != nil {
		query = query.Where("calendar_id = ?", *filter.CalendarID)
	}
	query = applyDateRange(query, "start_time", filter.Start)

	result, err := findPage[models.BookingModel](query, filter.Filter, BookingSortFields)
	if err != nil {
		return shared.PageResult[scheduling.Booking]{}, err
	}
	return toDomainPage(result, (*models.BookingModel).ToDomain), nil
}

// ListAll returns every booking of the user
func (r *GormBookingRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]scheduling.Booking, error) {
	var rows []models.BookingModel
	if err := owned(ctx, r.db, &models.BookingModel{}, userID).Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.BookingModel).ToDomain), nil
}

// Save creates or updates a booking
func (r *GormBookingRepository) Save(ctx context.Context, booking *scheduling.Booking) error {
	return r.db.WithContext(ctx).Save(models.BookingModelFromDomain(booking)).Error
}

// Delete permanently removes a booking
func (r *GormBookingRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.BookingModel{}, userID, id, scheduling.ErrBookingNotFound)
}

var _ scheduling.BookingRepository = (*GormBookingRepository)(nil)
