package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalendarModel is the persistence model for scheduling.Calendar
type CalendarModel struct {
	OwnedModel
	Name        string `gorm:"type:varchar(100);not null"`
	Color       string `gorm:"type:varchar(20)"`
	Description string `gorm:"type:text"`
	IsDefault   bool   `gorm:"not null;default:false"`
	Timezone    string `gorm:"type:varchar(64);not null;default:'UTC'"`
}

// TableName returns the table name for GORM
func (CalendarModel) TableName() string {
	return "calendars"
}

// ToDomain converts the model to a domain Calendar
func (m *CalendarModel) ToDomain() *scheduling.Calendar {
	return &scheduling.Calendar{
		OwnedEntity: m.ToOwned(),
		Name:        m.Name,
		Color:       m.Color,
		Description: m.Description,
		IsDefault:   m.IsDefault,
		Timezone:    m.Timezone,
	}
}

// CalendarModelFromDomain creates a model from a domain Calendar
func CalendarModelFromDomain(c *scheduling.Calendar) *CalendarModel {
	m := &CalendarModel{
		Name:        c.Name,
		Color:       c.Color,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		Timezone:    c.Timezone,
	}
	m.FromOwned(c.OwnedEntity)
	return m
}

// CalendarEventModel is the persistence model for scheduling.CalendarEvent
type CalendarEventModel struct {
	OwnedModel
	CalendarID  *uuid.UUID           `gorm:"type:uuid;index"`
	Title       string               `gorm:"type:varchar(300);not null"`
	Description string               `gorm:"type:text"`
	StartTime   time.Time            `gorm:"not null;index"`
	EndTime     time.Time            `gorm:"not null"`
	AllDay      bool                 `gorm:"not null;default:false"`
	Location    string               `gorm:"type:varchar(300)"`
	EventType   scheduling.EventType `gorm:"type:varchar(20);not null;default:'meeting'"`
	Attendees   shared.StringList    `gorm:"type:jsonb"`
	ClientID    *uuid.UUID           `gorm:"type:uuid"`
	ProjectID   *uuid.UUID           `gorm:"type:uuid"`
	IsCancelled bool                 `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CalendarEventModel) TableName() string {
	return "calendar_events"
}

// ToDomain converts the model to a domain CalendarEvent
func (m *CalendarEventModel) ToDomain() *scheduling.CalendarEvent {
	return &scheduling.CalendarEvent{
		OwnedEntity: m.ToOwned(),
		CalendarID:  m.CalendarID,
		Title:       m.Title,
		Description: m.Description,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		AllDay:      m.AllDay,
		Location:    m.Location,
		EventType:   m.EventType,
		Attendees:   m.Attendees,
		ClientID:    m.ClientID,
		ProjectID:   m.ProjectID,
		IsCancelled: m.IsCancelled,
	}
}

// CalendarEventModelFromDomain creates a model from a domain CalendarEvent
func CalendarEventModelFromDomain(e *scheduling.CalendarEvent) *CalendarEventModel {
	m := &CalendarEventModel{
		CalendarID:  e.CalendarID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		AllDay:      e.AllDay,
		Location:    e.Location,
		EventType:   e.EventType,
		Attendees:   e.Attendees,
		ClientID:    e.ClientID,
		ProjectID:   e.ProjectID,
		IsCancelled: e.IsCancelled,
	}
	m.FromOwned(e.OwnedEntity)
	return m
}

// BookingModel is the persistence model for scheduling.Booking
type BookingModel struct {
	OwnedModel
	CalendarID  *uuid.UUID               `gorm:"type:uuid;index"`
	ClientName  string                   `gorm:"type:varchar(200);not null"`
	ClientEmail string                   `gorm:"type:varchar(200)"`
	Service     string                   `gorm:"type:varchar(200)"`
	StartTime   time.Time                `gorm:"not null;index"`
	EndTime     time.Time                `gorm:"not null"`
	Status      scheduling.BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes       string                   `gorm:"type:text"`
	Price       decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the model to a domain Booking
func (m *BookingModel) ToDomain() *scheduling.Booking {
	return &scheduling.Booking{
		BaseAggregateRoot: m.ToAggregate(),
		CalendarID:        m.CalendarID,
		ClientName:        m.ClientName,
		ClientEmail:       m.ClientEmail,
		Service:           m.Service,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		Status:            m.Status,
		Notes:             m.Notes,
		Price:             m.Price,
	}
}

// BookingModelFromDomain creates a model from a domain Booking
func BookingModelFromDomain(b *scheduling.Booking) *BookingModel {
	m := &BookingModel{
		CalendarID:  b.CalendarID,
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		Service:     b.Service,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		Notes:       b.Notes,
		Price:       b.Price,
	}
	m.FromOwned(b.OwnedEntity)
	return m
}
