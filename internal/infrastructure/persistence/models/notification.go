package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for notification.Notification
type NotificationModel struct {
	OwnedModel
	Title      string                `gorm:"type:varchar(200);not null"`
	Message    string                `gorm:"type:text"`
	Type       notification.Type     `gorm:"type:varchar(20);not null;default:'info'"`
	Category   notification.Category `gorm:"type:varchar(20);not null;default:'system';index"`
	IsRead     bool                  `gorm:"not null;default:false;index"`
	ReadAt     *time.Time
	ActionURL  string `gorm:"type:varchar(500)"`
	IsArchived bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		OwnedEntity: m.ToOwned(),
		Title:       m.Title,
		Message:     m.Message,
		Type:        m.Type,
		Category:    m.Category,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		ActionURL:   m.ActionURL,
		IsArchived:  m.IsArchived,
	}
}

// NotificationModelFromDomain creates a model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		Category:   n.Category,
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		ActionURL:  n.ActionURL,
		IsArchived: n.IsArchived,
	}
	m.FromOwned(n.OwnedEntity)
	return m
}

// NotificationPreferencesModel stores one preferences row per user
type NotificationPreferencesModel struct {
	UserID          uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	EmailEnabled    bool                         `gorm:"not null;default:true"`
	PushEnabled     bool                         `gorm:"not null;default:false"`
	InAppEnabled    bool                         `gorm:"not null;default:true"`
	Categories      notification.CategoryToggles `gorm:"type:jsonb"`
	QuietHoursStart string                       `gorm:"type:varchar(5)"`
	QuietHoursEnd   string                       `gorm:"type:varchar(5)"`
	Timezone        string                       `gorm:"type:varchar(64);not null;default:'UTC'"`
	UpdatedAt       time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationPreferencesModel) TableName() string {
	return "notification_preferences"
}

// ToDomain converts the model to domain Preferences
func (m *NotificationPreferencesModel) ToDomain() *notification.Preferences {
	return &notification.Preferences{
		UserID:          m.UserID,
		EmailEnabled:    m.EmailEnabled,
		PushEnabled:     m.PushEnabled,
		InAppEnabled:    m.InAppEnabled,
		Categories:      m.Categories,
		QuietHoursStart: m.QuietHoursStart,
		QuietHoursEnd:   m.QuietHoursEnd,
		Timezone:        m.Timezone,
		UpdatedAt:       m.UpdatedAt,
	}
}

// NotificationPreferencesModelFromDomain creates a model from domain Preferences
func NotificationPreferencesModelFromDomain(p *notification.Preferences) *NotificationPreferencesModel {
	return &NotificationPreferencesModel{
		UserID:          p.UserID,
		EmailEnabled:    p.EmailEnabled,
		PushEnabled:     p.PushEnabled,
		InAppEnabled:    p.InAppEnabled,
		Categories:      p.Categories,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
		UpdatedAt:       p.UpdatedAt,
	}
}
