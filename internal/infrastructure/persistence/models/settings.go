package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// UserSettingModel stores one JSON value per (user, key).
// Sealed values hold base64 ciphertext wrapped in a JSON string.
type UserSettingModel struct {
	UserID    uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Key       settings.Key `gorm:"column:key;type:varchar(100);primaryKey"`
	Value     string       `gorm:"type:jsonb;not null"`
	Version   int          `gorm:"not null;default:1"`
	Sealed    bool         `gorm:"not null;default:false"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserSettingModel) TableName() string {
	return "user_settings"
}

// ToDomain converts the model to a domain Setting
func (m *UserSettingModel) ToDomain() *settings.Setting {
	return &settings.Setting{
		UserID:    m.UserID,
		Key:       m.Key,
		Value:     []byte(m.Value),
		Version:   m.Version,
		Sealed:    m.Sealed,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserSettingModelFromDomain creates a model from a domain Setting
func UserSettingModelFromDomain(s *settings.Setting) *UserSettingModel {
	return &UserSettingModel{
		UserID:    s.UserID,
		Key:       s.Key,
		Value:     string(s.Value),
		Version:   s.Version,
		Sealed:    s.Sealed,
		UpdatedAt: s.UpdatedAt,
	}
}
