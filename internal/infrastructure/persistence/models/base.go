package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnedModel provides the persistence fields every user-owned row has.
// It maps to the domain's OwnedEntity.
type OwnedModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToOwned converts OwnedModel to the domain OwnedEntity
func (m *OwnedModel) ToOwned() shared.OwnedEntity {
	return shared.OwnedEntity{
		ID:        m.ID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromOwned populates OwnedModel from a domain OwnedEntity
func (m *OwnedModel) FromOwned(e shared.OwnedEntity) {
	m.ID = e.ID
	m.UserID = e.UserID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// ToAggregate rebuilds an aggregate root base with no pending events
func (m *OwnedModel) ToAggregate() shared.BaseAggregateRoot {
	return shared.NewBaseAggregateRoot(m.ToOwned())
}

// All returns every model for AutoMigrate in tests
func All() []interface{} {
	return []interface{}{
		&ClientModel{},
		&ProjectModel{},
		&TaskModel{},
		&InvoiceModel{},
		&CalendarModel{},
		&CalendarEventModel{},
		&BookingModel{},
		&FolderModel{},
		&FileModel{},
		&ConversationModel{},
		&ParticipantModel{},
		&MessageModel{},
		&NotificationModel{},
		&NotificationPreferencesModel{},
		&FinancialRecordModel{},
		&BankTransactionModel{},
		&LeadModel{},
		&CampaignModel{},
		&UserSettingModel{},
	}
}
