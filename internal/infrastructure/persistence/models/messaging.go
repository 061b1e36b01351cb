package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/messaging"
	"github.com/google/uuid"
)

// ConversationModel is the persistence model for messaging.Conversation.
// UserID holds the creator.
type ConversationModel struct {
	OwnedModel
	Title         string             `gorm:"type:varchar(200)"`
	IsGroup       bool               `gorm:"not null;default:false"`
	LastMessageAt *time.Time         `gorm:"index"`
	Participants  []ParticipantModel `gorm:"foreignKey:ConversationID;references:ID"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts the model to a domain Conversation
func (m *ConversationModel) ToDomain() *messaging.Conversation {
	c := &messaging.Conversation{
		OwnedEntity:   m.ToOwned(),
		Title:         m.Title,
		IsGroup:       m.IsGroup,
		LastMessageAt: m.LastMessageAt,
		Participants:  make([]messaging.Participant, 0, len(m.Participants)),
	}
	for i := range m.Participants {
		c.Participants = append(c.Participants, m.Participants[i].ToDomain())
	}
	return c
}

// ConversationModelFromDomain creates a model from a domain Conversation
func ConversationModelFromDomain(c *messaging.Conversation) *ConversationModel {
	m := &ConversationModel{
		Title:         c.Title,
		IsGroup:       c.IsGroup,
		LastMessageAt: c.LastMessageAt,
		Participants:  make([]ParticipantModel, 0, len(c.Participants)),
	}
	m.FromOwned(c.OwnedEntity)
	for _, p := range c.Participants {
		m.Participants = append(m.Participants, ParticipantModelFromDomain(p))
	}
	return m
}

// ParticipantModel links a user to a conversation
type ParticipantModel struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt       time.Time `gorm:"not null"`
	LastReadAt     *time.Time
}

// TableName returns the table name for GORM
func (ParticipantModel) TableName() string {
	return "conversation_participants"
}

// ToDomain converts the model to a domain Participant
func (m *ParticipantModel) ToDomain() messaging.Participant {
	return messaging.Participant{
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		JoinedAt:       m.JoinedAt,
		LastReadAt:     m.LastReadAt,
	}
}

// ParticipantModelFromDomain creates a model from a domain Participant
func ParticipantModelFromDomain(p messaging.Participant) ParticipantModel {
	return ParticipantModel{
		ConversationID: p.ConversationID,
		UserID:         p.UserID,
		JoinedAt:       p.JoinedAt,
		LastReadAt:     p.LastReadAt,
	}
}

// MessageModel is the persistence model for messaging.Message.
// UserID holds the sender.
type MessageModel struct {
	OwnedModel
	ConversationID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Content        string                `gorm:"type:text"`
	MessageType    messaging.MessageType `gorm:"type:varchar(20);not null;default:'text'"`
	AttachmentURL  string                `gorm:"type:varchar(1000)"`
	IsEdited       bool                  `gorm:"not null;default:false"`
	IsDeleted      bool                  `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the model to a domain Message
func (m *MessageModel) ToDomain() *messaging.Message {
	return &messaging.Message{
		BaseAggregateRoot: m.ToAggregate(),
		ConversationID:    m.ConversationID,
		Content:           m.Content,
		MessageType:       m.MessageType,
		AttachmentURL:     m.AttachmentURL,
		IsEdited:          m.IsEdited,
		IsDeleted:         m.IsDeleted,
	}
}

// MessageModelFromDomain creates a model from a domain Message
func MessageModelFromDomain(msg *messaging.Message) *MessageModel {
	m := &MessageModel{
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		MessageType:    msg.MessageType,
		AttachmentURL:  msg.AttachmentURL,
		IsEdited:       msg.IsEdited,
		IsDeleted:      msg.IsDeleted,
	}
	m.FromOwned(msg.OwnedEntity)
	return m
}
