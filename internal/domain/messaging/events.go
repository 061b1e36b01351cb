package messaging

import (
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MessageSentEventType = "MessageSent"

	AggregateTypeMessage = "Message"
)

// MessageSentEvent is raised when a message is posted
type MessageSentEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID `json:"conversation_id"`
	Preview        string    `json:"preview"`
	// Recipients is filled by the service with every other participant
	Recipients []uuid.UUID `json:"recipients"`
}

// NewMessageSentEvent creates a new MessageSentEvent
func NewMessageSentEvent(m *Message) *MessageSentEvent {
	preview := []rune(m.Content)
	if len(preview) > 80 {
		preview = append(preview[:77], []rune("...")...)
	}
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(MessageSentEventType, AggregateTypeMessage, m.ID, m.UserID),
		ConversationID:  m.ConversationID,
		Preview:         string(preview),
	}
}
