package messaging

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversationRepository defines persistence operations for conversations.
// Lookups are by participant membership, not ownership.
type ConversationRepository interface {
	FindForParticipant(ctx context.Context, userID, id uuid.UUID) (*Conversation, error)
	ListForParticipant(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.PageResult[Conversation], error)
	Save(ctx context.Context, conversation *Conversation) error
	AddParticipant(ctx context.Context, p Participant) error
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error
	TouchLastMessage(ctx context.Context, conversationID uuid.UUID, at time.Time) error
}

// MessageRepository defines persistence operations for messages
type MessageRepository interface {
	FindByID(ctx context.Context, conversationID, id uuid.UUID) (*Message, error)
	// List returns live and deleted messages ordered by created_at asc
	List(ctx context.Context, conversationID uuid.UUID, filter shared.Filter) (shared.PageResult[Message], error)
	Save(ctx context.Context, message *Message) error
	// CountUnread counts messages from others newer than the participant's last read
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
