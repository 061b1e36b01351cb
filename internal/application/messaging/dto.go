package messaging

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/messaging"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateConversationRequest represents a request to start a conversation
type CreateConversationRequest struct {
	Title          string      `json:"title" binding:"max=200"`
	ParticipantIDs []uuid.UUID `json:"participant_ids" binding:"required,min=1"`
}

// AddParticipantRequest adds a user to a conversation
type AddParticipantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// SendMessageRequest represents a new message
type SendMessageRequest struct {
	Content       string `json:"content" binding:"max=10000"`
	MessageType   string `json:"message_type" binding:"omitempty,oneof=text file system"`
	AttachmentURL string `json:"attachment_url" binding:"omitempty,url"`
}

// EditMessageRequest replaces message content
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

// ListFilter is the paging query string shared by conversation and message lists
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

// ToDomain converts the filter to a normalized shared.Filter
func (f ListFilter) ToDomain() shared.Filter {
	return shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: f.Search}.Normalize()
}

// ParticipantResponse represents a conversation member
type ParticipantResponse struct {
	UserID     uuid.UUID  `json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// ConversationResponse represents a conversation in API responses
type ConversationResponse struct {
	ID            uuid.UUID             `json:"id"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	Title         string                `json:"title"`
	IsGroup       bool                  `json:"is_group"`
	LastMessageAt *time.Time            `json:"last_message_at,omitempty"`
	Participants  []ParticipantResponse `json:"participants"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToConversationResponse converts a domain Conversation
func ToConversationResponse(c *messaging.Conversation) ConversationResponse {
	participants := make([]ParticipantResponse, len(c.Participants))
	for i, p := range c.Participants {
		participants[i] = ParticipantResponse{UserID: p.UserID, JoinedAt: p.JoinedAt, LastReadAt: p.LastReadAt}
	}
	return ConversationResponse{
		ID:            c.ID,
		CreatedBy:     c.UserID,
		Title:         c.Title,
		IsGroup:       c.IsGroup,
		LastMessageAt: c.LastMessageAt,
		Participants:  participants,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	IsEdited       bool      `json:"is_edited"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToMessageResponse converts a domain Message
func ToMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID(),
		Content:        m.Content,
		MessageType:    string(m.MessageType),
		AttachmentURL:  m.AttachmentURL,
		IsEdited:       m.IsEdited,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// UnreadCountResponse carries the unread message total
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
