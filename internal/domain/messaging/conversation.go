package messaging

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = shared.NewNotFoundError("Conversation")
	ErrMessageNotFound      = shared.NewNotFoundError("Message")
	ErrNotParticipant       = shared.NewDomainError("FORBIDDEN", "User is not a participant of this conversation")
)

// Conversation is a thread between participants. UserID is the creator.
type Conversation struct {
	shared.OwnedEntity
	Title         string
	IsGroup       bool
	LastMessageAt *time.Time
	Participants  []Participant
}

// Participant links a user to a conversation
type Participant struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	JoinedAt       time.Time
	LastReadAt     *time.Time
}

// NewConversation creates a conversation with the creator and others as participants
func NewConversation(creatorID uuid.UUID, title string, others []uuid.UUID) (*Conversation, error) {
	c := &Conversation{
		OwnedEntity: shared.NewOwnedEntity(creatorID),
		Title:       strings.TrimSpace(title),
	}
	c.addParticipant(creatorID)
	for _, id := range others {
		if id != uuid.Nil {
			c.addParticipant(id)
		}
	}
	c.IsGroup = len(c.Participants) > 2
	if c.IsGroup && c.Title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Group conversations need a title")
	}
	return c, nil
}

func (c *Conversation) addParticipant(userID uuid.UUID) bool {
	if c.HasParticipant(userID) {
		return false
	}
	c.Participants = append(c.Participants, Participant{
		ConversationID: c.ID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	})
	return true
}

// AddParticipant adds userID; returns false when already present
func (c *Conversation) AddParticipant(userID uuid.UUID) bool {
	added := c.addParticipant(userID)
	if added {
		c.IsGroup = len(c.Participants) > 2
		c.Touch()
	}
	return added
}

// HasParticipant reports whether userID belongs to the conversation
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// MessageType classifies messages
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// IsValid checks if the type is a known value
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Message is one entry in a conversation. UserID is the sender.
type Message struct {
	shared.BaseAggregateRoot
	ConversationID uuid.UUID
	Content        string
	MessageType    MessageType
	AttachmentURL  string
	IsEdited       bool
	IsDeleted      bool
}

// NewMessage creates a message and raises MessageSent
func NewMessage(senderID, conversationID uuid.UUID, content string, messageType MessageType, attachmentURL string) (*Message, error) {
	if messageType == "" {
		messageType = MessageTypeText
	}
	if !messageType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Invalid message type")
	}
	if strings.TrimSpace(content) == "" && attachmentURL == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message cannot be empty")
	}
	m := &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(shared.NewOwnedEntity(senderID)),
		ConversationID:    conversationID,
		Content:           content,
		MessageType:       messageType,
		AttachmentURL:     attachmentURL,
	}
	m.AddDomainEvent(NewMessageSentEvent(m))
	return m, nil
}

// SenderID returns the user who sent the message
func (m *Message) SenderID() uuid.UUID {
	return m.UserID
}

// Edit replaces the content of a live message
func (m *Message) Edit(content string) error {
	if m.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a deleted message")
	}
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Message cannot be empty")
	}
	m.Content = content
	m.IsEdited = true
	m.Touch()
	return nil
}

// SoftDelete hides the message content
func (m *Message) SoftDelete() {
	m.IsDeleted = true
	m.Content = ""
	m.AttachmentURL = ""
	m.Touch()
}
