package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/messaging"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessagingService handles conversations and messages. Every read is on
// the realtime tier and goes straight to the database.
type MessagingService struct {
	conversations messaging.ConversationRepository
	messages      messaging.MessageRepository
	cache         *query.Client
	events        shared.EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(conversations messaging.ConversationRepository, messages messaging.MessageRepository, cache *query.Client, events shared.EventPublisher, logger *zap.Logger) *MessagingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		cache:         cache,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// ListConversations returns the conversations the user participates in
func (s *MessagingService) ListConversations(ctx context.Context, userID uuid.UUID, filter ListFilter) (shared.Paginated[ConversationResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	f := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceConversations, f), query.TierRealtime, func(ctx context.Context) (shared.Paginated[ConversationResponse], error) {
		page, err := s.conversations.ListForParticipant(ctx, userID, f)
		if err != nil {
			return shared.Paginated[ConversationResponse]{}, fmt.Errorf("list conversations: %w", err)
		}
		out := make([]ConversationResponse, len(page.Data))
		for i := range page.Data {
			out[i] = ToConversationResponse(&page.Data[i])
		}
		return shared.NewPageResult(out, page.Total, page.Page, page.PageSize).ToPaginated(), nil
	})
}

// GetConversation returns a conversation the user participates in
func (s *MessagingService) GetConversation(ctx context.Context, userID, id uuid.UUID) (*ConversationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := s.conversations.FindForParticipant(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToConversationResponse(c)
	return &resp, nil
}

// CreateConversation starts a conversation; the creator joins automatically
func (s *MessagingService) CreateConversation(ctx context.Context, userID uuid.UUID, req CreateConversationRequest) (*ConversationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := messaging.NewConversation(userID, req.Title, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	resp := ToConversationResponse(c)
	return &resp, nil
}

// AddParticipant adds a member; only existing members may add others
func (s *MessagingService) AddParticipant(ctx context.Context, userID, conversationID uuid.UUID, req AddParticipantRequest) (*ConversationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := s.conversations.FindForParticipant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if c.AddParticipant(req.UserID) {
		if err := s.conversations.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("add participant: %w", err)
		}
	}
	resp := ToConversationResponse(c)
	return &resp, nil
}

// ListMessages returns a page of messages, oldest first
func (s *MessagingService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, filter ListFilter) (shared.Paginated[MessageResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	if _, err := s.conversations.FindForParticipant(ctx, userID, conversationID); err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	f := filter.ToDomain()
	key := query.Key(query.ResourceMessages, conversationID.String(), query.FilterHash(f))
	return query.Fetch(ctx, s.cache, userID, key, query.TierRealtime, func(ctx context.Context) (shared.Paginated[MessageResponse], error) {
		page, err := s.messages.List(ctx, conversationID, f)
		if err != nil {
			return shared.Paginated[MessageResponse]{}, fmt.Errorf("list messages: %w", err)
		}
		out := make([]MessageResponse, len(page.Data))
		for i := range page.Data {
			out[i] = ToMessageResponse(&page.Data[i])
		}
		return shared.NewPageResult(out, page.Total, page.Page, page.PageSize).ToPaginated(), nil
	})
}

// SendMessage posts a message, bumps the conversation activity time and
// publishes MessageSent addressed to every other participant.
func (s *MessagingService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, req SendMessageRequest) (*MessageResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := s.conversations.FindForParticipant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	m, err := messaging.NewMessage(userID, conversationID, req.Content, messaging.MessageType(req.MessageType), req.AttachmentURL)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if err := s.conversations.TouchLastMessage(ctx, conversationID, m.CreatedAt); err != nil {
		s.logger.Warn("Failed to update conversation activity",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
	}

	recipients := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.UserID != userID {
			recipients = append(recipients, p.UserID)
		}
	}
	events := m.GetDomainEvents()
	m.ClearDomainEvents()
	for _, ev := range events {
		if sent, ok := ev.(*messaging.MessageSentEvent); ok {
			sent.Recipients = recipients
		}
	}
	if s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish message events", zap.Error(err))
		}
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// EditMessage replaces the content of the sender's own message
func (s *MessagingService) EditMessage(ctx context.Context, userID, conversationID, messageID uuid.UUID, req EditMessageRequest) (*MessageResponse, error) {
	m, err := s.ownMessage(ctx, userID, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if err := m.Edit(req.Content); err != nil {
		return nil, err
	}
	if err := s.messages.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// DeleteMessage soft-deletes the sender's own message
func (s *MessagingService) DeleteMessage(ctx context.Context, userID, conversationID, messageID uuid.UUID) error {
	m, err := s.ownMessage(ctx, userID, conversationID, messageID)
	if err != nil {
		return err
	}
	m.SoftDelete()
	if err := s.messages.Save(ctx, m); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// MarkConversationRead stamps the participant's last read time
func (s *MessagingService) MarkConversationRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	return s.conversations.MarkRead(ctx, conversationID, userID, s.now())
}

// UnreadCount counts messages from others the user has not read yet
func (s *MessagingService) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	n, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &UnreadCountResponse{Unread: n}, nil
}

func (s *MessagingService) ownMessage(ctx context.Context, userID, conversationID, messageID uuid.UUID) (*messaging.Message, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.conversations.FindForParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	m, err := s.messages.FindByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if m.SenderID() != userID {
		return nil, shared.ErrForbidden
	}
	return m, nil
}
