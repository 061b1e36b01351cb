package handler

import (
	messagingapp "github.com/agencydesk/backend/internal/application/messaging"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// MessagingHandler serves /conversations
type MessagingHandler struct {
	BaseHandler
	messaging *messagingapp.MessagingService
}

// NewMessagingHandler creates a MessagingHandler
func NewMessagingHandler(messaging *messagingapp.MessagingService) *MessagingHandler {
	return &MessagingHandler{messaging: messaging}
}

// RegisterRoutes mounts the conversation routes
func (h *MessagingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversations := router.NewDomainGroup("/conversations").
		GET("", h.ListConversations).
		GET("/unread-count", h.UnreadCount).
		GET("/:id", h.GetConversation).
		POST("", h.CreateConversation).
		POST("/:id/participants", h.AddParticipant).
		POST("/:id/read", h.MarkRead)

	conversations.Group("/:id/messages").
		GET("", h.ListMessages).
		POST("", h.SendMessage).
		PUT("/:messageId", h.EditMessage).
		DELETE("/:messageId", h.DeleteMessage)

	conversations.RegisterRoutes(rg)
}

// ListConversations returns a page of the user's conversations
func (h *MessagingHandler) ListConversations(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter messagingapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.messaging.ListConversations(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetConversation returns one conversation
func (h *MessagingHandler) GetConversation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}

	conversation, err := h.messaging.GetConversation(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conversation)
}

// CreateConversation starts a conversation
func (h *MessagingHandler) CreateConversation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req messagingapp.CreateConversationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	conversation, err := h.messaging.CreateConversation(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conversation)
}

// AddParticipant adds a participant to a conversation
func (h *MessagingHandler) AddParticipant(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}
	var req messagingapp.AddParticipantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	conversation, err := h.messaging.AddParticipant(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conversation)
}

// MarkRead clears the unread counter of a conversation
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}

	if err := h.messaging.MarkConversationRead(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnreadCount returns the unread total across conversations
func (h *MessagingHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	count, err := h.messaging.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// ListMessages returns a page of messages, newest first
func (h *MessagingHandler) ListMessages(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}
	var filter messagingapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.messaging.ListMessages(c.Request.Context(), userID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// SendMessage posts a message
func (h *MessagingHandler) SendMessage(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}
	var req messagingapp.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	message, err := h.messaging.SendMessage(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, message)
}

// EditMessage changes the body of the sender's own message
func (h *MessagingHandler) EditMessage(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}
	messageID, ok := h.pathID(c, "messageId", "message")
	if !ok {
		return
	}
	var req messagingapp.EditMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	message, err := h.messaging.EditMessage(c.Request.Context(), userID, id, messageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, message)
}

// DeleteMessage removes the sender's own message
func (h *MessagingHandler) DeleteMessage(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "conversation")
	if !ok {
		return
	}
	messageID, ok := h.pathID(c, "messageId", "message")
	if !ok {
		return
	}

	if err := h.messaging.DeleteMessage(c.Request.Context(), userID, id, messageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
