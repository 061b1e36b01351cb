package handler

import (
	notificationapp "github.com/agencydesk/backend/internal/application/notification"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves /notifications
type NotificationHandler struct {
	BaseHandler
	notifications *notificationapp.NotificationService
}

// NewNotificationHandler creates a NotificationHandler
func NewNotificationHandler(notifications *notificationapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes mounts the notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/notifications").
		GET("", h.List).
		GET("/unread-count", h.UnreadCount).
		GET("/preferences", h.GetPreferences).
		PUT("/preferences", h.UpdatePreferences).
		POST("", h.Create).
		POST("/read-all", h.MarkAllRead).
		POST("/:id/read", h.MarkRead).
		POST("/:id/archive", h.Archive).
		DELETE("/:id", h.Delete).
		RegisterRoutes(rg)
}

// List returns a page of notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter notificationapp.NotificationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.notifications.ListNotifications(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Create stores a notification for the current user
func (h *NotificationHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req notificationapp.CreateNotificationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	n, err := h.notifications.CreateNotification(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "notification")
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// MarkAllRead marks every unread notification read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Archive hides a notification from the inbox
func (h *NotificationHandler) Archive(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "notification")
	if !ok {
		return
	}

	n, err := h.notifications.ArchiveNotification(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// Delete removes a notification
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notifications.DeleteNotification(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnreadCount returns the number of unread notifications
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// GetPreferences returns the delivery preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	prefs, err := h.notifications.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// UpdatePreferences applies a partial preferences update
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req notificationapp.UpdatePreferencesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	prefs, err := h.notifications.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}
