package handler

import (
	"context"

	analyticsapp "github.com/agencydesk/backend/internal/application/analytics"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsHandler serves /analytics
type AnalyticsHandler struct {
	BaseHandler
	analytics *analyticsapp.Service
}

// NewAnalyticsHandler creates an AnalyticsHandler
func NewAnalyticsHandler(analytics *analyticsapp.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RegisterRoutes mounts the metric routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/analytics").
		GET("/dashboard", metric(h, h.analytics.GetDashboard)).
		GET("/revenue", metric(h, h.analytics.GetRevenueMetrics)).
		GET("/projects", metric(h, h.analytics.GetProjectMetrics)).
		GET("/clients", metric(h, h.analytics.GetClientMetrics)).
		GET("/tasks", metric(h, h.analytics.GetTaskMetrics)).
		RegisterRoutes(rg)
}

func metric[T any](h *AnalyticsHandler, fn func(context.Context, uuid.UUID) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.currentUser(c)
		if !ok {
			return
		}

		m, err := fn(c.Request.Context(), userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, m)
	}
}
