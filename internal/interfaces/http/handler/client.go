package handler

import (
	crmapp "github.com/agencydesk/backend/internal/application/crm"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// ClientHandler serves /clients
type ClientHandler struct {
	BaseHandler
	clients *crmapp.ClientService
}

// NewClientHandler creates a ClientHandler
func NewClientHandler(clients *crmapp.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// RegisterRoutes mounts the client routes
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/clients").
		GET("", h.List).
		GET("/stats", h.Stats).
		GET("/:id", h.Get).
		POST("", h.Create).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		RegisterRoutes(rg)
}

// List returns a page of clients
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter crmapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.clients.ListClients(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clients.GetClient(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Create adds a client
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req crmapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Update applies a partial update
func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}
	var req crmapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete removes a client
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clients.DeleteClient(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats returns client counts
func (h *ClientHandler) Stats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.clients.GetClientStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
