package handler

import (
	integrationapp "github.com/agencydesk/backend/internal/application/integration"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// IntegrationHandler serves /banking and /integrations/xero
type IntegrationHandler struct {
	BaseHandler
	banking *integrationapp.BankingService
	xero    *integrationapp.XeroService
}

// NewIntegrationHandler creates an IntegrationHandler
func NewIntegrationHandler(banking *integrationapp.BankingService, xero *integrationapp.XeroService) *IntegrationHandler {
	return &IntegrationHandler{banking: banking, xero: xero}
}

// RegisterRoutes mounts the Plaid and Xero routes
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	banking := router.NewDomainGroup("/banking")
	banking.Group("/plaid").
		POST("/link-token", h.CreateLinkToken).
		POST("/exchange-token", h.ExchangePublicToken)
	banking.Group("/accounts").
		GET("", h.ListAccounts).
		POST("/:id/sync", h.SyncAccount).
		DELETE("/:id", h.DisconnectAccount)
	banking.RegisterRoutes(rg)

	router.NewDomainGroup("/integrations/xero").
		GET("/authorize", h.XeroAuthorize).
		GET("/callback", h.XeroCallback).
		GET("/status", h.XeroStatus).
		POST("/sync", h.XeroSync).
		DELETE("", h.XeroDisconnect).
		RegisterRoutes(rg)
}

// CreateLinkToken starts a Plaid Link session
func (h *IntegrationHandler) CreateLinkToken(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	token, err := h.banking.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, token)
}

// ExchangePublicToken connects the accounts behind a Link public token
func (h *IntegrationHandler) ExchangePublicToken(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req integrationapp.ExchangeTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	accounts, err := h.banking.ExchangePublicToken(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, accounts)
}

// ListAccounts returns the connected bank accounts
func (h *IntegrationHandler) ListAccounts(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	accounts, err := h.banking.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// SyncAccount pulls new transactions of one account
func (h *IntegrationHandler) SyncAccount(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.banking.SyncAccount(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DisconnectAccount forgets one account
func (h *IntegrationHandler) DisconnectAccount(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.banking.DisconnectAccount(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// XeroAuthorize returns the consent URL with a fresh state
func (h *IntegrationHandler) XeroAuthorize(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.xero.Authorize(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// XeroCallback completes the OAuth2 code exchange
func (h *IntegrationHandler) XeroCallback(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req integrationapp.CallbackRequest
	if !h.bindQuery(c, &req) {
		return
	}

	conn, err := h.xero.Callback(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conn)
}

// XeroStatus reports whether Xero is connected
func (h *IntegrationHandler) XeroStatus(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	conn, err := h.xero.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conn)
}

// XeroSync pushes paid invoices to Xero
func (h *IntegrationHandler) XeroSync(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.xero.Sync(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// XeroDisconnect deletes the stored connection
func (h *IntegrationHandler) XeroDisconnect(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.xero.Disconnect(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
