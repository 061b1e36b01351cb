package handler

import (
	"context"

	billingapp "github.com/agencydesk/backend/internal/application/billing"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler serves /invoices
type InvoiceHandler struct {
	BaseHandler
	invoices *billingapp.InvoiceService
}

// NewInvoiceHandler creates an InvoiceHandler
func NewInvoiceHandler(invoices *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes mounts the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/invoices").
		GET("", h.List).
		GET("/stats", h.Stats).
		GET("/:id", h.Get).
		POST("", h.Create).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		PATCH("/:id/status", h.Transition).
		POST("/:id/send", h.action(h.invoices.SendInvoice)).
		POST("/:id/view", h.action(h.invoices.MarkViewed)).
		POST("/:id/cancel", h.action(h.invoices.CancelInvoice)).
		POST("/:id/duplicate", h.Duplicate).
		POST("/:id/payments", h.RecordPayment).
		RegisterRoutes(rg)
}

type invoiceAction func(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error)

// action adapts a single-step lifecycle call
func (h *InvoiceHandler) action(fn invoiceAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := h.currentUser(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id", "invoice")
		if !ok {
			return
		}

		invoice, err := fn(c.Request.Context(), userID, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, invoice)
	}
}

// List returns a page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter billingapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.invoices.ListInvoices(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get returns one invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.action(h.invoices.GetInvoice)(c)
}

// Create issues a draft invoice; totals are computed from the line items
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req billingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Update applies a partial update
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.UpdateInvoice(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete removes an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoices.DeleteInvoice(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Transition moves an invoice to an explicit status
func (h *InvoiceHandler) Transition(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req billingapp.TransitionInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.TransitionInvoice(c.Request.Context(), userID, id, billing.InvoiceStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RecordPayment applies a payment against the amount due
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req billingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoices.RecordPayment(c.Request.Context(), userID, id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Duplicate copies an invoice into a new draft
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.DuplicateInvoice(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Stats returns invoice totals per status
func (h *InvoiceHandler) Stats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.invoices.GetInvoiceStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
