package billing

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput is one line of an invoice request. Amount may be omitted.
type LineItemInput struct {
	Description string           `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Amount      *decimal.Decimal `json:"amount"`
}

func toLineItems(in []LineItemInput) []billing.LineItem {
	if in == nil {
		return nil
	}
	out := make([]billing.LineItem, len(in))
	for i, li := range in {
		out[i] = billing.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      decimal.Zero,
		}
		if li.Amount != nil {
			out[i].Amount = *li.Amount
		}
	}
	return out
}

// CreateInvoiceRequest represents a request to create an invoice. The
// invoice number is generated when empty.
type CreateInvoiceRequest struct {
	ClientID       uuid.UUID        `json:"client_id" binding:"required"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	InvoiceNumber  string           `json:"invoice_number" binding:"max=50"`
	IssueDate      *time.Time       `json:"issue_date"`
	DueDate        *time.Time       `json:"due_date"`
	LineItems      []LineItemInput  `json:"line_items" binding:"dive"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	Currency       string           `json:"currency" binding:"omitempty,len=3"`
	Notes          string           `json:"notes"`
	Terms          string           `json:"terms"`
}

// UpdateInvoiceRequest represents a partial invoice update
type UpdateInvoiceRequest struct {
	ClientID       *uuid.UUID       `json:"client_id"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	IssueDate      *time.Time       `json:"issue_date"`
	DueDate        *time.Time       `json:"due_date"`
	LineItems      []LineItemInput  `json:"line_items" binding:"omitempty,dive"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	Currency       *string          `json:"currency" binding:"omitempty,len=3"`
	Notes          *string          `json:"notes"`
	Terms          *string          `json:"terms"`
}

// ToDomain converts the request into a domain update
func (r UpdateInvoiceRequest) ToDomain() billing.InvoiceUpdate {
	return billing.InvoiceUpdate{
		ClientID:       r.ClientID,
		ProjectID:      r.ProjectID,
		IssueDate:      r.IssueDate,
		DueDate:        r.DueDate,
		LineItems:      toLineItems(r.LineItems),
		TaxRate:        r.TaxRate,
		DiscountAmount: r.DiscountAmount,
		Currency:       r.Currency,
		Notes:          r.Notes,
		Terms:          r.Terms,
	}
}

// RecordPaymentRequest represents a payment against an invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransitionInvoiceRequest represents an explicit status change
type TransitionInvoiceRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent viewed paid overdue cancelled"`
}

// InvoiceListFilter represents the query string of an invoice list
type InvoiceListFilter struct {
	Page      int              `form:"page"`
	PageSize  int              `form:"page_size"`
	OrderBy   string           `form:"order_by"`
	OrderDir  string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search    string           `form:"search"`
	Status    []string         `form:"status"`
	ClientID  *uuid.UUID       `form:"client_id"`
	IssueFrom *time.Time       `form:"issue_from" time_format:"2006-01-02"`
	IssueTo   *time.Time       `form:"issue_to" time_format:"2006-01-02"`
	DueFrom   *time.Time       `form:"due_from" time_format:"2006-01-02"`
	DueTo     *time.Time       `form:"due_to" time_format:"2006-01-02"`
	MinTotal  *decimal.Decimal `form:"min_total"`
	MaxTotal  *decimal.Decimal `form:"max_total"`
}

// ToDomain converts the list filter into the repository filter
func (f InvoiceListFilter) ToDomain() billing.InvoiceFilter {
	statuses := make([]billing.InvoiceStatus, 0, len(f.Status))
	for _, s := range f.Status {
		statuses = append(statuses, billing.InvoiceStatus(s))
	}
	return billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Statuses: statuses,
		ClientID: f.ClientID,
		Issue:    shared.DateRange{From: f.IssueFrom, To: f.IssueTo},
		Due:      shared.DateRange{From: f.DueFrom, To: f.DueTo},
		MinTotal: f.MinTotal,
		MaxTotal: f.MaxTotal,
	}
}

// LineItemResponse is a priced invoice line
type LineItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	ClientID       uuid.UUID          `json:"client_id"`
	ProjectID      *uuid.UUID         `json:"project_id,omitempty"`
	InvoiceNumber  string             `json:"invoice_number"`
	Status         string             `json:"status"`
	IssueDate      time.Time          `json:"issue_date"`
	DueDate        time.Time          `json:"due_date"`
	LineItems      []LineItemResponse `json:"line_items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	AmountDue      decimal.Decimal    `json:"amount_due"`
	Currency       string             `json:"currency"`
	Notes          string             `json:"notes"`
	Terms          string             `json:"terms"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	PaidAt         *time.Time         `json:"paid_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(i *billing.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(i.LineItems))
	for idx, li := range i.LineItems {
		items[idx] = LineItemResponse{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		}
	}
	return InvoiceResponse{
		ID:             i.ID,
		UserID:         i.UserID,
		ClientID:       i.ClientID,
		ProjectID:      i.ProjectID,
		InvoiceNumber:  i.InvoiceNumber,
		Status:         string(i.Status),
		IssueDate:      i.IssueDate,
		DueDate:        i.DueDate,
		LineItems:      items,
		Subtotal:       i.Subtotal,
		TaxRate:        i.TaxRate,
		TaxAmount:      i.TaxAmount,
		DiscountAmount: i.DiscountAmount,
		Total:          i.Total,
		AmountPaid:     i.AmountPaid,
		AmountDue:      i.AmountDue,
		Currency:       i.Currency,
		Notes:          i.Notes,
		Terms:          i.Terms,
		SentAt:         i.SentAt,
		PaidAt:         i.PaidAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// SweepResult summarises one overdue sweep
type SweepResult struct {
	Checked int `json:"checked"`
	Marked  int `json:"marked"`
	Failed  int `json:"failed"`
}
