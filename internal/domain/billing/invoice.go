package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusViewed    InvoiceStatus = "viewed"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceMachine holds the legal invoice status transitions.
// paid and cancelled are terminal.
var InvoiceMachine = shared.NewStateMachine("Invoice", map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:    {InvoiceStatusViewed, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusViewed:  {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
})

const DefaultCurrency = "USD"

var ErrInvoiceNotFound = shared.NewNotFoundError("Invoice")

// LineItem is one billable entry on an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// LineItems is persisted as a JSON array
type LineItems []LineItem

// Value implements driver.Valuer
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}
	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Invoice is a bill sent to a client
type Invoice struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	InvoiceNumber  string
	Status         InvoiceStatus
	IssueDate      time.Time
	DueDate        time.Time
	LineItems      LineItems
	Subtotal       decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	AmountPaid     decimal.Decimal
	AmountDue      decimal.Decimal
	Currency       string
	Notes          string
	Terms          string
	SentAt         *time.Time
	PaidAt         *time.Time
	// Version is the stored revision the invoice was loaded at; 0 until first saved
	Version int
}

// FormatInvoiceNumber renders INV-YYYYMM-NNNNN
func FormatInvoiceNumber(issued time.Time, seq int) string {
	return fmt.Sprintf("%s%05d", InvoiceNumberPrefix(issued), seq)
}

// InvoiceNumberPrefix returns the INV-YYYYMM- prefix for the month of issued
func InvoiceNumberPrefix(issued time.Time) string {
	return fmt.Sprintf("INV-%04d%02d-", issued.Year(), int(issued.Month()))
}

// InvoiceSequence extracts the NNNNN counter from number when it carries
// prefix. Numbers that do not parse report 0.
func InvoiceSequence(number, prefix string) int {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok {
		return 0
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

// NewInvoice creates a draft invoice and computes its totals
func NewInvoice(userID, clientID uuid.UUID, number string, issueDate, dueDate time.Time, items []LineItem, taxRate, discount decimal.Decimal) (*Invoice, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice must reference a client")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(shared.NewOwnedEntity(userID)),
		ClientID:          clientID,
		InvoiceNumber:     number,
		Status:            InvoiceStatusDraft,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		AmountPaid:        decimal.Zero,
		Currency:          DefaultCurrency,
	}
	if err := inv.SetPricing(items, taxRate, discount); err != nil {
		return nil, err
	}
	return inv, nil
}

// SetPricing replaces line items, tax rate and discount and recomputes totals
func (i *Invoice) SetPricing(items []LineItem, taxRate, discount decimal.Decimal) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	for _, item := range items {
		if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity and price cannot be negative")
		}
	}
	i.LineItems = make(LineItems, len(items))
	copy(i.LineItems, items)
	i.TaxRate = taxRate
	i.DiscountAmount = discount
	i.RecalculateTotals()
	return nil
}

// RecalculateTotals derives subtotal, tax, total and amount due from the line items.
// A line item with a zero amount is priced as quantity * unit price.
func (i *Invoice) RecalculateTotals() {
	subtotal := decimal.Zero
	for idx := range i.LineItems {
		item := &i.LineItems[idx]
		if item.Amount.IsZero() {
			item.Amount = shared.Round2(item.Quantity.Mul(item.UnitPrice))
		}
		subtotal = subtotal.Add(item.Amount)
	}
	i.Subtotal = subtotal
	i.TaxAmount = shared.Round2(subtotal.Mul(i.TaxRate).Div(decimal.NewFromInt(100)))
	i.Total = i.Subtotal.Add(i.TaxAmount).Sub(i.DiscountAmount)
	i.AmountDue = i.Total.Sub(i.AmountPaid)
	i.Touch()
}

// TransitionTo validates and applies a status change
func (i *Invoice) TransitionTo(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	if err := InvoiceMachine.Validate(i.Status, status); err != nil {
		return err
	}
	now := time.Now()
	switch status {
	case InvoiceStatusSent:
		i.SentAt = &now
	case InvoiceStatusPaid:
		i.PaidAt = &now
		i.AmountPaid = i.Total
		i.AmountDue = decimal.Zero
		i.AddDomainEvent(NewInvoicePaidEvent(i))
	case InvoiceStatusOverdue:
		i.AddDomainEvent(NewInvoiceOverdueEvent(i))
	}
	i.Status = status
	i.Touch()
	return nil
}

// Send moves a draft invoice to sent
func (i *Invoice) Send() error {
	return i.TransitionTo(InvoiceStatusSent)
}

// MarkViewed records that the client opened the invoice
func (i *Invoice) MarkViewed() error {
	return i.TransitionTo(InvoiceStatusViewed)
}

// Cancel voids the invoice
func (i *Invoice) Cancel() error {
	return i.TransitionTo(InvoiceStatusCancelled)
}

// RecordPayment applies a payment. Partial payments accumulate; once the
// total is covered the invoice moves to paid.
func (i *Invoice) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !InvoiceMachine.CanTransition(i.Status, InvoiceStatusPaid) {
		return shared.NewTransitionError("Invoice", string(i.Status), string(InvoiceStatusPaid))
	}
	if amount.GreaterThan(i.AmountDue) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE", fmt.Sprintf("Payment %s exceeds amount due %s", amount.StringFixed(2), i.AmountDue.StringFixed(2)))
	}
	i.AmountPaid = i.AmountPaid.Add(amount)
	i.AmountDue = i.Total.Sub(i.AmountPaid)
	i.AddDomainEvent(NewPaymentRecordedEvent(i, amount))
	if i.AmountDue.IsZero() {
		return i.TransitionTo(InvoiceStatusPaid)
	}
	i.Touch()
	return nil
}

// IsPastDue reports whether an unpaid, sent invoice is past its due date
func (i *Invoice) IsPastDue(now time.Time) bool {
	return (i.Status == InvoiceStatusSent || i.Status == InvoiceStatusViewed) && i.DueDate.Before(now)
}

// Duplicate copies the invoice into a new draft with a fresh number and no payments
func (i *Invoice) Duplicate(number string, issueDate time.Time) (*Invoice, error) {
	term := i.DueDate.Sub(i.IssueDate)
	items := make([]LineItem, len(i.LineItems))
	copy(items, i.LineItems)
	dup, err := NewInvoice(i.UserID, i.ClientID, number, issueDate, issueDate.Add(term), items, i.TaxRate, i.DiscountAmount)
	if err != nil {
		return nil, err
	}
	dup.ProjectID = i.ProjectID
	dup.Currency = i.Currency
	dup.Notes = i.Notes
	dup.Terms = i.Terms
	return dup, nil
}

// InvoiceUpdate is a partial update; nil fields are left unchanged.
// Status changes go through TransitionTo, not Apply.
type InvoiceUpdate struct {
	ClientID       *uuid.UUID
	ProjectID      *uuid.UUID
	IssueDate      *time.Time
	DueDate        *time.Time
	LineItems      []LineItem
	TaxRate        *decimal.Decimal
	DiscountAmount *decimal.Decimal
	Currency       *string
	Notes          *string
	Terms          *string
}

// Apply merges the update and recomputes totals when pricing changed
func (i *Invoice) Apply(u InvoiceUpdate) error {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit a %s invoice", i.Status))
	}
	if u.ClientID != nil {
		if *u.ClientID == uuid.Nil {
			return shared.NewDomainError("INVALID_CLIENT", "Invoice must reference a client")
		}
		i.ClientID = *u.ClientID
	}
	if u.ProjectID != nil {
		i.ProjectID = u.ProjectID
	}
	if u.IssueDate != nil {
		i.IssueDate = *u.IssueDate
	}
	if u.DueDate != nil {
		i.DueDate = *u.DueDate
	}
	if i.DueDate.Before(i.IssueDate) {
		return shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}
	if u.Currency != nil {
		i.Currency = strings.ToUpper(*u.Currency)
	}
	if u.Notes != nil {
		i.Notes = *u.Notes
	}
	if u.Terms != nil {
		i.Terms = *u.Terms
	}
	if u.LineItems != nil || u.TaxRate != nil || u.DiscountAmount != nil {
		items := []LineItem(i.LineItems)
		if u.LineItems != nil {
			items = u.LineItems
		}
		taxRate := i.TaxRate
		if u.TaxRate != nil {
			taxRate = *u.TaxRate
		}
		discount := i.DiscountAmount
		if u.DiscountAmount != nil {
			discount = *u.DiscountAmount
		}
		return i.SetPricing(items, taxRate, discount)
	}
	i.Touch()
	return nil
}

// InvoiceFilter narrows invoice list queries
type InvoiceFilter struct {
	shared.Filter
	Statuses []InvoiceStatus
	ClientID *uuid.UUID
	Issue    shared.DateRange
	Due      shared.DateRange
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
}
