package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for billing.Invoice.
// Invoice numbers are unique per user (enforced by the migration).
type InvoiceModel struct {
	OwnedModel
	ClientID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProjectID      *uuid.UUID            `gorm:"type:uuid;index"`
	InvoiceNumber  string                `gorm:"type:varchar(30);not null;index"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssueDate      time.Time             `gorm:"not null"`
	DueDate        time.Time             `gorm:"not null;index"`
	LineItems      billing.LineItems     `gorm:"type:jsonb"`
	Subtotal       decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate        decimal.Decimal       `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Total          decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid     decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Currency       string                `gorm:"type:varchar(3);not null;default:'USD'"`
	Notes          string                `gorm:"type:text"`
	Terms          string                `gorm:"type:text"`
	SentAt         *time.Time
	PaidAt         *time.Time
	Version        int `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToAggregate(),
		ClientID:          m.ClientID,
		ProjectID:         m.ProjectID,
		InvoiceNumber:     m.InvoiceNumber,
		Status:            m.Status,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		LineItems:         m.LineItems,
		Subtotal:          m.Subtotal,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		DiscountAmount:    m.DiscountAmount,
		Total:             m.Total,
		AmountPaid:        m.AmountPaid,
		AmountDue:         m.AmountDue,
		Currency:          m.Currency,
		Notes:             m.Notes,
		Terms:             m.Terms,
		SentAt:            m.SentAt,
		PaidAt:            m.PaidAt,
		Version:           m.Version,
	}
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		ClientID:       inv.ClientID,
		ProjectID:      inv.ProjectID,
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         inv.Status,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		LineItems:      inv.LineItems,
		Subtotal:       inv.Subtotal,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		AmountPaid:     inv.AmountPaid,
		AmountDue:      inv.AmountDue,
		Currency:       inv.Currency,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		SentAt:         inv.SentAt,
		PaidAt:         inv.PaidAt,
		Version:        inv.Version,
	}
	m.FromOwned(inv.OwnedEntity)
	return m
}
