package billing

import (
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStats are derived from a user's invoices
type InvoiceStats struct {
	Total               int             `json:"total"`
	Draft               int             `json:"draft"`
	Sent                int             `json:"sent"`
	Viewed              int             `json:"viewed"`
	Paid                int             `json:"paid"`
	Overdue             int             `json:"overdue"`
	Cancelled           int             `json:"cancelled"`
	TotalInvoiced       decimal.Decimal `json:"total_invoiced"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
	AverageInvoiceValue decimal.Decimal `json:"average_invoice_value"`
	CollectionRate      decimal.Decimal `json:"collection_rate"`
}

// ComputeInvoiceStats reduces invoices into InvoiceStats. Cancelled invoices
// are counted but excluded from the money totals.
func ComputeInvoiceStats(invoices []Invoice) InvoiceStats {
	stats := InvoiceStats{
		Total:            len(invoices),
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		OverdueAmount:    decimal.Zero,
	}
	billable := 0
	for _, inv := range invoices {
		switch inv.Status {
		case InvoiceStatusDraft:
			stats.Draft++
		case InvoiceStatusSent:
			stats.Sent++
		case InvoiceStatusViewed:
			stats.Viewed++
		case InvoiceStatusPaid:
			stats.Paid++
		case InvoiceStatusOverdue:
			stats.Overdue++
			stats.OverdueAmount = stats.OverdueAmount.Add(inv.AmountDue)
		case InvoiceStatusCancelled:
			stats.Cancelled++
			continue
		}
		billable++
		stats.TotalInvoiced = stats.TotalInvoiced.Add(inv.Total)
		stats.TotalPaid = stats.TotalPaid.Add(inv.AmountPaid)
		if inv.Status != InvoiceStatusDraft {
			stats.TotalOutstanding = stats.TotalOutstanding.Add(inv.AmountDue)
		}
	}
	denominator := billable
	if denominator == 0 {
		denominator = 1
	}
	stats.AverageInvoiceValue = shared.Round2(stats.TotalInvoiced.Div(decimal.NewFromInt(int64(denominator))))
	stats.CollectionRate = shared.Percent(stats.TotalPaid, stats.TotalInvoiced)
	return stats
}
