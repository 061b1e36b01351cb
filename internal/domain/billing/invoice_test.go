package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	issued := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(uuid.New(), uuid.New(), FormatInvoiceNumber(issued, 7), issued, issued.AddDate(0, 0, 30),
		[]LineItem{
			{Description: "Design", Quantity: d("10"), UnitPrice: d("85.50")},
			{Description: "Hosting", Quantity: d("1"), UnitPrice: d("20"), Amount: d("20")},
		}, d("8.25"), d("15"))
	require.NoError(t, err)
	return inv
}

func assertTotalsHold(t *testing.T, inv *Invoice) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range inv.LineItems {
		sum = sum.Add(item.Amount)
	}
	assert.True(t, sum.Equal(inv.Subtotal), "subtotal")
	assert.True(t, shared.Round2(inv.Subtotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100))).Equal(inv.TaxAmount), "tax")
	assert.True(t, inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount).Equal(inv.Total), "total")
	assert.True(t, inv.Total.Sub(inv.AmountPaid).Equal(inv.AmountDue), "amount due")
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-202405-00007", FormatInvoiceNumber(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 7))
	assert.Equal(t, "INV-202412-", InvoiceNumberPrefix(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestInvoiceSequence(t *testing.T) {
	assert.Equal(t, 42, InvoiceSequence("INV-202405-00042", "INV-202405-"))
	assert.Zero(t, InvoiceSequence("", "INV-202405-"))
	assert.Zero(t, InvoiceSequence("INV-202404-00042", "INV-202405-"))
	assert.Zero(t, InvoiceSequence("INV-202405-custom", "INV-202405-"))
}

func TestNewInvoice_Totals(t *testing.T) {
	inv := newTestInvoice(t)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, DefaultCurrency, inv.Currency)
	assert.True(t, d("855").Equal(inv.LineItems[0].Amount))
	assert.True(t, d("875").Equal(inv.Subtotal))
	assert.True(t, d("72.19").Equal(inv.TaxAmount))
	assert.True(t, d("932.19").Equal(inv.Total))
	assertTotalsHold(t, inv)
}

func TestInvoice_ApplyRecomputes(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Apply(InvoiceUpdate{LineItems: []LineItem{{Description: "Audit", Quantity: d("3"), UnitPrice: d("33.33")}}}))
	assert.True(t, d("99.99").Equal(inv.Subtotal))
	assertTotalsHold(t, inv)

	rate := d("0")
	require.NoError(t, inv.Apply(InvoiceUpdate{TaxRate: &rate}))
	assert.True(t, inv.TaxAmount.IsZero())
	assertTotalsHold(t, inv)

	bad := d("120")
	assert.Error(t, inv.Apply(InvoiceUpdate{TaxRate: &bad}))
}

func TestInvoiceMachine(t *testing.T) {
	allowed := map[InvoiceStatus][]InvoiceStatus{
		InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusCancelled},
		InvoiceStatusSent:    {InvoiceStatusViewed, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
		InvoiceStatusViewed:  {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
		InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
	}
	all := []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled}
	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, ok := range allowed[from] {
				if ok == to {
					expected = true
				}
			}
			assert.Equal(t, expected, InvoiceMachine.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, InvoiceMachine.IsTerminal(InvoiceStatusPaid))
	assert.True(t, InvoiceMachine.IsTerminal(InvoiceStatusCancelled))
}

func TestInvoice_RecordPayment(t *testing.T) {
	inv := newTestInvoice(t)

	t.Run("draft invoices cannot take payments", func(t *testing.T) {
		err := inv.RecordPayment(d("10"))
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	require.NoError(t, inv.Send())
	require.NotNil(t, inv.SentAt)
	inv.ClearDomainEvents()

	require.NoError(t, inv.RecordPayment(d("500")))
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.True(t, d("432.19").Equal(inv.AmountDue))
	assertTotalsHold(t, inv)

	assert.Error(t, inv.RecordPayment(d("1000")))
	assert.Error(t, inv.RecordPayment(d("0")))

	require.NoError(t, inv.RecordPayment(d("432.19")))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.NotNil(t, inv.PaidAt)
	assert.True(t, inv.AmountDue.IsZero())

	types := make([]string, 0)
	for _, e := range inv.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{EventTypePaymentRecorded, EventTypePaymentRecorded, EventTypeInvoicePaid}, types)

	assert.Error(t, inv.Cancel(), "paid is terminal")
}

func TestInvoice_IsPastDue(t *testing.T) {
	inv := newTestInvoice(t)
	after := inv.DueDate.AddDate(0, 0, 1)
	assert.False(t, inv.IsPastDue(after), "drafts are never overdue")
	require.NoError(t, inv.Send())
	assert.True(t, inv.IsPastDue(after))
	assert.False(t, inv.IsPastDue(inv.DueDate.AddDate(0, 0, -1)))
}

func TestInvoice_Duplicate(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Send())
	require.NoError(t, inv.RecordPayment(d("100")))

	issued := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dup, err := inv.Duplicate(FormatInvoiceNumber(issued, 1), issued)
	require.NoError(t, err)
	assert.NotEqual(t, inv.ID, dup.ID)
	assert.Equal(t, InvoiceStatusDraft, dup.Status)
	assert.Equal(t, "INV-202406-00001", dup.InvoiceNumber)
	assert.True(t, dup.AmountPaid.IsZero())
	assert.True(t, inv.Total.Equal(dup.Total))
	assert.Equal(t, issued.AddDate(0, 0, 30), dup.DueDate)
	assertTotalsHold(t, dup)
}

func TestComputeInvoiceStats(t *testing.T) {
	invoices := []Invoice{
		{Status: InvoiceStatusPaid, Total: d("100"), AmountPaid: d("100"), AmountDue: d("0")},
		{Status: InvoiceStatusOverdue, Total: d("300"), AmountPaid: d("0"), AmountDue: d("300")},
		{Status: InvoiceStatusDraft, Total: d("50"), AmountPaid: d("0"), AmountDue: d("50")},
		{Status: InvoiceStatusCancelled, Total: d("999"), AmountPaid: d("0"), AmountDue: d("999")},
	}
	stats := ComputeInvoiceStats(invoices)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Cancelled)
	assert.True(t, d("450").Equal(stats.TotalInvoiced))
	assert.True(t, d("100").Equal(stats.TotalPaid))
	assert.True(t, d("300").Equal(stats.TotalOutstanding))
	assert.True(t, d("300").Equal(stats.OverdueAmount))
	assert.True(t, d("150").Equal(stats.AverageInvoiceValue))
	assert.True(t, d("22.22").Equal(stats.CollectionRate))
}
