package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts domain outcomes. A nil *BusinessMetrics is valid
// and records nothing.
type BusinessMetrics struct {
	invoicesCreated *Counter
	invoicesPaid    *Counter
	paymentAmount   *Histogram
	invoicesOverdue *Counter
	bankSynced      *Counter
	exports         *Counter
	leadsConverted  *Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.invoicesCreated, err = NewCounter(meter, "invoices.created", "Invoices created", "{invoice}"); err != nil {
		return nil, err
	}
	if bm.invoicesPaid, err = NewCounter(meter, "invoices.paid", "Invoices fully paid", "{invoice}"); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewHistogram(meter, "invoices.payment.amount", "Recorded payment amounts", "{currency}",
		50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000); err != nil {
		return nil, err
	}
	if bm.invoicesOverdue, err = NewCounter(meter, "invoices.overdue", "Invoices moved to overdue by the sweep", "{invoice}"); err != nil {
		return nil, err
	}
	if bm.bankSynced, err = NewCounter(meter, "banking.transactions.synced", "Bank transactions imported", "{transaction}"); err != nil {
		return nil, err
	}
	if bm.exports, err = NewCounter(meter, "exports.generated", "Export files generated", "{file}"); err != nil {
		return nil, err
	}
	if bm.leadsConverted, err = NewCounter(meter, "leads.converted", "Leads converted to clients", "{lead}"); err != nil {
		return nil, err
	}
	return &bm, nil
}

func (bm *BusinessMetrics) InvoiceCreated(ctx context.Context) {
	if bm != nil {
		bm.invoicesCreated.Inc(ctx)
	}
}

// PaymentRecorded records the amount and counts the invoice when it became paid
func (bm *BusinessMetrics) PaymentRecorded(ctx context.Context, amount float64, currency string, paid bool) {
	if bm == nil {
		return
	}
	bm.paymentAmount.Record(ctx, amount, attribute.String("currency", currency))
	if paid {
		bm.invoicesPaid.Inc(ctx, attribute.String("currency", currency))
	}
}

func (bm *BusinessMetrics) InvoicesOverdue(ctx context.Context, n int) {
	if bm != nil && n > 0 {
		bm.invoicesOverdue.Add(ctx, int64(n))
	}
}

func (bm *BusinessMetrics) TransactionsSynced(ctx context.Context, n int) {
	if bm != nil && n > 0 {
		bm.bankSynced.Add(ctx, int64(n))
	}
}

func (bm *BusinessMetrics) ExportGenerated(ctx context.Context, format string) {
	if bm != nil {
		bm.exports.Inc(ctx, attribute.String("format", format))
	}
}

func (bm *BusinessMetrics) LeadConverted(ctx context.Context) {
	if bm != nil {
		bm.leadsConverted.Inc(ctx)
	}
}
