package billing

import (
	"context"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/event"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     *InvoiceService
	handler *testutil.MockEventHandler
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	bus := event.NewBus(zap.NewNop())
	handler := testutil.NewMockEventHandler(billing.EventTypeInvoicePaid, billing.EventTypeInvoiceOverdue, billing.EventTypePaymentRecorded)
	bus.Subscribe(handler)

	f := &fixture{handler: handler, now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	f.svc = NewInvoiceService(persistence.NewGormInvoiceRepository(db), qc, bus, zap.NewNop(),
		WithClock(func() time.Time { return f.now }))
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRequest(clientID uuid.UUID) CreateInvoiceRequest {
	tax := dec("10")
	discount := dec("5")
	return CreateInvoiceRequest{
		ClientID: clientID,
		LineItems: []LineItemInput{
			{Description: "Design", Quantity: dec("2"), UnitPrice: dec("100")},
			{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("49.99")},
		},
		TaxRate:        &tax,
		DiscountAmount: &discount,
	}
}

func TestInvoiceService_CreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)

	assert.Equal(t, "INV-202403-00001", inv.InvoiceNumber)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, dec("249.99").Equal(inv.Subtotal))
	assert.True(t, dec("25").Equal(inv.TaxAmount))
	assert.True(t, dec("269.99").Equal(inv.Total))
	assert.True(t, dec("269.99").Equal(inv.AmountDue))
	assert.Equal(t, f.now.Add(DefaultPaymentTerm), inv.DueDate)

	second, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-00002", second.InvoiceNumber)
}

func TestInvoiceService_NumberingSurvivesDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	second, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteInvoice(ctx, testutil.TestUserID, first.ID))

	third, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	assert.NotEqual(t, second.InvoiceNumber, third.InvoiceNumber)
	assert.Equal(t, "INV-202403-00003", third.InvoiceNumber)
}

// interleavingRepo runs before once, after loading and before returning
type interleavingRepo struct {
	billing.InvoiceRepository
	before func()
}

func (r *interleavingRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := r.InvoiceRepository.FindByID(ctx, userID, id)
	if hook := r.before; hook != nil {
		r.before = nil
		hook()
	}
	return inv, err
}

func TestInvoiceService_ConcurrentPaymentsDoNotOverwrite(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := persistence.NewGormInvoiceRepository(db)
	racing := &interleavingRepo{InvoiceRepository: repo}
	qc, _ := testutil.NewQueryClient()
	svc := NewInvoiceService(racing, qc, nil, zap.NewNop())
	other := NewInvoiceService(repo, qc, nil, zap.NewNop())

	inv, err := svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	_, err = svc.SendInvoice(ctx, testutil.TestUserID, inv.ID)
	require.NoError(t, err)

	racing.before = func() {
		_, err := other.RecordPayment(ctx, testutil.TestUserID, inv.ID, dec("100"))
		require.NoError(t, err)
	}
	_, err = svc.RecordPayment(ctx, testutil.TestUserID, inv.ID, dec("50"))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, testutil.TestUserID, inv.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(stored.AmountPaid))
	assert.True(t, dec("169.99").Equal(stored.AmountDue))
}

func TestInvoiceService_UpdateRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.svc.CreateInvoice(ctx, testutil.TestUserID, sampleRequest(uuid.New()))
	require.NoError(t, err)

	tax := dec("0")
	updated, err := f.svc.UpdateInvoice(ctx, testutil.TestUserID, inv.ID, UpdateInvoiceRequest{
		LineItems: []LineItemInput{{Description: "Retainer", Quantity: dec("1"), UnitPrice: dec("1000")}},
		TaxRate:   &tax,
	})
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(updated.Subtotal))
	assert.True(t, dec("995").Equal(updated.Total))
	assert.Equal(t, inv.ID, updated.ID)
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID
	inv, err := f.svc.CreateInvoice(ctx, userID, sampleRequest(uuid.New()))
	require.NoError(t, err)

	t.Run("payment requires a sent invoice", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, userID, inv.ID, dec("10"))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	inv, err = f.svc.SendInvoice(ctx, userID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", inv.Status)
	assert.NotNil(t, inv.SentAt)

	inv, err = f.svc.MarkViewed(ctx, userID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "viewed", inv.Status)

	inv, err = f.svc.RecordPayment(ctx, userID, inv.ID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, "viewed", inv.Status)
	assert.True(t, dec("169.99").Equal(inv.AmountDue))

	inv, err = f.svc.RecordPayment(ctx, userID, inv.ID, dec("169.99"))
	require.NoError(t, err)
	assert.Equal(t, "paid", inv.Status)
	assert.True(t, inv.AmountDue.IsZero())

	assert.Equal(t, []string{
		billing.EventTypePaymentRecorded,
		billing.EventTypePaymentRecorded,
		billing.EventTypeInvoicePaid,
	}, f.handler.HandledTypes())

	t.Run("paid is terminal", func(t *testing.T) {
		_, err := f.svc.CancelInvoice(ctx, userID, inv.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		_, err = f.svc.TransitionInvoice(ctx, userID, inv.ID, billing.InvoiceStatusDraft)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("duplicate makes a fresh draft", func(t *testing.T) {
		dup, err := f.svc.DuplicateInvoice(ctx, userID, inv.ID)
		require.NoError(t, err)
		assert.NotEqual(t, inv.ID, dup.ID)
		assert.NotEqual(t, inv.InvoiceNumber, dup.InvoiceNumber)
		assert.Equal(t, "draft", dup.Status)
		assert.Len(t, dup.LineItems, 2)
		assert.True(t, dup.AmountPaid.IsZero())
	})

	stats, err := f.svc.GetInvoiceStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Paid)
	assert.Equal(t, 1, stats.Draft)
}

func TestInvoiceService_SweepOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	issue := f.now.AddDate(0, -2, 0)
	due := f.now.AddDate(0, -1, 0)
	req := sampleRequest(uuid.New())
	req.IssueDate, req.DueDate = &issue, &due
	late, err := f.svc.CreateInvoice(ctx, userID, req)
	require.NoError(t, err)
	_, err = f.svc.SendInvoice(ctx, userID, late.ID)
	require.NoError(t, err)

	current, err := f.svc.CreateInvoice(ctx, userID, sampleRequest(uuid.New()))
	require.NoError(t, err)
	_, err = f.svc.SendInvoice(ctx, userID, current.ID)
	require.NoError(t, err)

	job := NewOverdueSweep(f.svc)
	assert.Equal(t, OverdueSweepJobName, job.Name())
	require.NoError(t, job.Run(ctx))

	got, err := f.svc.GetInvoice(ctx, userID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)
	got, err = f.svc.GetInvoice(ctx, userID, current.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)
	assert.Contains(t, f.handler.HandledTypes(), billing.EventTypeInvoiceOverdue)

	result, err := f.svc.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Marked)
}

func TestInvoiceService_RequiresUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateInvoice(ctx, uuid.Nil, sampleRequest(uuid.New()))
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.svc.ListInvoices(ctx, uuid.Nil, InvoiceListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = f.svc.RecordPayment(ctx, uuid.Nil, uuid.New(), dec("1"))
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}
