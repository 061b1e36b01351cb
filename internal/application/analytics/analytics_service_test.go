package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *Service
	cache    *query.Client
	invoices *persistence.GormInvoiceRepository
	clients  *persistence.GormClientRepository
	projects *persistence.GormProjectRepository
	tasks    *persistence.GormTaskRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	f := &fixture{
		cache:    qc,
		invoices: persistence.NewGormInvoiceRepository(db),
		clients:  persistence.NewGormClientRepository(db),
		projects: persistence.NewGormProjectRepository(db),
		tasks:    persistence.NewGormTaskRepository(db),
	}
	f.service = NewService(f.invoices, f.projects, f.clients, f.tasks, qc)
	return f
}

func (f *fixture) paidInvoice(t *testing.T, clientID uuid.UUID, number string, amount int64) {
	t.Helper()
	now := time.Now().UTC()
	items := []billing.LineItem{{Description: "Work", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(amount)}}
	inv, err := billing.NewInvoice(testutil.TestUserID, clientID, number, now, now.AddDate(0, 0, 30), items, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, inv.Send())
	require.NoError(t, inv.RecordPayment(inv.AmountDue))
	require.NoError(t, f.invoices.Save(context.Background(), inv))
}

func TestService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.TestUserID

	acme, err := crm.NewClient(user, "Acme", "ops@acme.test")
	require.NoError(t, err)
	require.NoError(t, f.clients.Save(ctx, acme))
	f.paidInvoice(t, acme.ID, "INV-1", 1200)

	project, err := work.NewProject(user, "Website")
	require.NoError(t, err)
	require.NoError(t, f.projects.Save(ctx, project))
	task, err := work.NewTask(user, "Wireframes")
	require.NoError(t, err)
	require.NoError(t, task.SetStatus(work.TaskStatusDone))
	require.NoError(t, f.tasks.Save(ctx, task))

	d, err := f.service.GetDashboard(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "1200", d.Revenue.TotalRevenue.String())
	assert.Equal(t, "1200", d.Revenue.Monthly[len(d.Revenue.Monthly)-1].Revenue.String())
	assert.Equal(t, 1, d.Projects.Total)
	assert.Equal(t, 1, d.Tasks.Done)
	require.Len(t, d.Clients.TopClients, 1)
	assert.Equal(t, acme.ID, d.Clients.TopClients[0].ClientID)

	// Served from the analytics tier until an invoice write fans out
	_, err = f.service.GetRevenueMetrics(ctx, user)
	require.NoError(t, err)
	f.paidInvoice(t, acme.ID, "INV-2", 300)
	cached, err := f.service.GetRevenueMetrics(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "1200", cached.TotalRevenue.String())

	f.cache.InvalidateResource(ctx, user, query.ResourceInvoices)
	fresh, err := f.service.GetRevenueMetrics(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "1500", fresh.TotalRevenue.String())

	other, err := f.service.GetClientMetrics(ctx, testutil.OtherUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, other.Total)
}

type failingTasks struct {
	work.TaskRepository
}

func (failingTasks) ListAll(context.Context, uuid.UUID) ([]work.Task, error) {
	return nil, errors.New("tasks unavailable")
}

func TestService_LoadFailureIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := NewService(f.invoices, f.projects, f.clients, failingTasks{f.tasks}, f.cache)

	_, err := broken.GetTaskMetrics(ctx, testutil.TestUserID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasks unavailable")

	m, err := f.service.GetTaskMetrics(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Total)
}

func TestService_RequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GetDashboard(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}
