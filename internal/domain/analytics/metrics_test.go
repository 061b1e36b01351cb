package analytics

import (
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

func paid(clientID uuid.UUID, total int64, at time.Time) billing.Invoice {
	return billing.Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(shared.NewOwnedEntity(uuid.New())),
		ClientID:          clientID,
		Status:            billing.InvoiceStatusPaid,
		IssueDate:         at,
		PaidAt:            &at,
		Total:             decimal.NewFromInt(total),
	}
}

func TestComputeRevenueMetrics(t *testing.T) {
	c := uuid.New()
	invoices := []billing.Invoice{
		paid(c, 1000, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)),
		paid(c, 1500, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)),
		// Outside the 12 month window
		paid(c, 700, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		{Status: billing.InvoiceStatusSent, DueDate: now.AddDate(0, 0, -2), AmountDue: decimal.NewFromInt(300)},
		{Status: billing.InvoiceStatusViewed, DueDate: now.AddDate(0, 0, 5), AmountDue: decimal.NewFromInt(200)},
		{Status: billing.InvoiceStatusDraft, AmountDue: decimal.NewFromInt(999)},
	}

	m := ComputeRevenueMetrics(invoices, now)
	assert.Equal(t, "3200", m.TotalRevenue.String())
	assert.Equal(t, "500", m.OutstandingAmount.String())
	assert.Equal(t, "300", m.OverdueAmount.String())
	assert.Equal(t, 3, m.PaidInvoices)
	assert.Equal(t, 2, m.PendingInvoices)
	assert.Equal(t, 1, m.OverdueInvoices)

	require.Len(t, m.Monthly, RevenueMonths)
	assert.Equal(t, "2025-07", m.Monthly[0].Month)
	assert.Equal(t, "2026-06", m.Monthly[RevenueMonths-1].Month)
	assert.Equal(t, "1500", m.Monthly[RevenueMonths-1].Revenue.String())
	assert.Equal(t, "1000", m.Monthly[RevenueMonths-2].Revenue.String())
	assert.Equal(t, "50", m.GrowthRate.String())
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, "100", GrowthRate(decimal.Zero, decimal.NewFromInt(10)).String())
	assert.True(t, GrowthRate(decimal.Zero, decimal.Zero).IsZero())
	assert.Equal(t, "-25", GrowthRate(decimal.NewFromInt(200), decimal.NewFromInt(150)).String())
}

func TestComputeClientMetrics_TopClients(t *testing.T) {
	user := uuid.New()
	mk := func(name string, status crm.ClientStatus) crm.Client {
		c, err := crm.NewClient(user, name, "")
		require.NoError(t, err)
		c.Status = status
		return *c
	}
	acme, globex, idle := mk("Acme", crm.ClientStatusActive), mk("Globex", crm.ClientStatusActive), mk("Idle", crm.ClientStatusProspect)
	invoices := []billing.Invoice{
		paid(acme.ID, 500, now),
		paid(globex.ID, 900, now),
		paid(acme.ID, 600, now),
		{ClientID: idle.ID, Status: billing.InvoiceStatusSent, Total: decimal.NewFromInt(5000)},
	}

	m := ComputeClientMetrics([]crm.Client{acme, globex, idle}, invoices, now)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 2, m.Active)
	assert.Equal(t, 1, m.Prospects)
	require.Len(t, m.TopClients, 2)
	assert.Equal(t, "Acme", m.TopClients[0].Name)
	assert.Equal(t, "1100", m.TopClients[0].Revenue.String())
	assert.Equal(t, 2, m.TopClients[0].InvoiceCount)
	assert.Equal(t, "Globex", m.TopClients[1].Name)
}

func TestComputeProjectAndTaskMetrics(t *testing.T) {
	soon := now.Add(3 * 24 * time.Hour)
	projects := []work.Project{
		{Status: work.ProjectStatusActive, Budget: decimal.NewFromInt(100), Spent: decimal.NewFromInt(150), EndDate: &soon},
		{Status: work.ProjectStatusCompleted, Budget: decimal.NewFromInt(100), Spent: decimal.NewFromInt(50)},
	}
	pm := ComputeProjectMetrics(projects, now)
	assert.Equal(t, 2, pm.Total)
	assert.Equal(t, 1, pm.OverBudget)
	assert.Equal(t, 1, pm.DueThisWeek)

	today := now.Add(2 * time.Hour)
	tasks := []work.Task{
		{Status: work.TaskStatusTodo, DueDate: &today},
		{Status: work.TaskStatusDone, DueDate: &today},
	}
	tm := ComputeTaskMetrics(tasks, now)
	assert.Equal(t, 2, tm.Total)
	assert.Equal(t, 1, tm.DueToday)
	assert.Equal(t, "50", tm.CompletionRate.String())
}
