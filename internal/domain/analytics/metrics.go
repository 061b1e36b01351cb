// Package analytics derives dashboard metrics from the user's invoices,
// projects, clients and tasks. Everything here is a pure function over
// already fetched rows.
package analytics

import (
	"sort"
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// RevenueMonths is the length of the monthly revenue series
	RevenueMonths = 12
	// TopClientsLimit bounds the top client ranking
	TopClientsLimit = 5

	monthLayout = "2006-01"
)

// MonthlyRevenue is the paid revenue of one calendar month
type MonthlyRevenue struct {
	Month        string          `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int             `json:"invoice_count"`
}

// RevenueMetrics summarises invoicing
type RevenueMetrics struct {
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	OutstandingAmount decimal.Decimal  `json:"outstanding_amount"`
	OverdueAmount     decimal.Decimal  `json:"overdue_amount"`
	PaidInvoices      int              `json:"paid_invoices"`
	PendingInvoices   int              `json:"pending_invoices"`
	OverdueInvoices   int              `json:"overdue_invoices"`
	AverageInvoice    decimal.Decimal  `json:"average_invoice"`
	Monthly           []MonthlyRevenue `json:"monthly"`
	// GrowthRate compares the current month with the previous one, in percent
	GrowthRate decimal.Decimal `json:"growth_rate"`
}

// paidOn is when an invoice's revenue is booked
func paidOn(inv *billing.Invoice) time.Time {
	if inv.PaidAt != nil {
		return *inv.PaidAt
	}
	return inv.IssueDate
}

func isPending(s billing.InvoiceStatus) bool {
	return s == billing.InvoiceStatusSent || s == billing.InvoiceStatusViewed || s == billing.InvoiceStatusOverdue
}

// monthStart truncates t to the first instant of its month in UTC
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ComputeRevenueMetrics derives revenue metrics. The monthly series covers
// the RevenueMonths months ending with now's month, oldest first.
func ComputeRevenueMetrics(invoices []billing.Invoice, now time.Time) RevenueMetrics {
	m := RevenueMetrics{Monthly: make([]MonthlyRevenue, RevenueMonths)}
	current := monthStart(now)
	first := current.AddDate(0, -(RevenueMonths - 1), 0)
	index := make(map[string]int, RevenueMonths)
	for i := 0; i < RevenueMonths; i++ {
		label := first.AddDate(0, i, 0).Format(monthLayout)
		m.Monthly[i] = MonthlyRevenue{Month: label, Revenue: decimal.Zero}
		index[label] = i
	}

	for i := range invoices {
		inv := &invoices[i]
		switch {
		case inv.Status == billing.InvoiceStatusPaid:
			m.PaidInvoices++
			m.TotalRevenue = m.TotalRevenue.Add(inv.Total)
			if idx, ok := index[monthStart(paidOn(inv)).Format(monthLayout)]; ok {
				m.Monthly[idx].Revenue = m.Monthly[idx].Revenue.Add(inv.Total)
				m.Monthly[idx].InvoiceCount++
			}
		case isPending(inv.Status):
			m.PendingInvoices++
			m.OutstandingAmount = m.OutstandingAmount.Add(inv.AmountDue)
			if inv.Status == billing.InvoiceStatusOverdue || inv.IsPastDue(now) {
				m.OverdueInvoices++
				m.OverdueAmount = m.OverdueAmount.Add(inv.AmountDue)
			}
		}
	}
	if m.PaidInvoices > 0 {
		m.AverageInvoice = shared.Round2(m.TotalRevenue.Div(decimal.NewFromInt(int64(m.PaidInvoices))))
	}
	m.GrowthRate = GrowthRate(m.Monthly[RevenueMonths-2].Revenue, m.Monthly[RevenueMonths-1].Revenue)
	return m
}

// GrowthRate is (current - previous) / previous in percent. A month
// following one without revenue reports 100 when it has revenue, else 0.
func GrowthRate(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return shared.Percent(current.Sub(previous), previous)
}

// ProjectMetrics extends project statistics with delivery figures
type ProjectMetrics struct {
	work.ProjectStats
	OverBudget  int `json:"over_budget"`
	DueThisWeek int `json:"due_this_week"`
}

// ComputeProjectMetrics derives project metrics
func ComputeProjectMetrics(projects []work.Project, now time.Time) ProjectMetrics {
	m := ProjectMetrics{ProjectStats: work.ComputeProjectStats(projects)}
	weekEnd := now.Add(7 * 24 * time.Hour)
	for i := range projects {
		p := &projects[i]
		if p.Budget.IsPositive() && p.Spent.GreaterThan(p.Budget) {
			m.OverBudget++
		}
		if p.EndDate != nil && p.Status == work.ProjectStatusActive && !p.EndDate.Before(now) && !p.EndDate.After(weekEnd) {
			m.DueThisWeek++
		}
	}
	return m
}

// ClientRevenue is one entry of the top client ranking
type ClientRevenue struct {
	ClientID     uuid.UUID       `json:"client_id"`
	Name         string          `json:"name"`
	Company      string          `json:"company"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int             `json:"invoice_count"`
}

// ClientMetrics summarises the client base
type ClientMetrics struct {
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	Prospects    int             `json:"prospects"`
	NewThisMonth int             `json:"new_this_month"`
	TopClients   []ClientRevenue `json:"top_clients"`
}

// ComputeClientMetrics ranks clients by the paid invoices that reference them
func ComputeClientMetrics(clients []crm.Client, invoices []billing.Invoice, now time.Time) ClientMetrics {
	m := ClientMetrics{Total: len(clients), TopClients: make([]ClientRevenue, 0, TopClientsLimit)}
	month := monthStart(now)
	ranking := make(map[uuid.UUID]*ClientRevenue, len(clients))
	for i := range clients {
		c := &clients[i]
		switch c.Status {
		case crm.ClientStatusActive:
			m.Active++
		case crm.ClientStatusProspect:
			m.Prospects++
		}
		if !c.CreatedAt.Before(month) {
			m.NewThisMonth++
		}
		ranking[c.ID] = &ClientRevenue{ClientID: c.ID, Name: c.Name, Company: c.Company, Revenue: decimal.Zero}
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != billing.InvoiceStatusPaid {
			continue
		}
		if r, ok := ranking[inv.ClientID]; ok {
			r.Revenue = r.Revenue.Add(inv.Total)
			r.InvoiceCount++
		}
	}

	ranked := make([]ClientRevenue, 0, len(ranking))
	for _, r := range ranking {
		if r.Revenue.IsPositive() {
			ranked = append(ranked, *r)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > TopClientsLimit {
		ranked = ranked[:TopClientsLimit]
	}
	m.TopClients = append(m.TopClients, ranked...)
	return m
}

// TaskMetrics extends task statistics with the tasks due soon
type TaskMetrics struct {
	work.TaskStats
	DueToday int `json:"due_today"`
}

// ComputeTaskMetrics derives task metrics
func ComputeTaskMetrics(tasks []work.Task, now time.Time) TaskMetrics {
	m := TaskMetrics{TaskStats: work.ComputeTaskStats(tasks, now)}
	y, mo, d := now.UTC().Date()
	for i := range tasks {
		t := &tasks[i]
		if t.DueDate == nil || !t.Status.IsOpen() {
			continue
		}
		ty, tm, td := t.DueDate.UTC().Date()
		if ty == y && tm == mo && td == d {
			m.DueToday++
		}
	}
	return m
}

// DashboardMetrics combines every section
type DashboardMetrics struct {
	Revenue     RevenueMetrics `json:"revenue"`
	Projects    ProjectMetrics `json:"projects"`
	Clients     ClientMetrics  `json:"clients"`
	Tasks       TaskMetrics    `json:"tasks"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Dataset is the batch of rows the dashboard is computed from
type Dataset struct {
	Invoices []billing.Invoice
	Projects []work.Project
	Clients  []crm.Client
	Tasks    []work.Task
}

// ComputeDashboard derives every section from one dataset
func ComputeDashboard(d Dataset, now time.Time) DashboardMetrics {
	return DashboardMetrics{
		Revenue:     ComputeRevenueMetrics(d.Invoices, now),
		Projects:    ComputeProjectMetrics(d.Projects, now),
		Clients:     ComputeClientMetrics(d.Clients, d.Invoices, now),
		Tasks:       ComputeTaskMetrics(d.Tasks, now),
		GeneratedAt: now,
	}
}
