// Package analytics serves the dashboard metrics.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/analytics"
	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service computes analytics over the user's invoices, projects, clients and tasks
type Service struct {
	invoices billing.InvoiceRepository
	projects work.ProjectRepository
	clients  crm.ClientRepository
	tasks    work.TaskRepository
	cache    *query.Client
	now      func() time.Time
}

// NewService creates a new analytics Service
func NewService(invoices billing.InvoiceRepository, projects work.ProjectRepository, clients crm.ClientRepository, tasks work.TaskRepository, cache *query.Client) *Service {
	return &Service{
		invoices: invoices,
		projects: projects,
		clients:  clients,
		tasks:    tasks,
		cache:    cache,
		now:      time.Now,
	}
}

// load fetches the four tables concurrently; the first failure cancels the rest
func (s *Service) load(ctx context.Context, userID uuid.UUID) (analytics.Dataset, error) {
	var d analytics.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Invoices, err = s.invoices.ListAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Projects, err = s.projects.ListAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Clients, err = s.clients.ListAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Tasks, err = s.tasks.ListAll(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.Dataset{}, fmt.Errorf("load analytics data: %w", err)
	}
	return d, nil
}

// section caches a metric derived from the dataset under analytics:name
func section[T any](ctx context.Context, s *Service, userID uuid.UUID, name string, derive func(analytics.Dataset, time.Time) T) (T, error) {
	var zero T
	if err := shared.RequireUser(userID); err != nil {
		return zero, err
	}
	return query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceAnalytics, name), query.TierAnalytics, func(ctx context.Context) (T, error) {
		d, err := s.load(ctx, userID)
		if err != nil {
			return zero, err
		}
		return derive(d, s.now()), nil
	})
}

// GetDashboard returns every metric section
func (s *Service) GetDashboard(ctx context.Context, userID uuid.UUID) (analytics.DashboardMetrics, error) {
	return section(ctx, s, userID, "dashboard", analytics.ComputeDashboard)
}

// GetRevenueMetrics returns revenue totals and the monthly series
func (s *Service) GetRevenueMetrics(ctx context.Context, userID uuid.UUID) (analytics.RevenueMetrics, error) {
	return section(ctx, s, userID, "revenue", func(d analytics.Dataset, now time.Time) analytics.RevenueMetrics {
		return analytics.ComputeRevenueMetrics(d.Invoices, now)
	})
}

// GetProjectMetrics returns project metrics
func (s *Service) GetProjectMetrics(ctx context.Context, userID uuid.UUID) (analytics.ProjectMetrics, error) {
	return section(ctx, s, userID, "projects", func(d analytics.Dataset, now time.Time) analytics.ProjectMetrics {
		return analytics.ComputeProjectMetrics(d.Projects, now)
	})
}

// GetClientMetrics returns client counts and the top clients by revenue
func (s *Service) GetClientMetrics(ctx context.Context, userID uuid.UUID) (analytics.ClientMetrics, error) {
	return section(ctx, s, userID, "clients", func(d analytics.Dataset, now time.Time) analytics.ClientMetrics {
		return analytics.ComputeClientMetrics(d.Clients, d.Invoices, now)
	})
}

// GetTaskMetrics returns task metrics
func (s *Service) GetTaskMetrics(ctx context.Context, userID uuid.UUID) (analytics.TaskMetrics, error) {
	return section(ctx, s, userID, "tasks", func(d analytics.Dataset, now time.Time) analytics.TaskMetrics {
		return analytics.ComputeTaskMetrics(d.Tasks, now)
	})
}
