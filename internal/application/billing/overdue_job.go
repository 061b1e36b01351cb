package billing

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// OverdueSweepJobName is the scheduler name of the sweep
const OverdueSweepJobName = "invoice-overdue-sweep"

// OverdueSweep moves sent or viewed invoices past their due date to overdue
type OverdueSweep struct {
	service *InvoiceService
}

// NewOverdueSweep creates the sweep job over service
func NewOverdueSweep(service *InvoiceService) *OverdueSweep {
	return &OverdueSweep{service: service}
}

// Name implements scheduler.Job
func (j *OverdueSweep) Name() string {
	return OverdueSweepJobName
}

// Run implements scheduler.Job
func (j *OverdueSweep) Run(ctx context.Context) error {
	_, err := j.service.SweepOverdue(ctx)
	return err
}

// SweepOverdue marks every past-due invoice of every user overdue. One
// failing invoice does not stop the sweep.
func (s *InvoiceService) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	invoices, err := s.repo.ListPastDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list past due invoices: %w", err)
	}

	result := &SweepResult{Checked: len(invoices)}
	for i := range invoices {
		invoice := &invoices[i]
		if !invoice.IsPastDue(now) {
			continue
		}
		if err := invoice.TransitionTo(billing.InvoiceStatusOverdue); err != nil {
			result.Failed++
			s.logger.Warn("Failed to mark invoice overdue",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
			continue
		}
		if _, err := s.save(ctx, invoice); err != nil {
			result.Failed++
			s.logger.Warn("Failed to save overdue invoice",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
			continue
		}
		result.Marked++
	}
	s.metrics.InvoicesOverdue(ctx, result.Marked)

	s.logger.Info("Overdue sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("marked", result.Marked),
		zap.Int("failed", result.Failed))
	return result, nil
}
