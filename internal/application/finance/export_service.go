package finance

import (
	"context"
	"fmt"
	"time"

	appsettings "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/export"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatIIF  = "iif"
	FormatJSON = "json"
)

var errClosingReportNotFound = shared.NewNotFoundError("Closing report")

// ExportService renders finance data as downloadable files
type ExportService struct {
	records  finance.RecordRepository
	settings *appsettings.Store
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(records finance.RecordRepository, store *appsettings.Store, logger *zap.Logger, opts ...Option) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &ExportService{
		records:  records,
		settings: store,
		metrics:  o.metrics,
		logger:   logger,
		now:      o.now,
	}
}

// DefaultReportTemplate is exported when the user never saved one
func DefaultReportTemplate() settings.ReportTemplate {
	return settings.ReportTemplate{
		Name:     "Financial Report",
		Sections: []string{"summary", "profit_and_loss", "balance_sheet", "cash_flow"},
		Period:   "monthly",
		Currency: "USD",
	}
}

func (s *ExportService) generated(ctx context.Context, userID uuid.UUID, format string, f export.File) export.File {
	s.metrics.ExportGenerated(ctx, format)
	s.logger.Debug("Export generated",
		zap.String("user_id", userID.String()),
		zap.String("format", format),
		zap.String("filename", f.Filename),
		zap.Int("bytes", len(f.Body)))
	return f
}

// QuickBooks exports revenue and expense records of the period as a
// QuickBooks CSV, or IIF when q.Format is "iif", using the saved mapping
func (s *ExportService) QuickBooks(ctx context.Context, userID uuid.UUID, q ExportQuery) (export.File, error) {
	if err := shared.RequireUser(userID); err != nil {
		return export.File{}, err
	}
	cfg, err := appsettings.GetOr(ctx, s.settings, userID, settings.KeyQuickBooksExport, settings.DefaultQuickBooksExport())
	if err != nil {
		return export.File{}, fmt.Errorf("load quickbooks settings: %w", err)
	}
	records, err := s.records.ListAll(ctx, userID, finance.RecordFilter{
		RecordTypes: []finance.RecordType{finance.RecordTypeRevenue, finance.RecordTypeExpense},
		Date:        q.Range(),
	})
	if err != nil {
		return export.File{}, fmt.Errorf("load records: %w", err)
	}

	if q.Format == FormatIIF {
		return s.generated(ctx, userID, FormatIIF, export.QuickBooksIIF(records, cfg, s.now())), nil
	}
	f, err := export.QuickBooksCSV(records, cfg, s.now())
	if err != nil {
		return export.File{}, err
	}
	return s.generated(ctx, userID, FormatCSV, f), nil
}

// ReportCSV exports the period's summary, one row per category
func (s *ExportService) ReportCSV(ctx context.Context, userID uuid.UUID, period PeriodQuery) (export.File, error) {
	if err := shared.RequireUser(userID); err != nil {
		return export.File{}, err
	}
	records, err := s.records.ListAll(ctx, userID, finance.RecordFilter{Date: period.Range()})
	if err != nil {
		return export.File{}, fmt.Errorf("load records: %w", err)
	}
	f, err := export.FinancialReportCSV(finance.ComputeSummary(records), s.now())
	if err != nil {
		return export.File{}, err
	}
	return s.generated(ctx, userID, FormatCSV, f), nil
}

// ReportTemplate exports the saved report configuration as JSON
func (s *ExportService) ReportTemplate(ctx context.Context, userID uuid.UUID) (export.File, error) {
	if err := shared.RequireUser(userID); err != nil {
		return export.File{}, err
	}
	tpl, err := appsettings.GetOr(ctx, s.settings, userID, settings.KeyReportTemplate, DefaultReportTemplate())
	if err != nil {
		return export.File{}, fmt.Errorf("load report template: %w", err)
	}
	f, err := export.JSON("report-template.json", tpl)
	if err != nil {
		return export.File{}, err
	}
	return s.generated(ctx, userID, FormatJSON, f), nil
}

// ClosingReport rebuilds the closing report of a closed year from its
// stamped records and exports it as JSON
func (s *ExportService) ClosingReport(ctx context.Context, userID uuid.UUID, year int) (export.File, error) {
	if err := shared.RequireUser(userID); err != nil {
		return export.File{}, err
	}
	bounds := finance.FiscalYearBounds(year)
	records, err := s.records.ListAll(ctx, userID, finance.RecordFilter{Date: bounds})
	if err != nil {
		return export.File{}, fmt.Errorf("load fiscal year %d: %w", year, err)
	}
	report, err := closingReportFrom(year, records)
	if err != nil {
		return export.File{}, err
	}
	f, err := export.JSON(fmt.Sprintf("fiscal-year-%d-closing.json", year), report)
	if err != nil {
		return export.File{}, err
	}
	return s.generated(ctx, userID, FormatJSON, f), nil
}

func closingReportFrom(year int, records []finance.FinancialRecord) (finance.ClosingReport, error) {
	ref := fmt.Sprintf("FY%d-CLOSE", year)
	var entry *finance.FinancialRecord
	stamped := make([]finance.FinancialRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.FiscalYear == nil || *r.FiscalYear != year {
			continue
		}
		if r.Category == finance.RetainedEarningsCategory && r.Reference == ref {
			entry = r
			continue
		}
		stamped = append(stamped, *r)
	}
	if entry == nil {
		return finance.ClosingReport{}, errClosingReportNotFound
	}
	return finance.ClosingReport{
		FiscalYear:     year,
		ClosedAt:       entry.CreatedAt,
		ProfitAndLoss:  finance.ComputeProfitAndLoss(stamped, finance.FiscalYearBounds(year)),
		ClosingEntryID: entry.ID,
		RetainedAmount: entry.Amount,
		RecordsClosed:  len(stamped),
	}, nil
}
