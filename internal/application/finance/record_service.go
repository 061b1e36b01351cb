// Package finance implements financial records, statements, fiscal close,
// bank reconciliation and accounting exports.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordService handles financial records and the statements derived from them
type RecordService struct {
	records finance.RecordRepository
	txs     finance.BankTransactionRepository
	uow     finance.UnitOfWork
	cache   *query.Client
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures the finance services
type Option func(*options)

type options struct {
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// WithMetrics records business counters
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRecordService creates a new RecordService
func NewRecordService(records finance.RecordRepository, txs finance.BankTransactionRepository, uow finance.UnitOfWork, cache *query.Client, logger *zap.Logger, opts ...Option) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &RecordService{
		records: records,
		txs:     txs,
		uow:     uow,
		cache:   cache,
		metrics: o.metrics,
		logger:  logger,
		now:     o.now,
	}
}

// ListRecords returns a page of the user's records
func (s *RecordService) ListRecords(ctx context.Context, userID uuid.UUID, filter RecordListFilter) (shared.Paginated[RecordResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[RecordResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceFinance, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[RecordResponse], error) {
		page, err := s.records.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[RecordResponse]{}, fmt.Errorf("list records: %w", err)
		}
		return shared.MapPage(page, ToRecordResponses).ToPaginated(), nil
	})
}

// GetRecord returns a record by id
func (s *RecordService) GetRecord(ctx context.Context, userID, id uuid.UUID) (*RecordResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceFinance, id), query.TierUserData, func(ctx context.Context) (RecordResponse, error) {
		r, err := s.records.FindByID(ctx, userID, id)
		if err != nil {
			return RecordResponse{}, err
		}
		return ToRecordResponse(r), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRecord creates a financial record
func (s *RecordService) CreateRecord(ctx context.Context, userID uuid.UUID, req CreateRecordRequest) (*RecordResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	r, err := finance.NewFinancialRecord(userID, finance.RecordType(req.RecordType), req.Category, req.Amount, req.Date)
	if err != nil {
		return nil, err
	}
	r.Description = req.Description
	r.Reference = req.Reference
	r.PaymentMethod = req.PaymentMethod

	if err := s.records.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFinance)
	resp := ToRecordResponse(r)
	return &resp, nil
}

// UpdateRecord applies a partial update. Records of a closed year are read only.
func (s *RecordService) UpdateRecord(ctx context.Context, userID, id uuid.UUID, req UpdateRecordRequest) (*RecordResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	r, err := s.records.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := r.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	if err := s.records.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFinance)
	resp := ToRecordResponse(r)
	return &resp, nil
}

// DeleteRecord removes a record that does not belong to a closed year
func (s *RecordService) DeleteRecord(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	r, err := s.records.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if r.IsClosed() {
		return shared.NewDomainError("INVALID_STATE", "Records of a closed fiscal year cannot be deleted")
	}
	if err := s.records.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFinance)
	return nil
}

// statement fetches the user's records in period and caches derive's result under name
func statement[T any](ctx context.Context, s *RecordService, userID uuid.UUID, name string, period shared.DateRange, derive func([]finance.FinancialRecord) T) (T, error) {
	var zero T
	if err := shared.RequireUser(userID); err != nil {
		return zero, err
	}
	key := query.Key(query.ResourceFinance, name, query.FilterHash(period))
	return query.Fetch(ctx, s.cache, userID, key, query.TierUserData, func(ctx context.Context) (T, error) {
		records, err := s.records.ListAll(ctx, userID, finance.RecordFilter{Date: period})
		if err != nil {
			return zero, fmt.Errorf("load records for %s: %w", name, err)
		}
		return derive(records), nil
	})
}

// GetSummary totals revenue and expenses for the period
func (s *RecordService) GetSummary(ctx context.Context, userID uuid.UUID, period PeriodQuery) (finance.Summary, error) {
	return statement(ctx, s, userID, "summary", period.Range(), finance.ComputeSummary)
}

// GetProfitAndLoss builds the profit and loss statement for the period
func (s *RecordService) GetProfitAndLoss(ctx context.Context, userID uuid.UUID, period PeriodQuery) (finance.ProfitAndLoss, error) {
	r := period.Range()
	return statement(ctx, s, userID, "pnl", r, func(records []finance.FinancialRecord) finance.ProfitAndLoss {
		return finance.ComputeProfitAndLoss(records, r)
	})
}

// GetBalanceSheet builds the balance sheet as of asOf; zero means now
func (s *RecordService) GetBalanceSheet(ctx context.Context, userID uuid.UUID, asOf time.Time) (finance.BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	end := asOf.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
	return statement(ctx, s, userID, "balance", shared.DateRange{To: &end}, func(records []finance.FinancialRecord) finance.BalanceSheet {
		return finance.ComputeBalanceSheet(records, end)
	})
}

// GetCashFlow builds the cash flow statement for the period
func (s *RecordService) GetCashFlow(ctx context.Context, userID uuid.UUID, period PeriodQuery) (finance.CashFlow, error) {
	r := period.Range()
	return statement(ctx, s, userID, "cashflow", r, func(records []finance.FinancialRecord) finance.CashFlow {
		return finance.ComputeCashFlow(records, r)
	})
}

// CloseFiscalYear stamps every record of the year and books the closing
// equity entry in one transaction
func (s *RecordService) CloseFiscalYear(ctx context.Context, userID uuid.UUID, req CloseFiscalYearRequest) (*finance.ClosingReport, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if !req.Confirm {
		return nil, shared.ErrConfirmationNeeded
	}

	var report finance.ClosingReport
	err := s.uow.Do(ctx, func(records finance.RecordRepository, _ finance.BankTransactionRepository) error {
		inYear, err := records.ListAll(ctx, userID, finance.RecordFilter{Date: finance.FiscalYearBounds(req.Year)})
		if err != nil {
			return fmt.Errorf("load fiscal year %d: %w", req.Year, err)
		}
		closing, err := finance.CloseFiscalYear(userID, req.Year, inYear, s.now())
		if err != nil {
			return err
		}
		if err := records.SaveBatch(ctx, closing.Closed); err != nil {
			return fmt.Errorf("stamp fiscal year %d: %w", req.Year, err)
		}
		if err := records.Save(ctx, closing.ClosingEntry); err != nil {
			return fmt.Errorf("save closing entry: %w", err)
		}
		report = closing.Report
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateResource(ctx, userID, query.ResourceFinance)
	s.logger.Info("Fiscal year closed",
		zap.String("user_id", userID.String()),
		zap.Int("fiscal_year", report.FiscalYear),
		zap.Int("records_closed", report.RecordsClosed),
		zap.String("retained_amount", report.RetainedAmount.StringFixed(2)))
	return &report, nil
}

// ResetData deletes every record and bank transaction of the user
func (s *RecordService) ResetData(ctx context.Context, userID uuid.UUID, req ResetRequest) (*ResetResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if !req.Confirm {
		return nil, shared.ErrConfirmationNeeded
	}

	var result ResetResult
	err := s.uow.Do(ctx, func(records finance.RecordRepository, txs finance.BankTransactionRepository) error {
		n, err := txs.DeleteAll(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete bank transactions: %w", err)
		}
		result.TransactionsDeleted = n
		if n, err = records.DeleteAll(ctx, userID); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		result.RecordsDeleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateResource(ctx, userID, query.ResourceFinance)
	s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	s.logger.Warn("Finance data reset",
		zap.String("user_id", userID.String()),
		zap.Int64("records_deleted", result.RecordsDeleted),
		zap.Int64("transactions_deleted", result.TransactionsDeleted))
	return &result, nil
}
