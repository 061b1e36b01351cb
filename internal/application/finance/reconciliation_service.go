package finance

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/shared"
	csvimport "github.com/agencydesk/backend/internal/infrastructure/import"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxStatementRows bounds an uploaded statement
const MaxStatementRows = 10000

// ReconciliationService matches bank transactions against financial records
type ReconciliationService struct {
	records finance.RecordRepository
	txs     finance.BankTransactionRepository
	uow     finance.UnitOfWork
	cache   *query.Client
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(records finance.RecordRepository, txs finance.BankTransactionRepository, uow finance.UnitOfWork, cache *query.Client, logger *zap.Logger, opts ...Option) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &ReconciliationService{
		records: records,
		txs:     txs,
		uow:     uow,
		cache:   cache,
		metrics: o.metrics,
		logger:  logger,
	}
}

// ListTransactions returns a page of bank transactions
func (s *ReconciliationService) ListTransactions(ctx context.Context, userID uuid.UUID, filter TransactionListFilter) (shared.Paginated[TransactionResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceBanking, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[TransactionResponse], error) {
		page, err := s.txs.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[TransactionResponse]{}, fmt.Errorf("list bank transactions: %w", err)
		}
		return shared.MapPage(page, ToTransactionResponses).ToPaginated(), nil
	})
}

// ImportStatement parses a bank statement CSV and stores its transactions.
// Rows whose external id is already stored count as duplicates.
func (s *ReconciliationService) ImportStatement(ctx context.Context, userID uuid.UUID, accountID string, r io.Reader) (*ImportStatementResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	parsed, err := csvimport.ParseStatement(r, csvimport.StatementOptions{
		UserID:    userID,
		AccountID: accountID,
		MaxRows:   MaxStatementRows,
	})
	if err != nil {
		return nil, err
	}

	inserted := 0
	if len(parsed.Transactions) > 0 {
		if inserted, err = s.txs.Upsert(ctx, parsed.Transactions); err != nil {
			return nil, fmt.Errorf("store bank transactions: %w", err)
		}
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	s.metrics.TransactionsSynced(ctx, inserted)

	s.logger.Info("Bank statement imported",
		zap.String("user_id", userID.String()),
		zap.String("account_id", accountID),
		zap.Int("rows", parsed.TotalRows),
		zap.Int("inserted", inserted),
		zap.Int("errors", parsed.ErrorCount))

	return &ImportStatementResult{
		TotalRows:  parsed.TotalRows,
		Parsed:     len(parsed.Transactions),
		Inserted:   inserted,
		Duplicates: len(parsed.Transactions) - inserted,
		ErrorCount: parsed.ErrorCount,
		Errors:     parsed.Errors,
	}, nil
}

// AutoMatch pairs unmatched transactions of accountID (all accounts when
// empty) with unreconciled records of equal amount dated closest
func (s *ReconciliationService) AutoMatch(ctx context.Context, userID uuid.UUID, accountID string) (*AutoMatchResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}

	var matches []finance.Match
	err := s.uow.Do(ctx, func(records finance.RecordRepository, txs finance.BankTransactionRepository) error {
		pending, err := txs.ListAll(ctx, userID, finance.TransactionFilter{AccountID: accountID, UnmatchedOnly: true})
		if err != nil {
			return fmt.Errorf("load unmatched transactions: %w", err)
		}
		open, err := records.ListAll(ctx, userID, finance.RecordFilter{UnreconciledOnly: true})
		if err != nil {
			return fmt.Errorf("load unreconciled records: %w", err)
		}

		matches = finance.AutoMatch(pending, open)
		if len(matches) == 0 {
			return nil
		}

		matched := make(map[uuid.UUID]bool, len(matches)*2)
		for _, m := range matches {
			matched[m.TransactionID] = true
			matched[m.RecordID] = true
		}
		for i := range pending {
			if matched[pending[i].ID] {
				if err := txs.Save(ctx, &pending[i]); err != nil {
					return fmt.Errorf("save matched transaction: %w", err)
				}
			}
		}
		reconciled := make([]finance.FinancialRecord, 0, len(matches))
		for _, r := range open {
			if matched[r.ID] {
				reconciled = append(reconciled, r)
			}
		}
		return records.SaveBatch(ctx, reconciled)
	})
	if err != nil {
		return nil, err
	}

	if matches == nil {
		matches = []finance.Match{}
	}
	if len(matches) > 0 {
		s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	}
	return &AutoMatchResult{Matched: len(matches), Matches: matches}, nil
}

// Match links a transaction to a record by hand
func (s *ReconciliationService) Match(ctx context.Context, userID, transactionID uuid.UUID, req MatchRequest) (*TransactionResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	var resp TransactionResponse
	err := s.uow.Do(ctx, func(records finance.RecordRepository, txs finance.BankTransactionRepository) error {
		tx, err := txs.FindByID(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		rec, err := records.FindByID(ctx, userID, req.RecordID)
		if err != nil {
			return err
		}
		if err := tx.Match(rec); err != nil {
			return err
		}
		if err := txs.Save(ctx, tx); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		if err := records.Save(ctx, rec); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		resp = ToTransactionResponse(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	return &resp, nil
}

// Unmatch removes a transaction's link and clears the record's reconciled flag
func (s *ReconciliationService) Unmatch(ctx context.Context, userID, transactionID uuid.UUID) (*TransactionResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	var resp TransactionResponse
	err := s.uow.Do(ctx, func(records finance.RecordRepository, txs finance.BankTransactionRepository) error {
		tx, err := txs.FindByID(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		var rec *finance.FinancialRecord
		if tx.MatchedRecordID != nil {
			// The record may have been deleted since
			rec, err = records.FindByID(ctx, userID, *tx.MatchedRecordID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if err != nil {
				rec = nil
			}
		}
		if err := tx.Unmatch(rec); err != nil {
			return err
		}
		if err := txs.Save(ctx, tx); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		if rec != nil {
			if err := records.Save(ctx, rec); err != nil {
				return fmt.Errorf("save record: %w", err)
			}
		}
		resp = ToTransactionResponse(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	return &resp, nil
}

// GetReport summarises the reconciliation state of an account
func (s *ReconciliationService) GetReport(ctx context.Context, userID uuid.UUID, accountID string) (finance.ReconciliationReport, error) {
	if err := shared.RequireUser(userID); err != nil {
		return finance.ReconciliationReport{}, err
	}
	key := query.Key(query.ResourceBanking, "report", accountID)
	return query.Fetch(ctx, s.cache, userID, key, query.TierUserData, func(ctx context.Context) (finance.ReconciliationReport, error) {
		txs, err := s.txs.ListAll(ctx, userID, finance.TransactionFilter{AccountID: accountID})
		if err != nil {
			return finance.ReconciliationReport{}, fmt.Errorf("load transactions: %w", err)
		}
		records, err := s.records.ListAll(ctx, userID, finance.RecordFilter{})
		if err != nil {
			return finance.ReconciliationReport{}, fmt.Errorf("load records: %w", err)
		}
		return finance.BuildReconciliationReport(accountID, txs, records), nil
	})
}
