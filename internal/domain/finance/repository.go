package finance

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordRepository defines persistence operations for financial records
type RecordRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*FinancialRecord, error)
	List(ctx context.Context, userID uuid.UUID, filter RecordFilter) (shared.PageResult[FinancialRecord], error)
	ListAll(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]FinancialRecord, error)
	Save(ctx context.Context, record *FinancialRecord) error
	SaveBatch(ctx context.Context, records []FinancialRecord) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// TransactionFilter defines filtering options for bank transactions
type TransactionFilter struct {
	shared.Filter
	AccountID     string
	Date          shared.DateRange
	UnmatchedOnly bool
}

// BankTransactionRepository defines persistence operations for bank transactions
type BankTransactionRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*BankTransaction, error)
	List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) (shared.PageResult[BankTransaction], error)
	ListAll(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]BankTransaction, error)
	Save(ctx context.Context, tx *BankTransaction) error
	// Upsert inserts transactions, skipping ones whose external id is already stored.
	// Returns the number inserted.
	Upsert(ctx context.Context, txs []BankTransaction) (int, error)
	DeleteByAccount(ctx context.Context, userID uuid.UUID, accountID string) error
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UnitOfWork runs fn with repositories bound to one database transaction
type UnitOfWork interface {
	Do(ctx context.Context, fn func(records RecordRepository, txs BankTransactionRepository) error) error
}
