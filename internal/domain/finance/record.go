package finance

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType classifies a financial record
type RecordType string

const (
	RecordTypeRevenue   RecordType = "revenue"
	RecordTypeExpense   RecordType = "expense"
	RecordTypeAsset     RecordType = "asset"
	RecordTypeLiability RecordType = "liability"
	RecordTypeEquity    RecordType = "equity"
)

// IsValid checks if the record type is a known value
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeRevenue, RecordTypeExpense, RecordTypeAsset, RecordTypeLiability, RecordTypeEquity:
		return true
	}
	return false
}

// RetainedEarningsCategory is the equity category of closing entries
const RetainedEarningsCategory = "Retained Earnings"

// UncategorizedCategory is used when a record has no category
const UncategorizedCategory = "Uncategorized"

var (
	ErrRecordNotFound      = shared.NewNotFoundError("Financial record")
	ErrTransactionNotFound = shared.NewNotFoundError("Bank transaction")
)

// FinancialRecord is a single ledger line
type FinancialRecord struct {
	shared.OwnedEntity
	RecordType    RecordType
	Category      string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	Reference     string
	PaymentMethod string
	IsReconciled  bool
	// FiscalYear is set once the year containing Date has been closed
	FiscalYear *int
}

// NewFinancialRecord creates a record. Amount must be non-negative; the
// record type carries the sign.
func NewFinancialRecord(userID uuid.UUID, recordType RecordType, category string, amount decimal.Decimal, date time.Time) (*FinancialRecord, error) {
	if !recordType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECORD_TYPE", "Invalid record type")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	return &FinancialRecord{
		OwnedEntity: shared.NewOwnedEntity(userID),
		RecordType:  recordType,
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Date:        date,
	}, nil
}

// CategoryOrDefault returns the category, falling back to Uncategorized
func (r *FinancialRecord) CategoryOrDefault() string {
	if r.Category == "" {
		return UncategorizedCategory
	}
	return r.Category
}

// IsClosed reports whether the record belongs to a closed fiscal year
func (r *FinancialRecord) IsClosed() bool {
	return r.FiscalYear != nil
}

// RecordUpdate holds optional updates for a record
type RecordUpdate struct {
	RecordType    *RecordType
	Category      *string
	Amount        *decimal.Decimal
	Description   *string
	Date          *time.Time
	Reference     *string
	PaymentMethod *string
	IsReconciled  *bool
}

// Apply applies the update. Closed records only accept reconciliation changes.
func (r *FinancialRecord) Apply(u RecordUpdate) error {
	if r.IsClosed() && (u.RecordType != nil || u.Amount != nil || u.Date != nil || u.Category != nil) {
		return shared.NewDomainError("INVALID_STATE", "Records of a closed fiscal year cannot be changed")
	}
	if u.RecordType != nil {
		if !u.RecordType.IsValid() {
			return shared.NewDomainError("INVALID_RECORD_TYPE", "Invalid record type")
		}
		r.RecordType = *u.RecordType
	}
	if u.Amount != nil {
		if u.Amount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
		}
		r.Amount = *u.Amount
	}
	if u.Category != nil {
		r.Category = strings.TrimSpace(*u.Category)
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.Reference != nil {
		r.Reference = *u.Reference
	}
	if u.PaymentMethod != nil {
		r.PaymentMethod = *u.PaymentMethod
	}
	if u.IsReconciled != nil {
		r.IsReconciled = *u.IsReconciled
	}
	r.Touch()
	return nil
}

// RecordFilter defines filtering options for financial records
type RecordFilter struct {
	shared.Filter
	RecordTypes      []RecordType
	Categories       []string
	Date             shared.DateRange
	UnreconciledOnly bool
}
