package finance

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/shared"
	csvimport "github.com/agencydesk/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRecordRequest represents a request to create a financial record
type CreateRecordRequest struct {
	RecordType    string          `json:"record_type" binding:"required,oneof=revenue expense asset liability equity"`
	Category      string          `json:"category" binding:"max=100"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description" binding:"max=500"`
	Date          time.Time       `json:"date" binding:"required"`
	Reference     string          `json:"reference" binding:"max=100"`
	PaymentMethod string          `json:"payment_method" binding:"max=50"`
}

// UpdateRecordRequest represents a partial record update
type UpdateRecordRequest struct {
	RecordType    *string          `json:"record_type" binding:"omitempty,oneof=revenue expense asset liability equity"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	Date          *time.Time       `json:"date"`
	Reference     *string          `json:"reference" binding:"omitempty,max=100"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,max=50"`
	IsReconciled  *bool            `json:"is_reconciled"`
}

// ToDomain converts the request into a domain update
func (r UpdateRecordRequest) ToDomain() finance.RecordUpdate {
	u := finance.RecordUpdate{
		Category:      r.Category,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date,
		Reference:     r.Reference,
		PaymentMethod: r.PaymentMethod,
		IsReconciled:  r.IsReconciled,
	}
	if r.RecordType != nil {
		t := finance.RecordType(*r.RecordType)
		u.RecordType = &t
	}
	return u
}

// RecordListFilter represents the query string of a record list
type RecordListFilter struct {
	Page             int        `form:"page"`
	PageSize         int        `form:"page_size"`
	OrderBy          string     `form:"order_by"`
	OrderDir         string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search           string     `form:"search"`
	RecordTypes      []string   `form:"record_type"`
	Categories       []string   `form:"category"`
	From             *time.Time `form:"from" time_format:"2006-01-02"`
	To               *time.Time `form:"to" time_format:"2006-01-02"`
	UnreconciledOnly bool       `form:"unreconciled"`
}

// ToDomain converts the list filter into the repository filter
func (f RecordListFilter) ToDomain() finance.RecordFilter {
	types := make([]finance.RecordType, 0, len(f.RecordTypes))
	for _, t := range f.RecordTypes {
		types = append(types, finance.RecordType(t))
	}
	return finance.RecordFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		RecordTypes:      types,
		Categories:       f.Categories,
		Date:             shared.DateRange{From: f.From, To: f.To},
		UnreconciledOnly: f.UnreconciledOnly,
	}
}

// PeriodQuery selects a reporting period; both ends are optional
type PeriodQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Range converts the query into a DateRange. To covers its whole day.
func (q PeriodQuery) Range() shared.DateRange {
	r := shared.DateRange{From: q.From}
	if q.To != nil {
		end := q.To.Add(24*time.Hour - time.Nanosecond)
		r.To = &end
	}
	return r
}

// RecordResponse represents a financial record in API responses
type RecordResponse struct {
	ID            uuid.UUID       `json:"id"`
	RecordType    string          `json:"record_type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	Reference     string          `json:"reference"`
	PaymentMethod string          `json:"payment_method"`
	IsReconciled  bool            `json:"is_reconciled"`
	FiscalYear    *int            `json:"fiscal_year,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToRecordResponse converts a domain FinancialRecord
func ToRecordResponse(r *finance.FinancialRecord) RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		RecordType:    string(r.RecordType),
		Category:      r.Category,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date,
		Reference:     r.Reference,
		PaymentMethod: r.PaymentMethod,
		IsReconciled:  r.IsReconciled,
		FiscalYear:    r.FiscalYear,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRecordResponses converts a slice of records
func ToRecordResponses(records []finance.FinancialRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i])
	}
	return out
}

// CloseFiscalYearRequest closes a year; Confirm must be true
type CloseFiscalYearRequest struct {
	Year    int  `json:"year" binding:"required,min=1900"`
	Confirm bool `json:"confirm"`
}

// ResetRequest wipes finance data; Confirm must be true
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetResult reports a finance data reset
type ResetResult struct {
	RecordsDeleted      int64 `json:"records_deleted"`
	TransactionsDeleted int64 `json:"transactions_deleted"`
}

// TransactionListFilter represents the query string of a bank transaction list
type TransactionListFilter struct {
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	Search        string     `form:"search"`
	AccountID     string     `form:"account_id"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	UnmatchedOnly bool       `form:"unmatched"`
}

// ToDomain converts the list filter into the repository filter
func (f TransactionListFilter) ToDomain() finance.TransactionFilter {
	return finance.TransactionFilter{
		Filter:        shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: f.Search, OrderBy: "date"}.Normalize(),
		AccountID:     f.AccountID,
		Date:          shared.DateRange{From: f.From, To: f.To},
		UnmatchedOnly: f.UnmatchedOnly,
	}
}

// TransactionResponse represents a bank transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       string          `json:"account_id"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ExternalID      string          `json:"external_id,omitempty"`
	MatchedRecordID *uuid.UUID      `json:"matched_record_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain BankTransaction
func ToTransactionResponse(t *finance.BankTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Date:            t.Date,
		Amount:          t.Amount,
		Description:     t.Description,
		ExternalID:      t.ExternalID,
		MatchedRecordID: t.MatchedRecordID,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []finance.BankTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}

// MatchRequest links a bank transaction to a record
type MatchRequest struct {
	RecordID uuid.UUID `json:"record_id" binding:"required"`
}

// AutoMatchResult lists the pairs found by automatic matching
type AutoMatchResult struct {
	Matched int             `json:"matched"`
	Matches []finance.Match `json:"matches"`
}

// ImportStatementResult reports a statement upload
type ImportStatementResult struct {
	TotalRows  int                  `json:"total_rows"`
	Parsed     int                  `json:"parsed"`
	Inserted   int                  `json:"inserted"`
	Duplicates int                  `json:"duplicates"`
	ErrorCount int                  `json:"error_count"`
	Errors     []csvimport.RowError `json:"errors"`
}

// ExportQuery selects the records exported to QuickBooks or a report CSV
type ExportQuery struct {
	PeriodQuery
	Format string `form:"format" binding:"omitempty,oneof=csv iif"`
}
