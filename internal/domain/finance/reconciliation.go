package finance

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchWindow is how far apart a bank transaction and a record may be dated
const MatchWindow = 3 * 24 * time.Hour

// BankTransaction is a statement line pulled from a connected bank account.
// Negative amounts are outflows.
type BankTransaction struct {
	shared.OwnedEntity
	AccountID       string
	Date            time.Time
	Amount          decimal.Decimal
	Description     string
	ExternalID      string
	MatchedRecordID *uuid.UUID
}

// IsMatched reports whether the transaction is linked to a record
func (t *BankTransaction) IsMatched() bool {
	return t.MatchedRecordID != nil
}

// Match links the transaction to a record and marks the record reconciled
func (t *BankTransaction) Match(r *FinancialRecord) error {
	if t.IsMatched() {
		return shared.NewDomainError("ALREADY_MATCHED", "Bank transaction is already matched")
	}
	if r.IsReconciled {
		return shared.NewDomainError("ALREADY_RECONCILED", "Financial record is already reconciled")
	}
	id := r.ID
	t.MatchedRecordID = &id
	t.Touch()
	r.IsReconciled = true
	r.Touch()
	return nil
}

// Unmatch removes the link and clears the record's reconciled flag
func (t *BankTransaction) Unmatch(r *FinancialRecord) error {
	if !t.IsMatched() {
		return shared.NewDomainError("NOT_MATCHED", "Bank transaction is not matched")
	}
	t.MatchedRecordID = nil
	t.Touch()
	if r != nil {
		r.IsReconciled = false
		r.Touch()
	}
	return nil
}

// SignedAmount returns the record amount as a cash movement: revenue,
// liability and equity are inflows, expenses and assets outflows.
func (r *FinancialRecord) SignedAmount() decimal.Decimal {
	switch r.RecordType {
	case RecordTypeExpense, RecordTypeAsset:
		return r.Amount.Neg()
	}
	return r.Amount
}

// Match pairs a bank transaction with a record
type Match struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	RecordID      uuid.UUID `json:"record_id"`
	DaysApart     int       `json:"days_apart"`
}

// FindBestMatch returns the index of the unreconciled record with the same
// absolute amount whose date is closest to the transaction, within the
// match window. Ties keep the earliest candidate. Returns -1 when none.
func FindBestMatch(tx BankTransaction, records []FinancialRecord, taken map[uuid.UUID]bool) int {
	best := -1
	var bestGap time.Duration
	for i := range records {
		r := &records[i]
		if r.IsReconciled || taken[r.ID] {
			continue
		}
		if !r.Amount.Abs().Equal(tx.Amount.Abs()) {
			continue
		}
		gap := r.Date.Sub(tx.Date)
		if gap < 0 {
			gap = -gap
		}
		if gap > MatchWindow {
			continue
		}
		if best == -1 || gap < bestGap {
			best = i
			bestGap = gap
		}
	}
	return best
}

// AutoMatch greedily matches each unmatched transaction, in order, to its
// best record. Matched records are marked reconciled in place.
func AutoMatch(txs []BankTransaction, records []FinancialRecord) []Match {
	taken := map[uuid.UUID]bool{}
	matches := make([]Match, 0)
	for i := range txs {
		tx := &txs[i]
		if tx.IsMatched() {
			continue
		}
		idx := FindBestMatch(*tx, records, taken)
		if idx < 0 {
			continue
		}
		rec := &records[idx]
		if err := tx.Match(rec); err != nil {
			continue
		}
		taken[rec.ID] = true
		gap := rec.Date.Sub(tx.Date)
		if gap < 0 {
			gap = -gap
		}
		matches = append(matches, Match{
			TransactionID: tx.ID,
			RecordID:      rec.ID,
			DaysApart:     int(gap.Hours() / 24),
		})
	}
	return matches
}

// ReconciliationReport summarises the state of an account's reconciliation
type ReconciliationReport struct {
	AccountID             string            `json:"account_id"`
	MatchedCount          int               `json:"matched_count"`
	UnmatchedTransactions []BankTransaction `json:"unmatched_transactions"`
	UnmatchedRecords      []FinancialRecord `json:"unmatched_records"`
	StatementBalance      decimal.Decimal   `json:"statement_balance"`
	BookBalance           decimal.Decimal   `json:"book_balance"`
	Difference            decimal.Decimal   `json:"difference"`
}

// BuildReconciliationReport computes the report. The statement balance sums
// all transactions; the book balance sums signed reconciled records plus
// unreconciled ones, so the difference is what is missing from the books.
func BuildReconciliationReport(accountID string, txs []BankTransaction, records []FinancialRecord) ReconciliationReport {
	rep := ReconciliationReport{
		AccountID:             accountID,
		UnmatchedTransactions: make([]BankTransaction, 0),
		UnmatchedRecords:      make([]FinancialRecord, 0),
	}
	for _, tx := range txs {
		rep.StatementBalance = rep.StatementBalance.Add(tx.Amount)
		if tx.IsMatched() {
			rep.MatchedCount++
		} else {
			rep.UnmatchedTransactions = append(rep.UnmatchedTransactions, tx)
		}
	}
	for i := range records {
		r := &records[i]
		if r.Category == RetainedEarningsCategory {
			continue
		}
		rep.BookBalance = rep.BookBalance.Add(r.SignedAmount())
		if !r.IsReconciled {
			rep.UnmatchedRecords = append(rep.UnmatchedRecords, *r)
		}
	}
	rep.Difference = rep.StatementBalance.Sub(rep.BookBalance)
	return rep
}
