package finance

import (
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrYearAlreadyClosed = shared.NewDomainError("INVALID_STATE", "Fiscal year is already closed")

// FiscalYearBounds returns the first and last instant of a calendar year in UTC
func FiscalYearBounds(year int) shared.DateRange {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return shared.DateRange{From: &from, To: &to}
}

// ClosingReport is the outcome of a fiscal year close
type ClosingReport struct {
	FiscalYear     int             `json:"fiscal_year"`
	ClosedAt       time.Time       `json:"closed_at"`
	ProfitAndLoss  ProfitAndLoss   `json:"profit_and_loss"`
	ClosingEntryID uuid.UUID       `json:"closing_entry_id"`
	RetainedAmount decimal.Decimal `json:"retained_amount"`
	RecordsClosed  int             `json:"records_closed"`
}

// FiscalClose is the result of planning a close
type FiscalClose struct {
	Report       ClosingReport
	ClosingEntry *FinancialRecord
	// Closed holds the records of the year, stamped with the fiscal year
	Closed []FinancialRecord
}

// CloseFiscalYear stamps every record dated in year and produces a closing
// equity entry carrying the year's net income. It fails if any record of
// the year is already stamped.
func CloseFiscalYear(userID uuid.UUID, year int, records []FinancialRecord, now time.Time) (*FiscalClose, error) {
	if year < 1900 || year > now.Year() {
		return nil, shared.NewDomainError("INVALID_YEAR", fmt.Sprintf("Cannot close fiscal year %d", year))
	}
	bounds := FiscalYearBounds(year)
	inYear := make([]FinancialRecord, 0)
	for _, r := range records {
		if !bounds.Contains(r.Date) {
			continue
		}
		if r.FiscalYear != nil && *r.FiscalYear == year {
			return nil, ErrYearAlreadyClosed
		}
		inYear = append(inYear, r)
	}

	pl := ComputeProfitAndLoss(inYear, bounds)
	y := year
	// A net loss yields a negative equity entry
	entry := &FinancialRecord{
		OwnedEntity:  shared.NewOwnedEntity(userID),
		RecordType:   RecordTypeEquity,
		Category:     RetainedEarningsCategory,
		Amount:       pl.NetIncome,
		Description:  fmt.Sprintf("Fiscal year %d closing entry", year),
		Date:         *bounds.To,
		Reference:    fmt.Sprintf("FY%d-CLOSE", year),
		IsReconciled: true,
		FiscalYear:   &y,
	}

	for i := range inYear {
		inYear[i].FiscalYear = &y
		inYear[i].Touch()
	}

	return &FiscalClose{
		Report: ClosingReport{
			FiscalYear:     year,
			ClosedAt:       now,
			ProfitAndLoss:  pl,
			ClosingEntryID: entry.ID,
			RetainedAmount: pl.NetIncome,
			RecordsClosed:  len(inYear),
		},
		ClosingEntry: entry,
		Closed:       inYear,
	}, nil
}
