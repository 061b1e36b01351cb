package finance

import (
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func rec(t *testing.T, typ RecordType, cat string, amount string, date time.Time) FinancialRecord {
	t.Helper()
	r, err := NewFinancialRecord(uuid.New(), typ, cat, decimal.RequireFromString(amount), date)
	require.NoError(t, err)
	return *r
}

func TestNewFinancialRecord_Validation(t *testing.T) {
	_, err := NewFinancialRecord(uuid.New(), "bogus", "", decimal.NewFromInt(1), time.Now())
	assert.Error(t, err)
	_, err = NewFinancialRecord(uuid.New(), RecordTypeRevenue, "", decimal.NewFromInt(-1), time.Now())
	assert.Error(t, err)
	_, err = NewFinancialRecord(uuid.New(), RecordTypeRevenue, "", decimal.NewFromInt(1), time.Time{})
	assert.Error(t, err)
}

func TestComputeSummary(t *testing.T) {
	records := []FinancialRecord{
		rec(t, RecordTypeRevenue, "Consulting", "1000", day(2025, 1, 5)),
		rec(t, RecordTypeRevenue, "Consulting", "500", day(2025, 1, 6)),
		rec(t, RecordTypeRevenue, "", "250", day(2025, 1, 7)),
		rec(t, RecordTypeExpense, "Software", "300", day(2025, 1, 8)),
		rec(t, RecordTypeAsset, "Laptop", "2000", day(2025, 1, 9)),
	}
	s := ComputeSummary(records)
	assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(1750)))
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(300)))
	assert.True(t, s.NetIncome.Equal(decimal.NewFromInt(1450)))
	assert.True(t, s.RevenueSummary["Consulting"].Equal(decimal.NewFromInt(1500)))
	assert.True(t, s.RevenueSummary[UncategorizedCategory].Equal(decimal.NewFromInt(250)))
	assert.Len(t, s.ExpenseSummary, 1)
}

func TestComputeProfitAndLoss(t *testing.T) {
	records := []FinancialRecord{
		rec(t, RecordTypeRevenue, "Design", "400", day(2025, 3, 1)),
		rec(t, RecordTypeExpense, "Hosting", "100", day(2025, 3, 2)),
		rec(t, RecordTypeRevenue, "Design", "999", day(2025, 5, 1)),
	}
	from, to := day(2025, 3, 1), day(2025, 3, 31)
	pl := ComputeProfitAndLoss(records, shared.DateRange{From: &from, To: &to})
	assert.True(t, pl.TotalRevenue.Equal(decimal.NewFromInt(400)))
	assert.True(t, pl.NetIncome.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "75", pl.ProfitMargin.String())

	empty := ComputeProfitAndLoss(nil, shared.DateRange{})
	assert.True(t, empty.ProfitMargin.IsZero())
}

func TestComputeBalanceSheet(t *testing.T) {
	records := []FinancialRecord{
		rec(t, RecordTypeAsset, "Cash", "1500", day(2025, 1, 1)),
		rec(t, RecordTypeLiability, "Loan", "500", day(2025, 1, 1)),
		rec(t, RecordTypeEquity, "Capital", "700", day(2025, 1, 1)),
		rec(t, RecordTypeRevenue, "Sales", "400", day(2025, 1, 2)),
		rec(t, RecordTypeExpense, "Rent", "100", day(2025, 1, 3)),
		rec(t, RecordTypeAsset, "Cash", "999", day(2025, 6, 1)),
	}
	bs := ComputeBalanceSheet(records, day(2025, 2, 1))
	assert.True(t, bs.TotalAssets.Equal(decimal.NewFromInt(1500)))
	assert.True(t, bs.RetainedEarnings.Equal(decimal.NewFromInt(300)))
	assert.True(t, bs.Balanced)

	records = append(records, rec(t, RecordTypeLiability, "Card", "1", day(2025, 1, 4)))
	assert.False(t, ComputeBalanceSheet(records, day(2025, 2, 1)).Balanced)
}

func TestComputeCashFlow(t *testing.T) {
	records := []FinancialRecord{
		rec(t, RecordTypeRevenue, "Sales", "1000", day(2025, 1, 10)),
		rec(t, RecordTypeExpense, "Rent", "400", day(2025, 1, 11)),
		rec(t, RecordTypeAsset, "Laptop", "300", day(2025, 2, 1)),
		rec(t, RecordTypeLiability, "Loan", "200", day(2025, 2, 2)),
	}
	cf := ComputeCashFlow(records, shared.DateRange{})
	assert.True(t, cf.Operating.Equal(decimal.NewFromInt(600)))
	assert.True(t, cf.Investing.Equal(decimal.NewFromInt(-300)))
	assert.True(t, cf.Financing.Equal(decimal.NewFromInt(200)))
	assert.True(t, cf.NetChange.Equal(decimal.NewFromInt(500)))
	require.Len(t, cf.Monthly, 2)
	assert.Equal(t, "2025-01", cf.Monthly[0].Month)
	assert.True(t, cf.Monthly[1].Net.Equal(decimal.NewFromInt(-100)))
}

func TestFindBestMatch_ClosestDate(t *testing.T) {
	records := []FinancialRecord{
		rec(t, RecordTypeExpense, "A", "50", day(2025, 4, 1)),
		rec(t, RecordTypeExpense, "B", "50", day(2025, 4, 9)),
		rec(t, RecordTypeExpense, "C", "50", day(2025, 4, 11)),
		rec(t, RecordTypeExpense, "D", "51", day(2025, 4, 10)),
	}
	tx := BankTransaction{OwnedEntity: shared.NewOwnedEntity(uuid.New()), Date: day(2025, 4, 10), Amount: decimal.NewFromInt(-50)}

	assert.Equal(t, 1, FindBestMatch(tx, records, nil))

	records[1].IsReconciled = true
	assert.Equal(t, 2, FindBestMatch(tx, records, nil))

	far := BankTransaction{Date: day(2025, 5, 30), Amount: decimal.NewFromInt(50)}
	assert.Equal(t, -1, FindBestMatch(far, records, nil))
}

func TestAutoMatchAndReport(t *testing.T) {
	user := uuid.New()
	records := []FinancialRecord{
		rec(t, RecordTypeRevenue, "Sales", "100", day(2025, 4, 1)),
		rec(t, RecordTypeExpense, "Rent", "40", day(2025, 4, 2)),
	}
	txs := []BankTransaction{
		{OwnedEntity: shared.NewOwnedEntity(user), AccountID: "acc", Date: day(2025, 4, 2), Amount: decimal.NewFromInt(100)},
		{OwnedEntity: shared.NewOwnedEntity(user), AccountID: "acc", Date: day(2025, 4, 2), Amount: decimal.NewFromInt(-15)},
	}

	matches := AutoMatch(txs, records)
	require.Len(t, matches, 1)
	assert.Equal(t, records[0].ID, matches[0].RecordID)
	assert.Equal(t, 1, matches[0].DaysApart)
	assert.True(t, records[0].IsReconciled)

	rep := BuildReconciliationReport("acc", txs, records)
	assert.Equal(t, 1, rep.MatchedCount)
	assert.Len(t, rep.UnmatchedTransactions, 1)
	assert.Len(t, rep.UnmatchedRecords, 1)
	assert.True(t, rep.StatementBalance.Equal(decimal.NewFromInt(85)))
	assert.True(t, rep.BookBalance.Equal(decimal.NewFromInt(60)))
	assert.True(t, rep.Difference.Equal(decimal.NewFromInt(25)))

	require.NoError(t, txs[0].Unmatch(&records[0]))
	assert.False(t, records[0].IsReconciled)
	assert.Error(t, txs[0].Unmatch(nil))
}

func TestCloseFiscalYear(t *testing.T) {
	user := uuid.New()
	now := day(2026, 2, 1)
	records := []FinancialRecord{
		rec(t, RecordTypeRevenue, "Sales", "900", day(2025, 3, 1)),
		rec(t, RecordTypeExpense, "Rent", "200", day(2025, 7, 1)),
		rec(t, RecordTypeRevenue, "Sales", "50", day(2026, 1, 5)),
	}

	fc, err := CloseFiscalYear(user, 2025, records, now)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.Report.RecordsClosed)
	assert.True(t, fc.ClosingEntry.Amount.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, RetainedEarningsCategory, fc.ClosingEntry.Category)
	for _, r := range fc.Closed {
		require.NotNil(t, r.FiscalYear)
		assert.Equal(t, 2025, *r.FiscalYear)
	}

	closed := append(fc.Closed, *fc.ClosingEntry, records[2])
	_, err = CloseFiscalYear(user, 2025, closed, now)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	bs := ComputeBalanceSheet(closed, now)
	assert.True(t, bs.TotalEquity.Equal(decimal.NewFromInt(700)))
	assert.True(t, bs.RetainedEarnings.Equal(decimal.NewFromInt(50)))

	_, err = CloseFiscalYear(user, 2030, records, now)
	assert.Error(t, err)
}

func TestRecord_ApplyClosed(t *testing.T) {
	r := rec(t, RecordTypeRevenue, "Sales", "10", day(2025, 1, 1))
	y := 2025
	r.FiscalYear = &y
	amt := decimal.NewFromInt(20)
	assert.Error(t, r.Apply(RecordUpdate{Amount: &amt}))
	ok := true
	assert.NoError(t, r.Apply(RecordUpdate{IsReconciled: &ok}))
}
