package finance

import (
	"sort"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Summary totals revenue and expenses with per-category breakdowns
type Summary struct {
	TotalRevenue   decimal.Decimal            `json:"total_revenue"`
	TotalExpenses  decimal.Decimal            `json:"total_expenses"`
	NetIncome      decimal.Decimal            `json:"net_income"`
	RevenueSummary map[string]decimal.Decimal `json:"revenue_summary"`
	ExpenseSummary map[string]decimal.Decimal `json:"expense_summary"`
}

// ComputeSummary builds the summary over records
func ComputeSummary(records []FinancialRecord) Summary {
	s := Summary{
		RevenueSummary: map[string]decimal.Decimal{},
		ExpenseSummary: map[string]decimal.Decimal{},
	}
	for i := range records {
		r := &records[i]
		switch r.RecordType {
		case RecordTypeRevenue:
			s.TotalRevenue = s.TotalRevenue.Add(r.Amount)
			s.RevenueSummary[r.CategoryOrDefault()] = s.RevenueSummary[r.CategoryOrDefault()].Add(r.Amount)
		case RecordTypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(r.Amount)
			s.ExpenseSummary[r.CategoryOrDefault()] = s.ExpenseSummary[r.CategoryOrDefault()].Add(r.Amount)
		}
	}
	s.NetIncome = s.TotalRevenue.Sub(s.TotalExpenses)
	return s
}

// LineItem is one category line of a statement
type LineItem struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// linesFrom turns a category map into lines sorted by category
func linesFrom(m map[string]decimal.Decimal) []LineItem {
	lines := make([]LineItem, 0, len(m))
	for k, v := range m {
		lines = append(lines, LineItem{Category: k, Amount: v})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Category < lines[j].Category })
	return lines
}

// ProfitAndLoss is the income statement for a period
type ProfitAndLoss struct {
	Period        shared.DateRange `json:"period"`
	Revenue       []LineItem       `json:"revenue"`
	Expenses      []LineItem       `json:"expenses"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	GrossProfit   decimal.Decimal  `json:"gross_profit"`
	NetIncome     decimal.Decimal  `json:"net_income"`
	ProfitMargin  decimal.Decimal  `json:"profit_margin"`
}

// ComputeProfitAndLoss builds the P&L for records whose date falls in period
func ComputeProfitAndLoss(records []FinancialRecord, period shared.DateRange) ProfitAndLoss {
	inPeriod := make([]FinancialRecord, 0, len(records))
	for _, r := range records {
		if period.Contains(r.Date) {
			inPeriod = append(inPeriod, r)
		}
	}
	s := ComputeSummary(inPeriod)
	return ProfitAndLoss{
		Period:        period,
		Revenue:       linesFrom(s.RevenueSummary),
		Expenses:      linesFrom(s.ExpenseSummary),
		TotalRevenue:  s.TotalRevenue,
		TotalExpenses: s.TotalExpenses,
		GrossProfit:   s.NetIncome,
		NetIncome:     s.NetIncome,
		ProfitMargin:  shared.Percent(s.NetIncome, s.TotalRevenue),
	}
}

// BalanceSheet is the position as of a date
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	Assets           []LineItem      `json:"assets"`
	Liabilities      []LineItem      `json:"liabilities"`
	Equity           []LineItem      `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	Balanced         bool            `json:"balanced"`
}

// ComputeBalanceSheet builds the balance sheet from records dated on or
// before asOf. Retained earnings is cumulative net income over records not
// yet folded into equity by a fiscal close.
func ComputeBalanceSheet(records []FinancialRecord, asOf time.Time) BalanceSheet {
	assets := map[string]decimal.Decimal{}
	liabilities := map[string]decimal.Decimal{}
	equity := map[string]decimal.Decimal{}
	bs := BalanceSheet{AsOf: asOf}
	for i := range records {
		r := &records[i]
		if r.Date.After(asOf) {
			continue
		}
		switch r.RecordType {
		case RecordTypeAsset:
			assets[r.CategoryOrDefault()] = assets[r.CategoryOrDefault()].Add(r.Amount)
			bs.TotalAssets = bs.TotalAssets.Add(r.Amount)
		case RecordTypeLiability:
			liabilities[r.CategoryOrDefault()] = liabilities[r.CategoryOrDefault()].Add(r.Amount)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(r.Amount)
		case RecordTypeEquity:
			equity[r.CategoryOrDefault()] = equity[r.CategoryOrDefault()].Add(r.Amount)
			bs.TotalEquity = bs.TotalEquity.Add(r.Amount)
		case RecordTypeRevenue:
			if !r.IsClosed() {
				bs.RetainedEarnings = bs.RetainedEarnings.Add(r.Amount)
			}
		case RecordTypeExpense:
			if !r.IsClosed() {
				bs.RetainedEarnings = bs.RetainedEarnings.Sub(r.Amount)
			}
		}
	}
	bs.Assets = linesFrom(assets)
	bs.Liabilities = linesFrom(liabilities)
	bs.Equity = linesFrom(equity)
	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity).Add(bs.RetainedEarnings))
	return bs
}

// CashFlowMonth is one month of the cash flow breakdown
type CashFlowMonth struct {
	Month     string          `json:"month"`
	Operating decimal.Decimal `json:"operating"`
	Investing decimal.Decimal `json:"investing"`
	Financing decimal.Decimal `json:"financing"`
	Net       decimal.Decimal `json:"net"`
}

// CashFlow is the cash flow statement for a period
type CashFlow struct {
	Period    shared.DateRange `json:"period"`
	Operating decimal.Decimal  `json:"operating"`
	Investing decimal.Decimal  `json:"investing"`
	Financing decimal.Decimal  `json:"financing"`
	NetChange decimal.Decimal  `json:"net_change"`
	Monthly   []CashFlowMonth  `json:"monthly"`
}

// ComputeCashFlow builds the cash flow statement. Asset purchases are
// investing outflows; liability and equity records are financing inflows.
func ComputeCashFlow(records []FinancialRecord, period shared.DateRange) CashFlow {
	cf := CashFlow{Period: period}
	months := map[string]*CashFlowMonth{}
	for i := range records {
		r := &records[i]
		if !period.Contains(r.Date) {
			continue
		}
		key := r.Date.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &CashFlowMonth{Month: key}
			months[key] = m
		}
		switch r.RecordType {
		case RecordTypeRevenue:
			m.Operating = m.Operating.Add(r.Amount)
		case RecordTypeExpense:
			m.Operating = m.Operating.Sub(r.Amount)
		case RecordTypeAsset:
			m.Investing = m.Investing.Sub(r.Amount)
		case RecordTypeLiability, RecordTypeEquity:
			if r.Category == RetainedEarningsCategory {
				continue
			}
			m.Financing = m.Financing.Add(r.Amount)
		}
	}
	cf.Monthly = make([]CashFlowMonth, 0, len(months))
	for _, m := range months {
		m.Net = m.Operating.Add(m.Investing).Add(m.Financing)
		cf.Operating = cf.Operating.Add(m.Operating)
		cf.Investing = cf.Investing.Add(m.Investing)
		cf.Financing = cf.Financing.Add(m.Financing)
		cf.Monthly = append(cf.Monthly, *m)
	}
	sort.Slice(cf.Monthly, func(i, j int) bool { return cf.Monthly[i].Month < cf.Monthly[j].Month })
	cf.NetChange = cf.Operating.Add(cf.Investing).Add(cf.Financing)
	return cf
}
