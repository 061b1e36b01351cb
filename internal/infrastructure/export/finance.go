package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)
	foldCaser  = cases.Fold()
)

// QuickBooksCSVHeader is the column layout of the QuickBooks CSV import
var QuickBooksCSVHeader = []string{"Date", "Transaction Type", "Name", "Account", "Memo", "Amount"}

// accountFor resolves the mapped account, matching categories case-insensitively
func accountFor(cfg settings.QuickBooksExport, category string, expense bool) string {
	if acct, ok := cfg.AccountMapping[category]; ok && acct != "" {
		return acct
	}
	want := foldCaser.String(category)
	for k, v := range cfg.AccountMapping {
		if v != "" && foldCaser.String(k) == want {
			return v
		}
	}
	return cfg.AccountFor(category, expense)
}

func transactionType(r finance.FinancialRecord) string {
	switch r.RecordType {
	case finance.RecordTypeRevenue:
		return "Deposit"
	case finance.RecordTypeExpense:
		return "Check"
	}
	return "General Journal"
}

func dateFormat(cfg settings.QuickBooksExport) string {
	if cfg.DateFormat == "" {
		return iifDateLayout
	}
	return cfg.DateFormat
}

// signedForBank returns the amount as seen by the bank account
func signedForBank(r finance.FinancialRecord) decimal.Decimal {
	if r.RecordType == finance.RecordTypeExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}

// QuickBooksCSV renders revenue and expense records for QuickBooks import.
// Expenses are negative.
func QuickBooksCSV(records []finance.FinancialRecord, cfg settings.QuickBooksExport, now time.Time) (File, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if r.RecordType != finance.RecordTypeRevenue && r.RecordType != finance.RecordTypeExpense {
			continue
		}
		rows = append(rows, []string{
			r.Date.Format(dateFormat(cfg)),
			transactionType(r),
			r.Reference,
			accountFor(cfg, r.CategoryOrDefault(), r.RecordType == finance.RecordTypeExpense),
			r.Description,
			signedForBank(r).StringFixed(2),
		})
	}
	return CSV(fmt.Sprintf("quickbooks-%s.csv", now.Format("2006-01-02")), QuickBooksCSVHeader, rows)
}

// QuickBooksIIF renders revenue and expense records as IIF transactions
// posted against the configured bank account.
func QuickBooksIIF(records []finance.FinancialRecord, cfg settings.QuickBooksExport, now time.Time) File {
	bank := cfg.BankAccount
	if bank == "" {
		bank = settings.DefaultQuickBooksExport().BankAccount
	}
	txs := make([]IIFTransaction, 0, len(records))
	for _, r := range records {
		if r.RecordType != finance.RecordTypeRevenue && r.RecordType != finance.RecordTypeExpense {
			continue
		}
		txs = append(txs, IIFTransaction{
			ID:           r.ID.String(),
			Type:         transactionType(r),
			Date:         r.Date,
			Account:      bank,
			SplitAccount: accountFor(cfg, r.CategoryOrDefault(), r.RecordType == finance.RecordTypeExpense),
			Name:         r.Reference,
			Amount:       signedForBank(r),
			Memo:         r.Description,
		})
	}
	return IIF(fmt.Sprintf("quickbooks-%s.iif", now.Format("2006-01-02")), txs)
}

// FinancialReportCSV renders a summary report: one row per category with its
// record type, then the totals.
func FinancialReportCSV(summary finance.Summary, now time.Time) (File, error) {
	header := []string{"Section", "Category", "Amount"}
	rows := make([][]string, 0)

	appendSection := func(section finance.RecordType, m map[string]decimal.Decimal) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, []string{titleCaser.String(string(section)), k, m[k].StringFixed(2)})
		}
	}
	appendSection(finance.RecordTypeRevenue, summary.RevenueSummary)
	appendSection(finance.RecordTypeExpense, summary.ExpenseSummary)

	rows = append(rows,
		[]string{"Total", "Total Revenue", summary.TotalRevenue.StringFixed(2)},
		[]string{"Total", "Total Expenses", summary.TotalExpenses.StringFixed(2)},
		[]string{"Total", "Net Income", summary.NetIncome.StringFixed(2)},
	)
	return CSV(fmt.Sprintf("financial-report-%s.csv", now.Format("2006-01-02")), header, rows)
}

// LeadsCSVHeader is the column layout of the leads export
var LeadsCSVHeader = []string{"Name", "Email", "Phone", "Company", "Source", "Status", "Score", "Estimated Value", "Created At"}

// LeadsCSV renders leads for download
func LeadsCSV(leads []marketing.Lead, now time.Time) (File, error) {
	rows := make([][]string, len(leads))
	for i, l := range leads {
		rows[i] = []string{
			l.Name,
			l.Email,
			l.Phone,
			l.Company,
			string(l.Source),
			string(l.Status),
			fmt.Sprintf("%d", l.Score),
			l.EstimatedValue.StringFixed(2),
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return CSV(fmt.Sprintf("leads-%s.csv", now.Format("2006-01-02")), LeadsCSVHeader, rows)
}
