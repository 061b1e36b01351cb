package csvimport

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Column aliases accepted in statement files
var (
	dateColumns        = []string{"date", "transaction date", "posted date", "posting date"}
	descriptionColumns = []string{"description", "memo", "details", "payee", "name"}
	amountColumns      = []string{"amount", "transaction amount"}
	debitColumns       = []string{"debit", "withdrawal", "withdrawals"}
	creditColumns      = []string{"credit", "deposit", "deposits"}
	idColumns          = []string{"id", "transaction id", "reference", "fitid"}
)

// DateLayouts are tried in order for the date column
var DateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "02.01.2006", "2006/01/02", time.RFC3339}

// StatementOptions configures ParseStatement
type StatementOptions struct {
	UserID    uuid.UUID
	AccountID string
	Delimiter rune
	MaxErrors int
	// MaxRows rejects files with more data rows; zero means no limit
	MaxRows int
}

// StatementResult holds the parsed transactions and row errors
type StatementResult struct {
	Transactions []finance.BankTransaction
	Errors       []RowError
	TotalRows    int
	ErrorCount   int
}

type statementColumns struct {
	date, description, amount, debit, credit, id string
}

// ParseStatement reads a bank statement CSV. Amounts come from a signed
// amount column, or from separate debit and credit columns where debits
// become outflows. Rows without an id column value get none, so they are
// always inserted by the repository upsert.
func ParseStatement(r io.Reader, opts StatementOptions) (*StatementResult, error) {
	if opts.AccountID == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account id is required")
	}
	var parserOpts []ParserOption
	if opts.Delimiter != 0 {
		parserOpts = append(parserOpts, WithDelimiter(opts.Delimiter))
	}
	p, err := NewCSVParser(r, parserOpts...)
	if err != nil {
		return nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	cols, err := resolveColumns(p)
	if err != nil {
		return nil, err
	}

	errs := NewErrorCollection(opts.MaxErrors)
	result := &StatementResult{}
	seen := map[string]int{}
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr RowError
		if errors.As(err, &rowErr) {
			result.TotalRows++
			errs.Add(rowErr)
			continue
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++
		if opts.MaxRows > 0 && result.TotalRows > opts.MaxRows {
			return nil, ErrFileTooLarge
		}

		tx, ok := parseRow(row, cols, opts, errs)
		if !ok {
			continue
		}
		if tx.ExternalID != "" {
			if first, dup := seen[tx.ExternalID]; dup {
				errs.Add(RowError{Row: row.LineNumber, Column: cols.id, Code: ErrCodeDuplicateInFile,
					Message: "duplicate of row " + strconv.Itoa(first), Value: tx.ExternalID})
				continue
			}
			seen[tx.ExternalID] = row.LineNumber
		}
		result.Transactions = append(result.Transactions, tx)
	}
	if result.TotalRows == 0 {
		return nil, ErrNoDataRows
	}
	result.Errors = errs.Errors()
	result.ErrorCount = errs.TotalCount()
	return result, nil
}

func resolveColumns(p *CSVParser) (statementColumns, error) {
	var c statementColumns
	var missing []string
	var ok bool
	if c.date, ok = p.Column(dateColumns...); !ok {
		missing = append(missing, "date")
	}
	c.description, _ = p.Column(descriptionColumns...)
	c.id, _ = p.Column(idColumns...)
	c.amount, ok = p.Column(amountColumns...)
	if !ok {
		c.debit, _ = p.Column(debitColumns...)
		c.credit, _ = p.Column(creditColumns...)
		if c.debit == "" && c.credit == "" {
			missing = append(missing, "amount")
		}
	}
	if len(missing) > 0 {
		return c, &MissingColumnsError{Columns: missing}
	}
	return c, nil
}

func parseRow(row *Row, cols statementColumns, opts StatementOptions, errs *ErrorCollection) (finance.BankTransaction, bool) {
	var tx finance.BankTransaction
	rawDate := row.Get(cols.date)
	if rawDate == "" {
		errs.Add(RowError{Row: row.LineNumber, Column: cols.date, Code: ErrCodeRequiredField, Message: "date is required"})
		return tx, false
	}
	date, ok := parseDate(rawDate)
	if !ok {
		errs.Add(RowError{Row: row.LineNumber, Column: cols.date, Code: ErrCodeInvalidDate, Message: "unrecognized date", Value: rawDate})
		return tx, false
	}

	amount, col, err := rowAmount(row, cols)
	if err != nil {
		errs.Add(RowError{Row: row.LineNumber, Column: col, Code: ErrCodeInvalidAmount, Message: err.Error(), Value: row.Get(col)})
		return tx, false
	}

	tx = finance.BankTransaction{
		OwnedEntity: shared.NewOwnedEntity(opts.UserID),
		AccountID:   opts.AccountID,
		Date:        date,
		Amount:      amount.Round(2),
		Description: row.Get(cols.description),
		ExternalID:  row.Get(cols.id),
	}
	return tx, true
}

func rowAmount(row *Row, cols statementColumns) (decimal.Decimal, string, error) {
	if cols.amount != "" {
		v, err := parseAmount(row.Get(cols.amount))
		return v, cols.amount, err
	}
	debit, credit := row.Get(cols.debit), row.Get(cols.credit)
	switch {
	case debit != "" && credit != "":
		return decimal.Zero, cols.debit, errors.New("both debit and credit are set")
	case debit != "":
		v, err := parseAmount(debit)
		return v.Abs().Neg(), cols.debit, err
	case credit != "":
		v, err := parseAmount(credit)
		return v.Abs(), cols.credit, err
	}
	return decimal.Zero, cols.debit, errors.New("amount is required")
}

// parseAmount accepts currency symbols, thousands separators and
// accounting style negatives such as (12.50)
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("amount is not a number")
	}
	if negative {
		v = v.Abs().Neg()
	}
	return v, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
