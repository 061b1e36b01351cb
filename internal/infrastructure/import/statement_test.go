package csvimport

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement_SignedAmount(t *testing.T) {
	userID := uuid.New()
	in := "Date,Description,Amount,Transaction ID\n" +
		"2024-03-01,Client payment,\"1,250.00\",tx-1\n" +
		"03/05/2024,Hosting,(49.99),tx-2\n" +
		"\n" +
		"2024-03-07,Coffee,$-4.5,\n"

	res, err := ParseStatement(strings.NewReader(in), StatementOptions{UserID: userID, AccountID: "acct-1"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, res.TotalRows)

	first := res.Transactions[0]
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, "acct-1", first.AccountID)
	assert.Equal(t, "1250", first.Amount.String())
	assert.Equal(t, "Client payment", first.Description)
	assert.Equal(t, "tx-1", first.ExternalID)
	assert.Equal(t, 2024, first.Date.Year())

	assert.Equal(t, "-49.99", res.Transactions[1].Amount.String())
	assert.Equal(t, 5, res.Transactions[1].Date.Day())
	assert.Equal(t, "-4.5", res.Transactions[2].Amount.String())
	assert.Empty(t, res.Transactions[2].ExternalID)
}

func TestParseStatement_DebitCredit(t *testing.T) {
	in := "Posted Date,Memo,Debit,Credit\n" +
		"2024-01-02,Rent,1000,\n" +
		"2024-01-03,Refund,,25.10\n" +
		"2024-01-04,Both,1,2\n"

	res, err := ParseStatement(strings.NewReader(in), StatementOptions{AccountID: "a"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "-1000", res.Transactions[0].Amount.String())
	assert.Equal(t, "25.1", res.Transactions[1].Amount.String())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, ErrCodeInvalidAmount, res.Errors[0].Code)
}

func TestParseStatement_RowErrors(t *testing.T) {
	in := "date,amount,id\n" +
		",10,a\n" +
		"yesterday,10,b\n" +
		"2024-01-01,ten,c\n" +
		"2024-01-01,10,d\n" +
		"2024-01-02,11,d\n"

	res, err := ParseStatement(strings.NewReader(in), StatementOptions{AccountID: "a"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 4, res.ErrorCount)

	codes := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{ErrCodeRequiredField, ErrCodeInvalidDate, ErrCodeInvalidAmount, ErrCodeDuplicateInFile}, codes)
}

func TestParseStatement_FileErrors(t *testing.T) {
	_, err := ParseStatement(strings.NewReader("date,amount\n"), StatementOptions{})
	assert.Error(t, err)

	_, err = ParseStatement(strings.NewReader("memo,value\nx,1\n"), StatementOptions{AccountID: "a"})
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"date", "amount"}, missing.Columns)

	_, err = ParseStatement(strings.NewReader("date,amount\n"), StatementOptions{AccountID: "a"})
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = ParseStatement(strings.NewReader("date,amount\n2024-01-01,1\n2024-01-02,2\n"), StatementOptions{AccountID: "a", MaxRows: 1})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
