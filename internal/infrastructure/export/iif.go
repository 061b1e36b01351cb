package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const iifDateLayout = "01/02/2006"

// IIF header lines, in order
var iifHeader = []string{
	"!TRNS\tTRNSID\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tMEMO",
	"!SPL\tSPLID\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tMEMO",
	"!ENDTRNS",
}

// IIFTransaction is one balanced QuickBooks transaction: the TRNS line
// posts Amount to Account and the SPL line posts -Amount to SplitAccount.
type IIFTransaction struct {
	ID           string
	Type         string
	Date         time.Time
	Account      string
	SplitAccount string
	Name         string
	Amount       decimal.Decimal
	Memo         string
}

var iifFieldReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func iifField(s string) string {
	return iifFieldReplacer.Replace(s)
}

func iifLine(kind string, tx IIFTransaction, account string, amount decimal.Decimal) string {
	return strings.Join([]string{
		kind,
		iifField(tx.ID),
		iifField(tx.Type),
		tx.Date.Format(iifDateLayout),
		iifField(account),
		iifField(tx.Name),
		amount.StringFixed(2),
		iifField(tx.Memo),
	}, "\t")
}

// IIF renders the three header lines then a TRNS/SPL/ENDTRNS triple per transaction
func IIF(filename string, txs []IIFTransaction) File {
	var b strings.Builder
	for _, h := range iifHeader {
		b.WriteString(h)
		b.WriteString("\n")
	}
	for _, tx := range txs {
		b.WriteString(iifLine("TRNS", tx, tx.Account, tx.Amount))
		b.WriteString("\n")
		b.WriteString(iifLine("SPL", tx, tx.SplitAccount, tx.Amount.Neg()))
		b.WriteString("\n")
		b.WriteString("ENDTRNS\n")
	}
	return File{Filename: filename, ContentType: ContentTypeIIF, Body: []byte(b.String())}
}
