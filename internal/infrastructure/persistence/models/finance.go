package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialRecordModel is the persistence model for finance.FinancialRecord
type FinancialRecordModel struct {
	OwnedModel
	RecordType    finance.RecordType `gorm:"type:varchar(20);not null;index"`
	Category      string             `gorm:"type:varchar(100);index"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Description   string             `gorm:"type:text"`
	Date          time.Time          `gorm:"not null;index"`
	Reference     string             `gorm:"type:varchar(100)"`
	PaymentMethod string             `gorm:"type:varchar(50)"`
	IsReconciled  bool               `gorm:"not null;default:false"`
	FiscalYear    *int               `gorm:"index"`
}

// TableName returns the table name for GORM
func (FinancialRecordModel) TableName() string {
	return "financial_records"
}

// ToDomain converts the model to a domain FinancialRecord
func (m *FinancialRecordModel) ToDomain() *finance.FinancialRecord {
	return &finance.FinancialRecord{
		OwnedEntity:   m.ToOwned(),
		RecordType:    m.RecordType,
		Category:      m.Category,
		Amount:        m.Amount,
		Description:   m.Description,
		Date:          m.Date,
		Reference:     m.Reference,
		PaymentMethod: m.PaymentMethod,
		IsReconciled:  m.IsReconciled,
		FiscalYear:    m.FiscalYear,
	}
}

// FinancialRecordModelFromDomain creates a model from a domain FinancialRecord
func FinancialRecordModelFromDomain(r *finance.FinancialRecord) *FinancialRecordModel {
	m := &FinancialRecordModel{
		RecordType:    r.RecordType,
		Category:      r.Category,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date,
		Reference:     r.Reference,
		PaymentMethod: r.PaymentMethod,
		IsReconciled:  r.IsReconciled,
		FiscalYear:    r.FiscalYear,
	}
	m.FromOwned(r.OwnedEntity)
	return m
}

// BankTransactionModel is the persistence model for finance.BankTransaction.
// ExternalID is unique per user so repeated syncs do not duplicate rows.
type BankTransactionModel struct {
	OwnedModel
	AccountID       string          `gorm:"type:varchar(100);not null;index"`
	Date            time.Time       `gorm:"not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description     string          `gorm:"type:text"`
	ExternalID      string          `gorm:"type:varchar(100);index"`
	MatchedRecordID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the model to a domain BankTransaction
func (m *BankTransactionModel) ToDomain() *finance.BankTransaction {
	return &finance.BankTransaction{
		OwnedEntity:     m.ToOwned(),
		AccountID:       m.AccountID,
		Date:            m.Date,
		Amount:          m.Amount,
		Description:     m.Description,
		ExternalID:      m.ExternalID,
		MatchedRecordID: m.MatchedRecordID,
	}
}

// BankTransactionModelFromDomain creates a model from a domain BankTransaction
func BankTransactionModelFromDomain(tx *finance.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{
		AccountID:       tx.AccountID,
		Date:            tx.Date,
		Amount:          tx.Amount,
		Description:     tx.Description,
		ExternalID:      tx.ExternalID,
		MatchedRecordID: tx.MatchedRecordID,
	}
	m.FromOwned(tx.OwnedEntity)
	return m
}
