package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecordRepository implements finance.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// FindByID finds a financial record of userID by its ID
func (r *GormRecordRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*finance.FinancialRecord, error) {
	model, err := findOne[models.FinancialRecordModel](owned(ctx, r.db, &models.FinancialRecordModel{}, userID).Where("id = ?", id), finance.ErrRecordNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of records matching filter
func (r *GormRecordRepository) List(ctx context.Context, userID uuid.UUID, filter finance.RecordFilter) (shared.PageResult[finance.FinancialRecord], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.FinancialRecordModel{}, userID), filter)
	page := filter.Filter
	if page.OrderBy == "" {
		page.OrderBy = "date"
	}
	result, err := findPage[models.FinancialRecordModel](query, page, RecordSortFields)
	if err != nil {
		return shared.PageResult[finance.FinancialRecord]{}, err
	}
	return toDomainPage(result, (*models.FinancialRecordModel).ToDomain), nil
}

// ListAll returns every record matching filter ordered by date; paging is ignored
func (r *GormRecordRepository) ListAll(ctx context.Context, userID uuid.UUID, filter finance.RecordFilter) ([]finance.FinancialRecord, error) {
	var rows []models.FinancialRecordModel
	query := r.applyFilter(owned(ctx, r.db, &models.FinancialRecordModel{}, userID), filter)
	if err := query.Order("date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.FinancialRecordModel).ToDomain), nil
}

// Save creates or updates a record
func (r *GormRecordRepository) Save(ctx context.Context, record *finance.FinancialRecord) error {
	return r.db.WithContext(ctx).Save(models.FinancialRecordModelFromDomain(record)).Error
}

// SaveBatch creates or updates records in one statement
func (r *GormRecordRepository) SaveBatch(ctx context.Context, records []finance.FinancialRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.FinancialRecordModel, len(records))
	for i := range records {
		rows[i] = models.FinancialRecordModelFromDomain(&records[i])
	}
	return r.db.WithContext(ctx).Save(&rows).Error
}

// Delete permanently removes a record
func (r *GormRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.FinancialRecordModel{}, userID, id, finance.ErrRecordNotFound)
}

// DeleteAll removes every record of the user and returns how many were removed
func (r *GormRecordRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.FinancialRecordModel{})
	return result.RowsAffected, result.Error
}

func (r *GormRecordRepository) applyFilter(query *gorm.DB, filter finance.RecordFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "description", "category", "reference")
	query = applyIn(query, "record_type", filter.RecordTypes)
	query = applyIn(query, "category", filter.Categories)
	query = applyDateRange(query, "date", filter.Date)
	if filter.UnreconciledOnly {
		query = query.Where("is_reconciled = ?", false)
	}
	return query
}

var _ finance.RecordRepository = (*GormRecordRepository)(nil)

// GormBankTransactionRepository implements finance.BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a bank transaction of userID by its ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*finance.BankTransaction, error) {
	model, err := findOne[models.BankTransactionModel](owned(ctx, r.db, &models.BankTransactionModel{}, userID).Where("id = ?", id), finance.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of transactions matching filter
func (r *GormBankTransactionRepository) List(ctx context.Context, userID uuid.UUID, filter finance.TransactionFilter) (shared.PageResult[finance.BankTransaction], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.BankTransactionModel{}, userID), filter)
	page := filter.Filter
	if page.OrderBy == "" {
		page.OrderBy = "date"
	}
	result, err := findPage[models.BankTransactionModel](query, page, BankTransactionSortFields)
	if err != nil {
		return shared.PageResult[finance.BankTransaction]{}, err
	}
	return toDomainPage(result, (*models.BankTransactionModel).ToDomain), nil
}

// ListAll returns every transaction matching filter ordered by date
func (r *GormBankTransactionRepository) ListAll(ctx context.Context, userID uuid.UUID, filter finance.TransactionFilter) ([]finance.BankTransaction, error) {
	var rows []models.BankTransactionModel
	query := r.applyFilter(owned(ctx, r.db, &models.BankTransactionModel{}, userID), filter)
	if err := query.Order("date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.BankTransactionModel).ToDomain), nil
}

// Save creates or updates a transaction
func (r *GormBankTransactionRepository) Save(ctx context.Context, tx *finance.BankTransaction) error {
	return r.db.WithContext(ctx).Save(models.BankTransactionModelFromDomain(tx)).Error
}

// Upsert inserts transactions whose external id the owner has not stored yet.
// Transactions without an external id are always inserted.
func (r *GormBankTransactionRepository) Upsert(ctx context.Context, txs []finance.BankTransaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	byUser := make(map[uuid.UUID][]string)
	for _, tx := range txs {
		if tx.ExternalID != "" {
			byUser[tx.UserID] = append(byUser[tx.UserID], tx.ExternalID)
		}
	}

	seen := make(map[uuid.UUID]map[string]bool, len(byUser))
	for userID, ids := range byUser {
		var existing []string
		err := owned(ctx, r.db, &models.BankTransactionModel{}, userID).
			Where("external_id IN ?", ids).
			Pluck("external_id", &existing).Error
		if err != nil {
			return 0, err
		}
		set := make(map[string]bool, len(existing))
		for _, id := range existing {
			set[id] = true
		}
		seen[userID] = set
	}

	rows := make([]*models.BankTransactionModel, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		if tx.ExternalID != "" {
			if seen[tx.UserID][tx.ExternalID] {
				continue
			}
			seen[tx.UserID][tx.ExternalID] = true
		}
		rows = append(rows, models.BankTransactionModelFromDomain(tx))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DeleteByAccount removes every transaction of one connected account
func (r *GormBankTransactionRepository) DeleteByAccount(ctx context.Context, userID uuid.UUID, accountID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Delete(&models.BankTransactionModel{}).Error
}

// DeleteAll removes every transaction of the user
func (r *GormBankTransactionRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.BankTransactionModel{})
	return result.RowsAffected, result.Error
}

func (r *GormBankTransactionRepository) applyFilter(query *gorm.DB, filter finance.TransactionFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "description")
	if filter.AccountID != "" {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	query = applyDateRange(query, "date", filter.Date)
	if filter.UnmatchedOnly {
		query = query.Where("matched_record_id IS NULL")
	}
	return query
}

var _ finance.BankTransactionRepository = (*GormBankTransactionRepository)(nil)

// GormFinanceUnitOfWork runs record and transaction writes in one database transaction
type GormFinanceUnitOfWork struct {
	db *gorm.DB
}

// NewGormFinanceUnitOfWork creates a new GormFinanceUnitOfWork
func NewGormFinanceUnitOfWork(db *gorm.DB) *GormFinanceUnitOfWork {
	return &GormFinanceUnitOfWork{db: db}
}

// Do calls fn with repositories bound to a transaction; an error rolls everything back
func (u *GormFinanceUnitOfWork) Do(ctx context.Context, fn func(records finance.RecordRepository, txs finance.BankTransactionRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRecordRepository(tx), NewGormBankTransactionRepository(tx))
	})
}

var _ finance.UnitOfWork = (*GormFinanceUnitOfWork)(nil)
