package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencydesk/backend/internal/domain/billing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice of userID by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*billing.Invoice, error) {
	model, err := findOne[models.InvoiceModel](owned(ctx, r.db, &models.InvoiceModel{}, userID).Where("id = ?", id), billing.ErrInvoiceNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's invoices matching filter
func (r *GormInvoiceRepository) List(ctx context.Context, userID uuid.UUID, filter billing.InvoiceFilter) (shared.PageResult[billing.Invoice], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.InvoiceModel{}, userID), filter)
	result, err := findPage[models.InvoiceModel](query, filter.Filter, InvoiceSortFields)
	if err != nil {
		return shared.PageResult[billing.Invoice]{}, err
	}
	return toDomainPage(result, (*models.InvoiceModel).ToDomain), nil
}

// ListAll returns every invoice of the user
func (r *GormInvoiceRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := owned(ctx, r.db, &models.InvoiceModel{}, userID).Order("issue_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.InvoiceModel).ToDomain), nil
}

// ListPastDue returns sent or viewed invoices of all users whose due date is before asOf
func (r *GormInvoiceRepository) ListPastDue(ctx context.Context, asOf time.Time) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusViewed}).
		Where("due_date < ?", asOf).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.InvoiceModel).ToDomain), nil
}

// MaxNumberWithPrefix returns the user's highest invoice number starting
// with prefix, or "" when there is none
func (r *GormInvoiceRepository) MaxNumberWithPrefix(ctx context.Context, userID uuid.UUID, prefix string) (string, error) {
	var max sql.NullString
	err := owned(ctx, r.db, &models.InvoiceModel{}, userID).
		Where(`invoice_number LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Select("MAX(invoice_number)").
		Scan(&max).Error
	if err != nil {
		return "", err
	}
	return max.String, nil
}

// Save creates or updates an invoice
//
// A never-saved invoice (version 0) is inserted. Otherwise the row is only
// updated while its version still equals the loaded one, so concurrent
// writers cannot overwrite each other's payments.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if invoice.Version == 0 {
		model.Version = 1
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		invoice.Version = model.Version
		return nil
	}

	model.Version = invoice.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND user_id = ? AND version = ?", invoice.ID, invoice.UserID, invoice.Version).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	invoice.Version = model.Version
	return nil
}

// Delete permanently removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.InvoiceModel{}, userID, id, billing.ErrInvoiceNotFound)
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "invoice_number", "notes")
	query = applyIn(query, "status", filter.Statuses)
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	query = applyDateRange(query, "issue_date", filter.Issue)
	query = applyDateRange(query, "due_date", filter.Due)
	if filter.MinTotal != nil {
		query = query.Where("total >= ?", *filter.MinTotal)
	}
	if filter.MaxTotal != nil {
		query = query.Where("total <= ?", *filter.MaxTotal)
	}
	return query
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
