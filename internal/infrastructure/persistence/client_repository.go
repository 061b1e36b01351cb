package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client of userID by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*crm.Client, error) {
	model, err := findOne[models.ClientModel](owned(ctx, r.db, &models.ClientModel{}, userID).Where("id = ?", id), crm.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's clients matching filter
func (r *GormClientRepository) List(ctx context.Context, userID uuid.UUID, filter crm.ClientFilter) (shared.PageResult[crm.Client], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.ClientModel{}, userID), filter)
	result, err := findPage[models.ClientModel](query, filter.Filter, ClientSortFields)
	if err != nil {
		return shared.PageResult[crm.Client]{}, err
	}
	return toDomainPage(result, (*models.ClientModel).ToDomain), nil
}

// ListAll returns every client of the user
func (r *GormClientRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]crm.Client, error) {
	var rows []models.ClientModel
	if err := owned(ctx, r.db, &models.ClientModel{}, userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.ClientModel).ToDomain), nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *crm.Client) error {
	return r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error
}

// Delete permanently removes a client
func (r *GormClientRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.ClientModel{}, userID, id, crm.ErrClientNotFound)
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter crm.ClientFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "email", "company")
	query = applyIn(query, "status", filter.Statuses)
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	return applyDateRange(query, "created_at", filter.Created)
}

// Ensure GormClientRepository implements crm.ClientRepository
var _ crm.ClientRepository = (*GormClientRepository)(nil)
