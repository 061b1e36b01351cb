package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadRepository implements marketing.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead of userID by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*marketing.Lead, error) {
	model, err := findOne[models.LeadModel](owned(ctx, r.db, &models.LeadModel{}, userID).Where("id = ?", id), marketing.ErrLeadNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of leads in the filter's tab
func (r *GormLeadRepository) List(ctx context.Context, userID uuid.UUID, filter marketing.LeadFilter) (shared.PageResult[marketing.Lead], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.LeadModel{}, userID), filter)
	result, err := findPage[models.LeadModel](query, filter.Filter, LeadSortFields)
	if err != nil {
		return shared.PageResult[marketing.Lead]{}, err
	}
	return toDomainPage(result, (*models.LeadModel).ToDomain), nil
}

// ListAll returns every lead matching filter; paging is ignored
func (r *GormLeadRepository) ListAll(ctx context.Context, userID uuid.UUID, filter marketing.LeadFilter) ([]marketing.Lead, error) {
	var rows []models.LeadModel
	query := r.applyFilter(owned(ctx, r.db, &models.LeadModel{}, userID), filter)
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.LeadModel).ToDomain), nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *marketing.Lead) error {
	return r.db.WithContext(ctx).Save(models.LeadModelFromDomain(lead)).Error
}

// Delete permanently removes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.LeadModel{}, userID, id, marketing.ErrLeadNotFound)
}

func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter marketing.LeadFilter) *gorm.DB {
	if status := filter.Status(); status != "" {
		query = query.Where("status = ?", status)
	}
	query = applySearch(query, filter.Search, "name", "email", "company")
	query = applyIn(query, "source", filter.Sources)
	if filter.MinScore != nil {
		query = query.Where("score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		query = query.Where("score <= ?", *filter.MaxScore)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	return query
}

var _ marketing.LeadRepository = (*GormLeadRepository)(nil)

// GormCampaignRepository implements marketing.CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a campaign of userID by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*marketing.Campaign, error) {
	model, err := findOne[models.CampaignModel](owned(ctx, r.db, &models.CampaignModel{}, userID).Where("id = ?", id), marketing.ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of campaigns matching filter
func (r *GormCampaignRepository) List(ctx context.Context, userID uuid.UUID, filter marketing.CampaignFilter) (shared.PageResult[marketing.Campaign], error) {
	query := owned(ctx, r.db, &models.CampaignModel{}, userID)
	query = applySearch(query, filter.Search, "name", "description")
	query = applyIn(query, "status", filter.Statuses)
	query = applyIn(query, "campaign_type", filter.Types)

	result, err := findPage[models.CampaignModel](query, filter.Filter, CampaignSortFields)
	if err != nil {
		return shared.PageResult[marketing.Campaign]{}, err
	}
	return toDomainPage(result, (*models.CampaignModel).ToDomain), nil
}

// ListAll returns every campaign of the user
func (r *GormCampaignRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]marketing.Campaign, error) {
	var rows []models.CampaignModel
	if err := owned(ctx, r.db, &models.CampaignModel{}, userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.CampaignModel).ToDomain), nil
}

// Save creates or updates a campaign
func (r *GormCampaignRepository) Save(ctx context.Context, campaign *marketing.Campaign) error {
	return r.db.WithContext(ctx).Save(models.CampaignModelFromDomain(campaign)).Error
}

// Delete permanently removes a campaign
func (r *GormCampaignRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.CampaignModel{}, userID, id, marketing.ErrCampaignNotFound)
}

var _ marketing.CampaignRepository = (*GormCampaignRepository)(nil)
