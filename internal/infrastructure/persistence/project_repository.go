package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements work.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project of userID by its ID, archived or not
func (r *GormProjectRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*work.Project, error) {
	model, err := findOne[models.ProjectModel](owned(ctx, r.db, &models.ProjectModel{}, userID).Where("id = ?", id), work.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's projects; archived ones only on request
func (r *GormProjectRepository) List(ctx context.Context, userID uuid.UUID, filter work.ProjectFilter) (shared.PageResult[work.Project], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.ProjectModel{}, userID), filter)
	result, err := findPage[models.ProjectModel](query, filter.Filter, ProjectSortFields)
	if err != nil {
		return shared.PageResult[work.Project]{}, err
	}
	return toDomainPage(result, (*models.ProjectModel).ToDomain), nil
}

// ListAll returns every project of the user, including archived ones
func (r *GormProjectRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]work.Project, error) {
	var rows []models.ProjectModel
	if err := owned(ctx, r.db, &models.ProjectModel{}, userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.ProjectModel).ToDomain), nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *work.Project) error {
	return r.db.WithContext(ctx).Save(models.ProjectModelFromDomain(project)).Error
}

// Delete permanently removes a project
func (r *GormProjectRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.ProjectModel{}, userID, id, work.ErrProjectNotFound)
}

func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter work.ProjectFilter) *gorm.DB {
	if !filter.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	query = applySearch(query, filter.Search, "name", "description")
	query = applyIn(query, "status", filter.Statuses)
	query = applyIn(query, "priority", filter.Priorities)
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	query = applyDateRange(query, "start_date", filter.Start)
	if filter.MinBudget != nil {
		query = query.Where("budget >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		query = query.Where("budget <= ?", *filter.MaxBudget)
	}
	return query
}

var _ work.ProjectRepository = (*GormProjectRepository)(nil)
