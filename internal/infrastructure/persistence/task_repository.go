package persistence

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaskRepository implements work.TaskRepository using GORM
type GormTaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db, now: time.Now}
}

// FindByID finds a task of userID by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*work.Task, error) {
	model, err := findOne[models.TaskModel](owned(ctx, r.db, &models.TaskModel{}, userID).Where("id = ?", id), work.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's tasks matching filter
func (r *GormTaskRepository) List(ctx context.Context, userID uuid.UUID, filter work.TaskFilter) (shared.PageResult[work.Task], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.TaskModel{}, userID), filter)
	result, err := findPage[models.TaskModel](query, filter.Filter, TaskSortFields)
	if err != nil {
		return shared.PageResult[work.Task]{}, err
	}
	return toDomainPage(result, (*models.TaskModel).ToDomain), nil
}

// ListAll returns every task of the user
func (r *GormTaskRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]work.Task, error) {
	var rows []models.TaskModel
	if err := owned(ctx, r.db, &models.TaskModel{}, userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.TaskModel).ToDomain), nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *work.Task) error {
	return r.db.WithContext(ctx).Save(models.TaskModelFromDomain(task)).Error
}

// Delete permanently removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.TaskModel{}, userID, id, work.ErrTaskNotFound)
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter work.TaskFilter) *gorm.DB {
	query = applySearch(query, filter.Search, "title", "description")
	query = applyIn(query, "status", filter.Statuses)
	query = applyIn(query, "priority", filter.Priorities)
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	query = applyDateRange(query, "due_date", filter.Due)
	if filter.OverdueOnly {
		query = query.Where("due_date IS NOT NULL AND due_date < ?", r.now()).
			Where("status NOT IN ?", []work.TaskStatus{work.TaskStatusDone, work.TaskStatusCancelled})
	}
	return query
}

var _ work.TaskRepository = (*GormTaskRepository)(nil)
