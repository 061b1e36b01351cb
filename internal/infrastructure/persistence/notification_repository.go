package persistence

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/notification"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification of userID by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*notification.Notification, error) {
	model, err := findOne[models.NotificationModel](owned(ctx, r.db, &models.NotificationModel{}, userID).Where("id = ?", id), notification.ErrNotificationNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's notifications, newest first by default
func (r *GormNotificationRepository) List(ctx context.Context, userID uuid.UUID, filter notification.Filter) (shared.PageResult[notification.Notification], error) {
	query := owned(ctx, r.db, &models.NotificationModel{}, userID)
	if !filter.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	query = applySearch(query, filter.Search, "title", "message")
	query = applyIn(query, "category", filter.Categories)
	query = applyIn(query, "type", filter.Types)

	result, err := findPage[models.NotificationModel](query, filter.Filter, NotificationSortFields)
	if err != nil {
		return shared.PageResult[notification.Notification]{}, err
	}
	return toDomainPage(result, (*models.NotificationModel).ToDomain), nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

// Delete permanently removes a notification
func (r *GormNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.NotificationModel{}, userID, id, notification.ErrNotificationNotFound)
}

// MarkAllRead marks every unread notification of the user as read at the given time
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := owned(ctx, r.db, &models.NotificationModel{}, userID).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at, "updated_at": at})
	return result.RowsAffected, result.Error
}

// CountUnread counts the user's unread, unarchived notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := owned(ctx, r.db, &models.NotificationModel{}, userID).
		Where("is_read = ? AND is_archived = ?", false, false).
		Count(&count).Error
	return count, err
}

var _ notification.Repository = (*GormNotificationRepository)(nil)

// GormPreferencesRepository implements notification.PreferencesRepository using GORM
type GormPreferencesRepository struct {
	db *gorm.DB
}

// NewGormPreferencesRepository creates a new GormPreferencesRepository
func NewGormPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// Find loads the user's preferences; shared.ErrNotFound when none are stored
func (r *GormPreferencesRepository) Find(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	model, err := findOne[models.NotificationPreferencesModel](query, shared.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or replaces the user's preferences
func (r *GormPreferencesRepository) Save(ctx context.Context, p *notification.Preferences) error {
	return r.db.WithContext(ctx).Save(models.NotificationPreferencesModelFromDomain(p)).Error
}

var _ notification.PreferencesRepository = (*GormPreferencesRepository)(nil)
