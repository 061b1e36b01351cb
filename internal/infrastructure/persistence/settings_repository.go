package persistence

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Find loads one setting of the user
func (r *GormSettingsRepository) Find(ctx context.Context, userID uuid.UUID, key settings.Key) (*settings.Setting, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND key = ?", userID, key)
	model, err := findOne[models.UserSettingModel](query, settings.ErrSettingNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all settings of the user ordered by key
func (r *GormSettingsRepository) List(ctx context.Context, userID uuid.UUID) ([]settings.Setting, error) {
	var rows []models.UserSettingModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.UserSettingModel).ToDomain), nil
}

// Save creates or replaces a setting
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.Setting) error {
	return r.db.WithContext(ctx).Save(models.UserSettingModelFromDomain(s)).Error
}

// Delete removes a setting; a missing key is not an error
func (r *GormSettingsRepository) Delete(ctx context.Context, userID uuid.UUID, key settings.Key) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&models.UserSettingModel{}).Error
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
