package persistence

import (
	"context"
	"strings"

	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFileRepository implements files.FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID finds a file of userID by its ID, trashed or not
func (r *GormFileRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*files.FileItem, error) {
	model, err := findOne[models.FileModel](owned(ctx, r.db, &models.FileModel{}, userID).Where("id = ?", id), files.ErrFileNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of the user's files; trashed files only with OnlyDeleted
func (r *GormFileRepository) List(ctx context.Context, userID uuid.UUID, filter files.FileFilter) (shared.PageResult[files.FileItem], error) {
	query := r.applyFilter(owned(ctx, r.db, &models.FileModel{}, userID), filter)
	result, err := findPage[models.FileModel](query, filter.Filter, FileSortFields)
	if err != nil {
		return shared.PageResult[files.FileItem]{}, err
	}
	return toDomainPage(result, (*models.FileModel).ToDomain), nil
}

// ListAll returns every live file of the user
func (r *GormFileRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]files.FileItem, error) {
	var rows []models.FileModel
	err := owned(ctx, r.db, &models.FileModel{}, userID).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.FileModel).ToDomain), nil
}

// ListTrash returns the user's soft-deleted files, most recently deleted first
func (r *GormFileRepository) ListTrash(ctx context.Context, userID uuid.UUID) ([]files.FileItem, error) {
	var rows []models.FileModel
	err := owned(ctx, r.db, &models.FileModel{}, userID).
		Where("is_deleted = ?", true).
		Order("deleted_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.FileModel).ToDomain), nil
}

// Save creates or updates a file row
func (r *GormFileRepository) Save(ctx context.Context, file *files.FileItem) error {
	return r.db.WithContext(ctx).Save(models.FileModelFromDomain(file)).Error
}

// Delete permanently removes a file row
func (r *GormFileRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.FileModel{}, userID, id, files.ErrFileNotFound)
}

// MoveToRoot clears folder_id on every file in the folder
func (r *GormFileRepository) MoveToRoot(ctx context.Context, userID, folderID uuid.UUID) error {
	return owned(ctx, r.db, &models.FileModel{}, userID).
		Where("folder_id = ?", folderID).
		Update("folder_id", nil).Error
}

func (r *GormFileRepository) applyFilter(query *gorm.DB, filter files.FileFilter) *gorm.DB {
	query = query.Where("is_deleted = ?", filter.OnlyDeleted)
	query = applySearch(query, filter.Search, "name", "original_name")
	switch {
	case filter.FolderID != nil:
		query = query.Where("folder_id = ?", *filter.FolderID)
	case filter.RootOnly:
		query = query.Where("folder_id IS NULL")
	}
	if len(filter.MimePrefixes) > 0 {
		clauses := make([]string, len(filter.MimePrefixes))
		args := make([]interface{}, len(filter.MimePrefixes))
		for i, prefix := range filter.MimePrefixes {
			clauses[i] = "mime_type LIKE ?"
			args[i] = prefix + "%"
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if filter.StarredOnly {
		query = query.Where("is_starred = ?", true)
	}
	if filter.MinSize != nil {
		query = query.Where("size >= ?", *filter.MinSize)
	}
	if filter.MaxSize != nil {
		query = query.Where("size <= ?", *filter.MaxSize)
	}
	return query
}

var _ files.FileRepository = (*GormFileRepository)(nil)

// GormFolderRepository implements files.FolderRepository using GORM
type GormFolderRepository struct {
	db *gorm.DB
}

// NewGormFolderRepository creates a new GormFolderRepository
func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

// FindByID finds a folder of userID by its ID
func (r *GormFolderRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*files.Folder, error) {
	model, err := findOne[models.FolderModel](owned(ctx, r.db, &models.FolderModel{}, userID).Where("id = ?", id), files.ErrFolderNotFound)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListAll returns every folder of the user ordered by name
func (r *GormFolderRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]files.Folder, error) {
	var rows []models.FolderModel
	if err := owned(ctx, r.db, &models.FolderModel{}, userID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows, (*models.FolderModel).ToDomain), nil
}

// Save creates or updates a folder
func (r *GormFolderRepository) Save(ctx context.Context, folder *files.Folder) error {
	return r.db.WithContext(ctx).Save(models.FolderModelFromDomain(folder)).Error
}

// Delete permanently removes a folder
func (r *GormFolderRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOwned(ctx, r.db, &models.FolderModel{}, userID, id, files.ErrFolderNotFound)
}

// ReparentChildren moves child folders of id up to newParent
func (r *GormFolderRepository) ReparentChildren(ctx context.Context, userID, id uuid.UUID, newParent *uuid.UUID) error {
	return owned(ctx, r.db, &models.FolderModel{}, userID).
		Where("parent_id = ?", id).
		Update("parent_id", newParent).Error
}

var _ files.FolderRepository = (*GormFolderRepository)(nil)
