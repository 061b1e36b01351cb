package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FolderModel is the persistence model for files.Folder
type FolderModel struct {
	OwnedModel
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Color    string     `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (FolderModel) TableName() string {
	return "folders"
}

// ToDomain converts the model to a domain Folder
func (m *FolderModel) ToDomain() *files.Folder {
	return &files.Folder{
		OwnedEntity: m.ToOwned(),
		ParentID:    m.ParentID,
		Name:        m.Name,
		Color:       m.Color,
	}
}

// FolderModelFromDomain creates a model from a domain Folder
func FolderModelFromDomain(f *files.Folder) *FolderModel {
	m := &FolderModel{ParentID: f.ParentID, Name: f.Name, Color: f.Color}
	m.FromOwned(f.OwnedEntity)
	return m
}

// FileModel is the persistence model for files.FileItem
type FileModel struct {
	OwnedModel
	FolderID     *uuid.UUID        `gorm:"type:uuid;index"`
	Name         string            `gorm:"type:varchar(300);not null"`
	OriginalName string            `gorm:"type:varchar(300);not null"`
	MimeType     string            `gorm:"type:varchar(150);index"`
	Size         int64             `gorm:"not null;default:0"`
	StoragePath  string            `gorm:"type:varchar(500);not null"`
	PublicURL    string            `gorm:"type:varchar(1000)"`
	Tags         shared.StringList `gorm:"type:jsonb"`
	IsStarred    bool              `gorm:"not null;default:false"`
	IsDeleted    bool              `gorm:"not null;default:false;index"`
	DeletedAt    *time.Time
}

// TableName returns the table name for GORM
func (FileModel) TableName() string {
	return "user_files"
}

// ToDomain converts the model to a domain FileItem
func (m *FileModel) ToDomain() *files.FileItem {
	return &files.FileItem{
		OwnedEntity:  m.ToOwned(),
		FolderID:     m.FolderID,
		Name:         m.Name,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		StoragePath:  m.StoragePath,
		PublicURL:    m.PublicURL,
		Tags:         m.Tags,
		IsStarred:    m.IsStarred,
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
	}
}

// FileModelFromDomain creates a model from a domain FileItem
func FileModelFromDomain(f *files.FileItem) *FileModel {
	m := &FileModel{
		FolderID:     f.FolderID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		StoragePath:  f.StoragePath,
		PublicURL:    f.PublicURL,
		Tags:         f.Tags,
		IsStarred:    f.IsStarred,
		IsDeleted:    f.IsDeleted,
		DeletedAt:    f.DeletedAt,
	}
	m.FromOwned(f.OwnedEntity)
	return m
}
