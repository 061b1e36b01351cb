package files

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FileRepository defines persistence operations for file metadata
type FileRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*FileItem, error)
	List(ctx context.Context, userID uuid.UUID, filter FileFilter) (shared.PageResult[FileItem], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]FileItem, error)
	ListTrash(ctx context.Context, userID uuid.UUID) ([]FileItem, error)
	Save(ctx context.Context, file *FileItem) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// MoveToRoot clears folder_id on every file in the folder
	MoveToRoot(ctx context.Context, userID, folderID uuid.UUID) error
}

// FolderRepository defines persistence operations for folders
type FolderRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Folder, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Folder, error)
	Save(ctx context.Context, folder *Folder) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// ReparentChildren moves child folders of id up to newParent
	ReparentChildren(ctx context.Context, userID, id uuid.UUID, newParent *uuid.UUID) error
}
