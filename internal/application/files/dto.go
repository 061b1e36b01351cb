package files

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UploadFileRequest carries an uploaded blob and its metadata
type UploadFileRequest struct {
	FolderID    *uuid.UUID
	Name        string
	ContentType string
	Data        []byte
	Tags        []string
}

// UpdateFileRequest represents a partial file update
type UpdateFileRequest struct {
	Name      *string    `json:"name" binding:"omitempty,min=1,max=255"`
	FolderID  *uuid.UUID `json:"folder_id"`
	ToRoot    bool       `json:"to_root"`
	Tags      []string   `json:"tags"`
	IsStarred *bool      `json:"is_starred"`
}

// ToDomain converts the request into a domain update
func (r UpdateFileRequest) ToDomain() files.FileUpdate {
	return files.FileUpdate{
		Name:      r.Name,
		FolderID:  r.FolderID,
		ToRoot:    r.ToRoot,
		Tags:      r.Tags,
		IsStarred: r.IsStarred,
	}
}

// FileListFilter represents the query string of a file list
type FileListFilter struct {
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string     `form:"search"`
	FolderID    *uuid.UUID `form:"folder_id"`
	RootOnly    bool       `form:"root_only"`
	MimeTypes   []string   `form:"mime_type"`
	StarredOnly bool       `form:"starred"`
	MinSize     *int64     `form:"min_size"`
	MaxSize     *int64     `form:"max_size"`
}

// ToDomain converts the list filter into the repository filter
func (f FileListFilter) ToDomain() files.FileFilter {
	return files.FileFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		FolderID:     f.FolderID,
		RootOnly:     f.RootOnly,
		MimePrefixes: f.MimeTypes,
		StarredOnly:  f.StarredOnly,
		MinSize:      f.MinSize,
		MaxSize:      f.MaxSize,
	}
}

// FileResponse represents file metadata in API responses
type FileResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	Name         string     `json:"name"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	Kind         string     `json:"kind"`
	Size         int64      `json:"size"`
	StoragePath  string     `json:"storage_path"`
	PublicURL    string     `json:"public_url"`
	Tags         []string   `json:"tags"`
	IsStarred    bool       `json:"is_starred"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToFileResponse converts a domain FileItem to FileResponse
func ToFileResponse(f *files.FileItem) FileResponse {
	tags := []string(f.Tags)
	if tags == nil {
		tags = []string{}
	}
	return FileResponse{
		ID:           f.ID,
		UserID:       f.UserID,
		FolderID:     f.FolderID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Kind:         string(files.KindOf(f.MimeType)),
		Size:         f.Size,
		StoragePath:  f.StoragePath,
		PublicURL:    f.PublicURL,
		Tags:         tags,
		IsStarred:    f.IsStarred,
		IsDeleted:    f.IsDeleted,
		DeletedAt:    f.DeletedAt,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ToFileResponses converts a slice of files
func ToFileResponses(items []files.FileItem) []FileResponse {
	out := make([]FileResponse, len(items))
	for i := range items {
		out[i] = ToFileResponse(&items[i])
	}
	return out
}

// DownloadResponse holds either a presigned URL or the blob itself
type DownloadResponse struct {
	File      FileResponse `json:"file"`
	URL       string       `json:"url,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Data      []byte       `json:"-"`
}

// EmptyTrashResult reports a trash purge
type EmptyTrashResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// CreateFolderRequest represents a request to create a folder
type CreateFolderRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=200"`
	ParentID *uuid.UUID `json:"parent_id"`
	Color    string     `json:"color" binding:"omitempty,max=20"`
}

// UpdateFolderRequest represents a partial folder update
type UpdateFolderRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=200"`
	Color *string `json:"color" binding:"omitempty,max=20"`
}

// FolderResponse represents a folder in API responses
type FolderResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToFolderResponse converts a domain Folder to FolderResponse
func ToFolderResponse(f *files.Folder) FolderResponse {
	return FolderResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		ParentID:  f.ParentID,
		Name:      f.Name,
		Color:     f.Color,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
