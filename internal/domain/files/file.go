package files

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Bucket is the object storage bucket holding user uploads
const Bucket = "user-files"

var (
	ErrFileNotFound   = shared.NewNotFoundError("File")
	ErrFolderNotFound = shared.NewNotFoundError("Folder")
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with '_'
func SanitizeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// StoragePath builds {userId}/{unixMillis}-{sanitizedName}
func StoragePath(userID uuid.UUID, uploadedAt time.Time, name string) string {
	return fmt.Sprintf("%s/%d-%s", userID.String(), uploadedAt.UnixMilli(), SanitizeFileName(name))
}

// FileKind is the coarse type bucket used for statistics
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindVideo    FileKind = "video"
	FileKindAudio    FileKind = "audio"
	FileKindDocument FileKind = "document"
	FileKindOther    FileKind = "other"
)

var documentMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"text/csv":                 true,
}

// KindOf classifies a MIME type
func KindOf(mimeType string) FileKind {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileKindImage
	case strings.HasPrefix(mimeType, "video/"):
		return FileKindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return FileKindAudio
	case documentMimeTypes[mimeType], strings.HasPrefix(mimeType, "application/vnd.openxmlformats-officedocument."):
		return FileKindDocument
	}
	return FileKindOther
}

// FileItem is an uploaded file
type FileItem struct {
	shared.OwnedEntity
	FolderID     *uuid.UUID
	Name         string
	OriginalName string
	MimeType     string
	Size         int64
	StoragePath  string
	PublicURL    string
	Tags         shared.StringList
	IsStarred    bool
	IsDeleted    bool
	DeletedAt    *time.Time
}

// NewFileItem creates the metadata row for a blob stored at path
func NewFileItem(userID uuid.UUID, originalName, mimeType string, size int64, path string) (*FileItem, error) {
	originalName = strings.TrimSpace(originalName)
	if originalName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "File name cannot be empty")
	}
	if size < 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size cannot be negative")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &FileItem{
		OwnedEntity:  shared.NewOwnedEntity(userID),
		Name:         originalName,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		StoragePath:  path,
		Tags:         shared.StringList{},
	}, nil
}

// Trash soft-deletes the file
func (f *FileItem) Trash() {
	now := time.Now()
	f.IsDeleted = true
	f.DeletedAt = &now
	f.Touch()
}

// Restore brings a trashed file back
func (f *FileItem) Restore() error {
	if !f.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "File is not in trash")
	}
	f.IsDeleted = false
	f.DeletedAt = nil
	f.Touch()
	return nil
}

// FileUpdate is a partial update; nil fields are left unchanged
type FileUpdate struct {
	Name      *string
	FolderID  *uuid.UUID
	ToRoot    bool
	Tags      []string
	IsStarred *bool
}

// Apply merges the update into the file
func (f *FileItem) Apply(u FileUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "File name cannot be empty")
		}
		f.Name = name
	}
	if u.ToRoot {
		f.FolderID = nil
	} else if u.FolderID != nil {
		f.FolderID = u.FolderID
	}
	if u.Tags != nil {
		f.Tags = shared.StringList(u.Tags)
	}
	if u.IsStarred != nil {
		f.IsStarred = *u.IsStarred
	}
	f.Touch()
	return nil
}

// Folder organises files; folders may nest
type Folder struct {
	shared.OwnedEntity
	ParentID *uuid.UUID
	Name     string
	Color    string
}

// NewFolder creates a folder
func NewFolder(userID uuid.UUID, name string, parentID *uuid.UUID) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Folder name cannot be empty")
	}
	return &Folder{
		OwnedEntity: shared.NewOwnedEntity(userID),
		ParentID:    parentID,
		Name:        name,
	}, nil
}

// Rename changes the folder name
func (f *Folder) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Folder name cannot be empty")
	}
	f.Name = name
	f.Touch()
	return nil
}

// FileFilter narrows file list queries. Trashed files are excluded unless
// OnlyDeleted is set.
type FileFilter struct {
	shared.Filter
	FolderID     *uuid.UUID
	RootOnly     bool
	MimePrefixes []string
	StarredOnly  bool
	MinSize      *int64
	MaxSize      *int64
	OnlyDeleted  bool
}

// FileStats are derived from a user's files
type FileStats struct {
	TotalFiles int              `json:"total_files"`
	TotalSize  int64            `json:"total_size"`
	ByKind     map[FileKind]int `json:"by_kind"`
	Starred    int              `json:"starred"`
	InTrash    int              `json:"in_trash"`
}

// ComputeFileStats reduces files into FileStats; trashed files only count toward InTrash
func ComputeFileStats(items []FileItem) FileStats {
	stats := FileStats{ByKind: map[FileKind]int{
		FileKindImage: 0, FileKindVideo: 0, FileKindAudio: 0, FileKindDocument: 0, FileKindOther: 0,
	}}
	for i := range items {
		f := &items[i]
		if f.IsDeleted {
			stats.InTrash++
			continue
		}
		stats.TotalFiles++
		stats.TotalSize += f.Size
		stats.ByKind[KindOf(f.MimeType)]++
		if f.IsStarred {
			stats.Starred++
		}
	}
	return stats
}
