package files

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDownloadExpiry is the lifetime of presigned download URLs
const DefaultDownloadExpiry = 15 * time.Minute

// FileService handles uploads, downloads, trash and folders
type FileService struct {
	files   files.FileRepository
	folders files.FolderRepository
	storage files.ObjectStorage
	cache   *query.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewFileService creates a new FileService
func NewFileService(fileRepo files.FileRepository, folderRepo files.FolderRepository, storage files.ObjectStorage, cache *query.Client, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		files:   fileRepo,
		folders: folderRepo,
		storage: storage,
		cache:   cache,
		logger:  logger.Named("files"),
		now:     time.Now,
	}
}

// ListFiles returns a page of non-trashed files
func (s *FileService) ListFiles(ctx context.Context, userID uuid.UUID, filter FileListFilter) (shared.Paginated[FileResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[FileResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceFiles, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[FileResponse], error) {
		page, err := s.files.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[FileResponse]{}, fmt.Errorf("list files: %w", err)
		}
		return shared.MapPage(page, ToFileResponses).ToPaginated(), nil
	})
}

// GetFile returns file metadata
func (s *FileService) GetFile(ctx context.Context, userID, id uuid.UUID) (*FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToFileResponse(item)
	return &resp, nil
}

// UploadFile stores the blob first and then the metadata row. A failed
// insert removes the blob again.
func (s *FileService) UploadFile(ctx context.Context, userID uuid.UUID, req UploadFileRequest) (*FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if req.FolderID != nil {
		if _, err := s.folders.FindByID(ctx, userID, *req.FolderID); err != nil {
			return nil, err
		}
	}
	path := files.StoragePath(userID, s.now(), req.Name)
	item, err := files.NewFileItem(userID, req.Name, req.ContentType, int64(len(req.Data)), path)
	if err != nil {
		return nil, err
	}
	item.FolderID = req.FolderID
	if req.Tags != nil {
		item.Tags = shared.StringList(req.Tags)
	}
	item.PublicURL = s.storage.PublicURL(path)

	if err := s.storage.Upload(ctx, path, req.Data, item.MimeType); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	if err := s.files.Save(ctx, item); err != nil {
		if derr := s.storage.DeleteObject(ctx, path); derr != nil {
			s.logger.Warn("Failed to remove orphaned upload",
				zap.String("path", path),
				zap.Error(derr))
		}
		return nil, fmt.Errorf("save file: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFiles)

	s.logger.Info("File uploaded",
		zap.String("user_id", userID.String()),
		zap.String("file_id", item.ID.String()),
		zap.Int64("size", item.Size))
	resp := ToFileResponse(item)
	return &resp, nil
}

// DownloadFile returns a presigned URL, or the bytes when inline is set
func (s *FileService) DownloadFile(ctx context.Context, userID, id uuid.UUID, inline bool) (*DownloadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	out := &DownloadResponse{File: ToFileResponse(item)}
	if inline {
		data, err := s.storage.Download(ctx, item.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("download file: %w", err)
		}
		out.Data = data
		return out, nil
	}
	url, err := s.storage.GenerateDownloadURL(ctx, item.StoragePath, DefaultDownloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	expires := s.now().Add(DefaultDownloadExpiry)
	out.URL = url
	out.ExpiresAt = &expires
	return out, nil
}

// UpdateFile renames, moves, tags or stars a file
func (s *FileService) UpdateFile(ctx context.Context, userID, id uuid.UUID, req UpdateFileRequest) (*FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.FolderID != nil && !req.ToRoot {
		if _, err := s.folders.FindByID(ctx, userID, *req.FolderID); err != nil {
			return nil, err
		}
	}
	if err := item.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	return s.save(ctx, item)
}

// TrashFile soft-deletes a file
func (s *FileService) TrashFile(ctx context.Context, userID, id uuid.UUID) (*FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.Trash()
	return s.save(ctx, item)
}

// RestoreFile takes a file out of the trash
func (s *FileService) RestoreFile(ctx context.Context, userID, id uuid.UUID) (*FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := item.Restore(); err != nil {
		return nil, err
	}
	return s.save(ctx, item)
}

// PermanentlyDeleteFile removes the blob and then the row
func (s *FileService) PermanentlyDeleteFile(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	item, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, item); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFiles)
	return nil
}

// ListTrash returns trashed files, most recently deleted first
func (s *FileService) ListTrash(ctx context.Context, userID uuid.UUID) ([]FileResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	return query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceFiles, "trash"), query.TierUserData, func(ctx context.Context) ([]FileResponse, error) {
		items, err := s.files.ListTrash(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list trash: %w", err)
		}
		return ToFileResponses(items), nil
	})
}

// EmptyTrash permanently deletes every trashed file. Failures are counted
// and the remaining files are still processed.
func (s *FileService) EmptyTrash(ctx context.Context, userID uuid.UUID) (*EmptyTrashResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	items, err := s.files.ListTrash(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	result := &EmptyTrashResult{}
	for i := range items {
		if err := s.remove(ctx, &items[i]); err != nil {
			s.logger.Warn("Failed to purge trashed file",
				zap.String("file_id", items[i].ID.String()),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Deleted++
	}
	if result.Deleted > 0 {
		s.cache.InvalidateResource(ctx, userID, query.ResourceFiles)
	}
	return result, nil
}

// GetFileStats derives counts and totals over the user's files, trash included
func (s *FileService) GetFileStats(ctx context.Context, userID uuid.UUID) (*files.FileStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceFiles), query.TierUserData, func(ctx context.Context) (files.FileStats, error) {
		items, err := s.files.ListAll(ctx, userID)
		if err != nil {
			return files.FileStats{}, fmt.Errorf("load files: %w", err)
		}
		trash, err := s.files.ListTrash(ctx, userID)
		if err != nil {
			return files.FileStats{}, fmt.Errorf("load trash: %w", err)
		}
		return files.ComputeFileStats(append(items, trash...)), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *FileService) remove(ctx context.Context, item *files.FileItem) error {
	if err := s.storage.DeleteObject(ctx, item.StoragePath); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.files.Delete(ctx, item.UserID, item.ID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *FileService) save(ctx context.Context, item *files.FileItem) (*FileResponse, error) {
	if err := s.files.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	s.cache.InvalidateResource(ctx, item.UserID, query.ResourceFiles)
	resp := ToFileResponse(item)
	return &resp, nil
}
