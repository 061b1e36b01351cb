package files

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFolders returns every folder of the user
func (s *FileService) ListFolders(ctx context.Context, userID uuid.UUID) ([]FolderResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	return query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceFolders, query.SegmentList), query.TierUserData, func(ctx context.Context) ([]FolderResponse, error) {
		folders, err := s.folders.ListAll(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list folders: %w", err)
		}
		out := make([]FolderResponse, len(folders))
		for i := range folders {
			out[i] = ToFolderResponse(&folders[i])
		}
		return out, nil
	})
}

// CreateFolder creates a folder, optionally nested under parent
func (s *FileService) CreateFolder(ctx context.Context, userID uuid.UUID, req CreateFolderRequest) (*FolderResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.folders.FindByID(ctx, userID, *req.ParentID); err != nil {
			return nil, err
		}
	}
	folder, err := files.NewFolder(userID, req.Name, req.ParentID)
	if err != nil {
		return nil, err
	}
	folder.Color = req.Color
	return s.saveFolder(ctx, folder)
}

// UpdateFolder renames or recolours a folder
func (s *FileService) UpdateFolder(ctx context.Context, userID, id uuid.UUID, req UpdateFolderRequest) (*FolderResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	folder, err := s.folders.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := folder.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		folder.Color = *req.Color
		folder.Touch()
	}
	return s.saveFolder(ctx, folder)
}

// DeleteFolder removes a folder. Its files move to the root and its
// subfolders move up to its parent.
func (s *FileService) DeleteFolder(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	folder, err := s.folders.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.files.MoveToRoot(ctx, userID, id); err != nil {
		return fmt.Errorf("move files to root: %w", err)
	}
	if err := s.folders.ReparentChildren(ctx, userID, id, folder.ParentID); err != nil {
		return fmt.Errorf("reparent folders: %w", err)
	}
	if err := s.folders.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceFolders)
	return nil
}

func (s *FileService) saveFolder(ctx context.Context, folder *files.Folder) (*FolderResponse, error) {
	if err := s.folders.Save(ctx, folder); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}
	s.cache.InvalidateResource(ctx, folder.UserID, query.ResourceFolders)
	resp := ToFolderResponse(folder)
	return &resp, nil
}
