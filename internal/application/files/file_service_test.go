package files

import (
	"context"
	"errors"
	"testing"

	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/internal/infrastructure/storage"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingFileRepo struct {
	files.FileRepository
}

func (failingFileRepo) Save(context.Context, *files.FileItem) error {
	return errors.New("insert failed")
}

func newTestService(t *testing.T) (*FileService, *storage.MemoryObjectStorage) {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	blobs := storage.NewMemoryObjectStorage()
	svc := NewFileService(persistence.NewGormFileRepository(db), persistence.NewGormFolderRepository(db), blobs, qc, zap.NewNop())
	return svc, blobs
}

func upload(t *testing.T, svc *FileService, name, mime string, folderID *uuid.UUID) *FileResponse {
	t.Helper()
	resp, err := svc.UploadFile(context.Background(), testutil.TestUserID, UploadFileRequest{
		FolderID:    folderID,
		Name:        name,
		ContentType: mime,
		Data:        []byte("content of " + name),
	})
	require.NoError(t, err)
	return resp
}

func TestFileService_UploadAndDownload(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	f := upload(t, svc, "Q3 plan.pdf", "application/pdf", nil)
	assert.Contains(t, f.StoragePath, userID.String()+"/")
	assert.Contains(t, f.StoragePath, "-Q3_plan.pdf")
	assert.Equal(t, "document", f.Kind)
	assert.True(t, blobs.Exists(f.StoragePath))

	link, err := svc.DownloadFile(ctx, userID, f.ID, false)
	require.NoError(t, err)
	assert.Contains(t, link.URL, "expires=")
	assert.NotNil(t, link.ExpiresAt)
	assert.Nil(t, link.Data)

	inline, err := svc.DownloadFile(ctx, userID, f.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "content of Q3 plan.pdf", string(inline.Data))

	_, err = svc.DownloadFile(ctx, testutil.OtherUserID, f.ID, true)
	assert.ErrorIs(t, err, files.ErrFileNotFound)
}

func TestFileService_UploadRemovesBlobWhenInsertFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	blobs := storage.NewMemoryObjectStorage()
	repo := failingFileRepo{FileRepository: persistence.NewGormFileRepository(db)}
	svc := NewFileService(repo, persistence.NewGormFolderRepository(db), blobs, qc, zap.NewNop())

	_, err := svc.UploadFile(context.Background(), testutil.TestUserID, UploadFileRequest{Name: "a.txt", Data: []byte("x")})
	require.Error(t, err)
	assert.Zero(t, blobs.Len())
}

func TestFileService_TrashLifecycle(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	keep := upload(t, svc, "keep.png", "image/png", nil)
	gone := upload(t, svc, "gone.mp4", "video/mp4", nil)
	other := upload(t, svc, "other.txt", "text/plain", nil)

	_, err := svc.RestoreFile(ctx, userID, keep.ID)
	assert.Error(t, err)

	trashed, err := svc.TrashFile(ctx, userID, gone.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted)
	_, err = svc.TrashFile(ctx, userID, other.ID)
	require.NoError(t, err)

	page, err := svc.ListFiles(ctx, userID, FileListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, keep.ID, page.Data[0].ID)

	trash, err := svc.ListTrash(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, trash, 2)

	stats, err := svc.GetFileStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 2, stats.InTrash)
	assert.Equal(t, 1, stats.ByKind[files.FileKindImage])

	restored, err := svc.RestoreFile(ctx, userID, other.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	result, err := svc.EmptyTrash(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.Zero(t, result.Failed)
	assert.False(t, blobs.Exists(gone.StoragePath))
	assert.Equal(t, 2, blobs.Len())

	require.NoError(t, svc.PermanentlyDeleteFile(ctx, userID, keep.ID))
	assert.False(t, blobs.Exists(keep.StoragePath))
	_, err = svc.GetFile(ctx, userID, keep.ID)
	assert.ErrorIs(t, err, files.ErrFileNotFound)
}

func TestFileService_FilterByTypeAndStar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	img := upload(t, svc, "a.png", "image/png", nil)
	upload(t, svc, "b.jpg", "image/jpeg", nil)
	upload(t, svc, "c.pdf", "application/pdf", nil)

	page, err := svc.ListFiles(ctx, userID, FileListFilter{MimeTypes: []string{"image/"}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	starred := true
	_, err = svc.UpdateFile(ctx, userID, img.ID, UpdateFileRequest{IsStarred: &starred, Tags: []string{"brand"}})
	require.NoError(t, err)
	page, err = svc.ListFiles(ctx, userID, FileListFilter{StarredOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, []string{"brand"}, page.Data[0].Tags)
}

func TestFileService_DeleteFolderMovesFilesToRoot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := testutil.TestUserID

	parent, err := svc.CreateFolder(ctx, userID, CreateFolderRequest{Name: "Clients"})
	require.NoError(t, err)
	child, err := svc.CreateFolder(ctx, userID, CreateFolderRequest{Name: "Acme", ParentID: &parent.ID})
	require.NoError(t, err)
	nested, err := svc.CreateFolder(ctx, userID, CreateFolderRequest{Name: "Contracts", ParentID: &child.ID})
	require.NoError(t, err)

	f := upload(t, svc, "contract.pdf", "application/pdf", &child.ID)
	assert.Equal(t, child.ID, *f.FolderID)

	missing := uuid.New()
	_, err = svc.UploadFile(ctx, userID, UploadFileRequest{FolderID: &missing, Name: "x.txt"})
	assert.ErrorIs(t, err, files.ErrFolderNotFound)

	require.NoError(t, svc.DeleteFolder(ctx, userID, child.ID))

	got, err := svc.GetFile(ctx, userID, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	folders, err := svc.ListFolders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	for _, folder := range folders {
		if folder.ID == nested.ID {
			require.NotNil(t, folder.ParentID)
			assert.Equal(t, parent.ID, *folder.ParentID)
		}
	}
}

func TestFileService_RequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadFile(ctx, uuid.Nil, UploadFileRequest{Name: "a"})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.ListFiles(ctx, uuid.Nil, FileListFilter{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.EmptyTrash(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.ListFolders(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}
