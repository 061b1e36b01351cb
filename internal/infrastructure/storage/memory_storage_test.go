package storage

import (
	"context"
	"testing"
	"time"

	"github.com/agencydesk/backend/internal/domain/files"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage()

	require.NoError(t, s.Upload(ctx, "u1/1-a.txt", []byte("hello"), "text/plain"))
	assert.True(t, s.Exists("u1/1-a.txt"))

	data, err := s.Download(ctx, "u1/1-a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	url, err := s.GenerateDownloadURL(ctx, "u1/1-a.txt", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost/storage/u1/1-a.txt?expires=")

	require.NoError(t, s.DeleteObject(ctx, "u1/1-a.txt"))
	_, err = s.Download(ctx, "u1/1-a.txt")
	assert.ErrorIs(t, err, files.ErrFileNotFound)
	assert.Equal(t, 0, s.Len())

	assert.Error(t, s.Upload(ctx, "", nil, ""))
}

func TestNew_SelectsDriver(t *testing.T) {
	s, err := New(&config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryObjectStorage{}, s)

	s, err = New(testStorageConfig())
	require.NoError(t, err)
	assert.IsType(t, &S3ObjectStorage{}, s)

	_, err = New(&config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
