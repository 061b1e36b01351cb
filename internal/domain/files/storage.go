package files

import (
	"context"
	"time"
)

// ObjectStorage stores file blobs
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	GenerateDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
	PublicURL(key string) string
}
