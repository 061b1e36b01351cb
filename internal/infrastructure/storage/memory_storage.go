package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agencydesk/backend/internal/domain/files"
	infraconfig "github.com/agencydesk/backend/internal/infrastructure/config"
)

var _ files.ObjectStorage = (*MemoryObjectStorage)(nil)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps blobs in process memory.
// Used when storage.driver is "memory" and in tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	// BaseURL prefixes public and download URLs
	BaseURL string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string]memoryObject),
		BaseURL: "http://localhost/storage",
	}
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Download returns a copy of the blob
func (s *MemoryObjectStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, files.ErrFileNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// DeleteObject removes the blob; missing keys are not an error
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// GenerateDownloadURL returns a URL carrying the expiry time
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if expires <= 0 {
		expires = defaultPresignExpiry
	}
	expiresAt := time.Now().Add(expires).UTC().Format(time.RFC3339)
	return s.PublicURL(key) + "?expires=" + url.QueryEscape(expiresAt), nil
}

// PublicURL returns BaseURL joined with the escaped key
func (s *MemoryObjectStorage) PublicURL(key string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + escapeKey(key)
}

// Exists reports whether key is stored
func (s *MemoryObjectStorage) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// New picks the storage driver from configuration
func New(cfg *infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (files.ObjectStorage, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == "memory" {
		return NewMemoryObjectStorage(), nil
	}
	if cfg.Driver != "s3" {
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
	return NewS3ObjectStorage(cfg, opts...)
}
