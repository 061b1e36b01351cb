package settings

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists settings keyed by (user, key)
type Repository interface {
	Find(ctx context.Context, userID uuid.UUID, key Key) (*Setting, error)
	List(ctx context.Context, userID uuid.UUID) ([]Setting, error)
	Save(ctx context.Context, s *Setting) error
	Delete(ctx context.Context, userID uuid.UUID, key Key) error
}

// Sealer encrypts secret setting values at rest
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(ciphertext, additionalData []byte) ([]byte, error)
}
