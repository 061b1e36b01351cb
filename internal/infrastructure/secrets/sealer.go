// Package secrets seals confidential setting values with XChaCha20-Poly1305.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/agencydesk/backend/internal/domain/settings"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKey        = errors.New("secrets: key must be 32 bytes of hex")
	ErrMalformedSealed   = errors.New("secrets: sealed value is too short")
	ErrAuthenticationBad = errors.New("secrets: sealed value failed authentication")
)

// AEADSealer prefixes each ciphertext with its random nonce
type AEADSealer struct {
	key []byte
}

// NewSealer parses a 64 character hex key
func NewSealer(hexKey string) (*AEADSealer, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &AEADSealer{key: key}, nil
}

// GenerateKey returns a new random hex key suitable for NewSealer
func GenerateKey() (string, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Seal encrypts plaintext bound to additionalData
func (s *AEADSealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secrets: nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open decrypts a value produced by Seal with the same additionalData
func (s *AEADSealer) Open(sealed, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformedSealed
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, ErrAuthenticationBad
	}
	return plain, nil
}

var _ settings.Sealer = (*AEADSealer)(nil)
