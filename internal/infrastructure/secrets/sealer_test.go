package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *AEADSealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestNewSealer_RejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "zz", strings.Repeat("ab", 16), strings.Repeat("g", 64)} {
		_, err := NewSealer(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestSealOpen(t *testing.T) {
	s := newTestSealer(t)
	ad := []byte("user-1/xero.connection")

	sealed, err := s.Seal([]byte(`{"access_token":"abc"}`), ad)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "abc")

	plain, err := s.Open(sealed, ad)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"abc"}`, string(plain))
}

func TestSeal_UsesFreshNonce(t *testing.T) {
	s := newTestSealer(t)
	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_Failures(t *testing.T) {
	s := newTestSealer(t)
	sealed, err := s.Seal([]byte("secret"), []byte("a"))
	require.NoError(t, err)

	_, err = s.Open(sealed, []byte("b"))
	assert.ErrorIs(t, err, ErrAuthenticationBad)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = s.Open(tampered, []byte("a"))
	assert.ErrorIs(t, err, ErrAuthenticationBad)

	_, err = s.Open([]byte("short"), nil)
	assert.ErrorIs(t, err, ErrMalformedSealed)

	other := newTestSealer(t)
	_, err = other.Open(sealed, []byte("a"))
	assert.ErrorIs(t, err, ErrAuthenticationBad)
}
