package cryptoutil

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomToken(t *testing.T) {
	tok, err := RandomToken(16)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, 16)

	other, err := RandomToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestRandomBytes(t *testing.T) {
	a, err := RandomBytes(32)
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := RandomBytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSignVerify(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	data := []byte("payload under test")
	sig := Sign(data, key)
	assert.Len(t, sig, 32)

	assert.True(t, Verify(data, sig, key))
	assert.False(t, Verify([]byte("different payload"), sig, key))

	// Flipping a single signature bit must fail verification.
	tampered := append([]byte(nil), sig...)
	tampered[0] ^= 0x01
	assert.False(t, Verify(data, tampered, key))

	otherKey := append([]byte(nil), key...)
	otherKey[0] ^= 0x01
	assert.False(t, Verify(data, sig, otherKey))
}
