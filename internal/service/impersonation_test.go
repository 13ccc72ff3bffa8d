package service

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var impersonationKey = []byte("fedcba9876543210fedcba9876543210")

func TestImpersonator_SignVerify(t *testing.T) {
	imp := NewImpersonator(impersonationKey)

	raw, err := imp.Sign("Admin@Example.com", "friend@example.com")
	require.NoError(t, err)

	tok, err := imp.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", tok.Claims.ImpersonatorEmail)
	assert.Equal(t, "friend@example.com", tok.Claims.ImpersonatedEmail)
	assert.True(t, imp.Verify(tok, "admin@example.com"))
	assert.True(t, imp.Verify(tok, "ADMIN@example.com"))
}

func TestImpersonator_WrongImpersonator(t *testing.T) {
	imp := NewImpersonator(impersonationKey)

	raw, err := imp.Sign("admin@example.com", "friend@example.com")
	require.NoError(t, err)
	tok, err := imp.Parse(raw)
	require.NoError(t, err)

	// A stolen token does not transfer: it is bound to the identity that
	// created it, not merely to possession.
	assert.False(t, imp.Verify(tok, "friend@example.com"))
	assert.False(t, imp.Verify(tok, "other@example.com"))
	assert.False(t, imp.Verify(tok, ""))
}

func TestImpersonator_TamperedPayload(t *testing.T) {
	imp := NewImpersonator(impersonationKey)

	raw, err := imp.Sign("admin@example.com", "friend@example.com")
	require.NoError(t, err)

	parts := strings.SplitN(raw, ".", 2)
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)

	// Swap the impersonated email inside the payload, keep the signature.
	tampered := strings.Replace(string(payload), "friend@example.com", "victim@example.com", 1)
	forged := base64.RawURLEncoding.EncodeToString([]byte(tampered)) + "." + parts[1]

	tok, err := imp.Parse(forged)
	require.NoError(t, err)
	assert.Equal(t, "victim@example.com", tok.Claims.ImpersonatedEmail)
	assert.False(t, imp.Verify(tok, "admin@example.com"))
}

func TestImpersonator_WrongKey(t *testing.T) {
	signer := NewImpersonator(impersonationKey)
	verifier := NewImpersonator([]byte("another-key-entirely-another-key"))

	raw, err := signer.Sign("admin@example.com", "friend@example.com")
	require.NoError(t, err)
	tok, err := verifier.Parse(raw)
	require.NoError(t, err)

	assert.False(t, verifier.Verify(tok, "admin@example.com"))
}

func TestImpersonator_Expired(t *testing.T) {
	imp := NewImpersonator(impersonationKey)

	issued := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	imp.now = func() time.Time { return issued }

	raw, err := imp.Sign("admin@example.com", "friend@example.com")
	require.NoError(t, err)
	tok, err := imp.Parse(raw)
	require.NoError(t, err)

	imp.now = func() time.Time { return issued.Add(imp.ttl - time.Second) }
	assert.True(t, imp.Verify(tok, "admin@example.com"))

	// Expiration at exactly now counts as expired.
	imp.now = func() time.Time { return issued.Add(imp.ttl) }
	assert.False(t, imp.Verify(tok, "admin@example.com"))

	imp.now = func() time.Time { return issued.Add(imp.ttl + time.Second) }
	assert.False(t, imp.Verify(tok, "admin@example.com"))
}

func TestImpersonator_ParseMalformed(t *testing.T) {
	imp := NewImpersonator(impersonationKey)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "bm90LWEtdG9rZW4"},
		{"empty payload", ".c2ln"},
		{"empty signature", "cGF5bG9hZA."},
		{"three parts", "YQ.Yg.Yw"},
		{"payload not base64", "!!!.c2ln"},
		{"signature not base64", "cGF5bG9hZA.!!!"},
		{"payload not json", base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".c2ln"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := imp.Parse(tc.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestImpersonator_VerifyZeroToken(t *testing.T) {
	imp := NewImpersonator(impersonationKey)
	assert.False(t, imp.Verify(ImpersonationToken{}, "admin@example.com"))
}
