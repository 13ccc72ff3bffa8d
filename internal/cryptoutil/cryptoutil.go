// Package cryptoutil provides small helpers for random token generation
// and HMAC signing shared by the auth, session, and impersonation layers.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RandomBytes returns n bytes of cryptographically secure randomness.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return buf, nil
}

// RandomToken returns n bytes of randomness encoded as unpadded base64url,
// suitable for cookies and URLs.
func RandomToken(n int) (string, error) {
	buf, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Sign computes the HMAC-SHA256 of data under key.
func Sign(data, key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// Verify reports whether sig is a valid HMAC-SHA256 of data under key.
// The comparison is constant-time.
func Verify(data, sig, key []byte) bool {
	return hmac.Equal(Sign(data, key), sig)
}
