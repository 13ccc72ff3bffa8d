package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ltm/adventcal/internal/cryptoutil"
	domainauth "github.com/ltm/adventcal/internal/domain/auth"
)

// ErrMalformedToken is returned by Parse for any structurally invalid
// impersonation token. Malformed input fails before any signature check.
var ErrMalformedToken = errors.New("malformed impersonation token")

// ImpersonationToken is a parsed capability token. The encoded payload and
// signature are retained so Verify recomputes the HMAC over the exact bytes
// that were signed.
type ImpersonationToken struct {
	Claims    domainauth.ImpersonationClaims
	encoded   string
	signature []byte
}

// Impersonator signs and verifies compact, HMAC-protected, expiring
// capability tokens of the form base64(payload).base64(hmac).
type Impersonator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewImpersonator constructs an Impersonator signing under key.
func NewImpersonator(key []byte) *Impersonator {
	return &Impersonator{
		key: append([]byte(nil), key...),
		ttl: domainauth.ImpersonationTTL,
		now: time.Now,
	}
}

// Sign issues a token allowing impersonatorEmail to act as
// impersonatedEmail until the TTL elapses.
func (s *Impersonator) Sign(impersonatorEmail, impersonatedEmail string) (string, error) {
	claims := domainauth.ImpersonationClaims{
		ImpersonatorEmail: strings.ToLower(impersonatorEmail),
		ImpersonatedEmail: strings.ToLower(impersonatedEmail),
		Expiration:        s.now().Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	sig := cryptoutil.Sign([]byte(encoded), s.key)
	return encoded + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Parse splits and decodes a token string. Exactly two dot-separated parts
// are required; the payload must decode into the fixed claim shape.
func (s *Impersonator) Parse(token string) (ImpersonationToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ImpersonationToken{}, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ImpersonationToken{}, ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ImpersonationToken{}, ErrMalformedToken
	}

	var claims domainauth.ImpersonationClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ImpersonationToken{}, ErrMalformedToken
	}

	return ImpersonationToken{Claims: claims, encoded: parts[0], signature: sig}, nil
}

// Verify reports whether the token is valid for the given impersonator: the
// impersonator claim must equal the currently authenticated email, the
// expiration must be in the future, and the signature recomputed over the
// original encoded payload must match byte-for-byte. The capability is
// bound to the identity that created it, not to the bearer token alone.
func (s *Impersonator) Verify(tok ImpersonationToken, impersonatorEmail string) bool {
	if tok.encoded == "" {
		return false
	}
	if tok.Claims.ImpersonatorEmail != strings.ToLower(impersonatorEmail) {
		return false
	}
	if tok.Claims.Expired(s.now()) {
		return false
	}
	return cryptoutil.Verify([]byte(tok.encoded), tok.signature, s.key)
}
