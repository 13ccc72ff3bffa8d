// Package auth contains domain-level types for users, sessions, and
// impersonation. It is pure and free of framework/adapter concerns.
package auth

import "time"

// User is the local identity record, created on first sign-in.
type User struct {
	// ID is the internal identifier assigned on first sign-in.
	ID string `json:"id"`
	// Subject is the provider-issued stable subject identifier.
	Subject string `json:"subject"`
	Email   string `json:"email"`
	// IsAdmin is derived per-request from the admin allow-list.
	// It is never persisted.
	IsAdmin bool `json:"-"`
}

// Session is the server-side record persisted for an authenticated user.
// Token is an opaque random identifier; expiry slides forward on every
// successful resolution.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionTTL is the sliding expiry window for sessions.
const SessionTTL = 7 * 24 * time.Hour

// Identity is the verified, per-request claim set extracted from a
// provider-issued identity assertion. It is never persisted; only Subject
// and Email carry forward into the User lookup.
type Identity struct {
	Subject   string
	Email     string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ImpersonationClaims is the payload of the signed impersonation capability
// token. Expiration is epoch seconds so the encoded form is stable.
type ImpersonationClaims struct {
	ImpersonatorEmail string `json:"impersonator_email"`
	ImpersonatedEmail string `json:"impersonated_email"`
	Expiration        int64  `json:"expiration"`
}

// Expired reports whether the claims are expired at now.
func (c ImpersonationClaims) Expired(now time.Time) bool {
	return !now.Before(time.Unix(c.Expiration, 0))
}

// ImpersonationTTL is the validity window baked into a freshly signed
// impersonation token.
const ImpersonationTTL = time.Hour

// Identity resolution for a request: the authenticated user plus, when an
// impersonation token is in force, the acting user handlers should present
// data for. ActingUser never mutates the authenticated identity.
type RequestIdentity struct {
	User   User
	Acting *User
}

// Effective returns the user whose data the request should operate on:
// the impersonated user when impersonation is active, otherwise the
// authenticated user.
func (ri RequestIdentity) Effective() User {
	if ri.Acting != nil {
		return *ri.Acting
	}
	return ri.User
}

// Impersonating reports whether an acting identity is in force.
func (ri RequestIdentity) Impersonating() bool { return ri.Acting != nil }
