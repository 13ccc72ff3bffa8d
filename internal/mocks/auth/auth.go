// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	"github.com/ltm/adventcal/internal/ports"
)

// Compile-time conformance to the ports.
var (
	_ ports.IdentityProvider = (*FakeIdentityProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.UserStore        = (*MemoryUserStore)(nil)
)

// FakeIdentityProvider simulates the identity provider with a configurable
// identity and records how many exchanges were performed.
type FakeIdentityProvider struct {
	AuthURL      string
	Identity     domainauth.Identity
	ExchangeErr  error
	ExchangeFunc func(ctx context.Context, code string) (domainauth.Identity, error)

	mu            sync.Mutex
	ExchangeCalls int
}

// NewFakeIdentityProvider creates a provider with sensible defaults.
func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{
		AuthURL: "https://fake-idp/auth",
		Identity: domainauth.Identity{
			Subject:   "subject-1",
			Email:     "user@example.com",
			Issuer:    "https://accounts.google.com",
			IssuedAt:  time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (f *FakeIdentityProvider) AuthCodeURL(state string) string {
	return f.AuthURL + "?state=" + state
}

func (f *FakeIdentityProvider) Exchange(ctx context.Context, code string) (domainauth.Identity, error) {
	f.mu.Lock()
	f.ExchangeCalls++
	f.mu.Unlock()

	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, code)
	}
	if f.ExchangeErr != nil {
		return domainauth.Identity{}, f.ExchangeErr
	}
	return f.Identity, nil
}

// MemorySessionStore is an in-memory session store with sliding expiry,
// mirroring the relational store's semantics.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	nextID   int
	// Now can be swapped to control expiry in tests.
	Now func() time.Time
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
		Now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(_ context.Context, userID string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	sess := domainauth.Session{
		Token:     fmt.Sprintf("session-%d", m.nextID),
		UserID:    userID,
		ExpiresAt: m.Now().Add(domainauth.SessionTTL),
	}
	m.sessions[sess.Token] = sess
	return sess, nil
}

func (m *MemorySessionStore) Resolve(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	for t, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, t)
		}
	}

	sess, ok := m.sessions[token]
	if !ok {
		return "", ports.ErrSessionNotFound
	}
	sess.ExpiresAt = now.Add(domainauth.SessionTTL)
	m.sessions[token] = sess
	return sess.UserID, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len reports the number of live sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryUserStore is an in-memory user store with idempotent upsert.
type MemoryUserStore struct {
	mu      sync.Mutex
	byID    map[string]domainauth.User
	nextID  int
	Upserts int
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{byID: make(map[string]domainauth.User)}
}

func (m *MemoryUserStore) UpsertBySubject(_ context.Context, subject, email string) (domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++

	for _, u := range m.byID {
		if u.Subject == subject {
			return u, nil
		}
	}
	m.nextID++
	u := domainauth.User{
		ID:      fmt.Sprintf("user-%d", m.nextID),
		Subject: subject,
		Email:   strings.ToLower(email),
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *MemoryUserStore) GetByEmail(_ context.Context, email string) (domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return domainauth.User{}, ports.ErrUserNotFound
}

func (m *MemoryUserStore) GetByID(_ context.Context, id string) (domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return domainauth.User{}, ports.ErrUserNotFound
}

// Count reports the number of user rows.
func (m *MemoryUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
