package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/cryptoutil"
	"github.com/ltm/adventcal/internal/data/pgxutil"
	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	"github.com/ltm/adventcal/internal/ports"
)

// sessionTokenBytes is the entropy behind a session token. 128 bits makes
// token collisions negligible; the primary key is the only collision guard.
const sessionTokenBytes = 16

// SessionRepo provides database operations for sessions.
type SessionRepo struct {
	Pool         *pgxpool.Pool
	timeProvider TimeProvider
}

// NewSessionRepo creates a SessionRepo with the real time provider.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{Pool: pool, timeProvider: &RealTimeProvider{}}
}

// NewSessionRepoWithTimeProvider creates a SessionRepo with a custom time
// provider (useful for tests).
func NewSessionRepoWithTimeProvider(pool *pgxpool.Pool, tp TimeProvider) *SessionRepo {
	return &SessionRepo{Pool: pool, timeProvider: tp}
}

// Create generates a fresh random token and inserts the session with a full
// expiry window.
func (r *SessionRepo) Create(ctx context.Context, userID string) (domainauth.Session, error) {
	token, err := cryptoutil.RandomToken(sessionTokenBytes)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	sess := domainauth.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: r.timeProvider.Now().UTC().Add(domainauth.SessionTTL),
	}

	q := pgxutil.From(ctx, r.Pool)
	if _, err := q.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		sess.Token, sess.UserID, sess.ExpiresAt,
	); err != nil {
		return domainauth.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Resolve sweeps expired sessions and then touches the named session,
// extending its expiry and returning the owning user id in one statement.
// Both run in a single transaction so an expired session can never be
// resurrected by a read racing the sweep.
func (r *SessionRepo) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ports.ErrSessionNotFound
	}

	now := r.timeProvider.Now().UTC()
	var userID string
	err := pgxutil.WithinTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now); err != nil {
			return fmt.Errorf("sweep expired sessions: %w", err)
		}
		return tx.QueryRow(ctx, `
			UPDATE sessions
			SET expires_at = $2
			WHERE token = $1 AND expires_at > $3
			RETURNING user_id`,
			token, now.Add(domainauth.SessionTTL), now,
		).Scan(&userID)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ports.ErrSessionNotFound
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

// Delete removes the session. Deleting an absent token is not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	q := pgxutil.From(ctx, r.Pool)
	if _, err := q.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
