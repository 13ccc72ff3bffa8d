package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/data/pgxutil"
	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	apperrors "github.com/ltm/adventcal/internal/errors"
	"github.com/ltm/adventcal/internal/ports"
)

// UserRepo provides database operations for users.
type UserRepo struct {
	Pool *pgxpool.Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{Pool: pool}
}

// UpsertBySubject creates the user on first sign-in. On every later call
// with the same subject it returns the stored record unchanged; the no-op
// DO UPDATE makes RETURNING yield the existing row.
func (r *UserRepo) UpsertBySubject(ctx context.Context, subject, email string) (domainauth.User, error) {
	subject = strings.TrimSpace(subject)
	email = strings.ToLower(strings.TrimSpace(email))
	if subject == "" {
		return domainauth.User{}, apperrors.Validation("subject is required")
	}
	if email == "" {
		return domainauth.User{}, apperrors.Validation("email is required")
	}

	q := pgxutil.From(ctx, r.Pool)
	var u domainauth.User
	err := q.QueryRow(ctx, `
		INSERT INTO users (id, subject, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject) DO UPDATE SET subject = users.subject
		RETURNING id, subject, email`,
		uuid.NewString(), subject, email,
	).Scan(&u.ID, &u.Subject, &u.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Same email under a different subject.
			return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeConflict, "email already registered")
		}
		return domainauth.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domainauth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getBy(ctx, `SELECT id, subject, email FROM users WHERE email = $1`, email)
}

// GetByID returns the user with the given internal id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (domainauth.User, error) {
	return r.getBy(ctx, `SELECT id, subject, email FROM users WHERE id = $1`, id)
}

func (r *UserRepo) getBy(ctx context.Context, query, arg string) (domainauth.User, error) {
	if arg == "" {
		return domainauth.User{}, ports.ErrUserNotFound
	}
	q := pgxutil.From(ctx, r.Pool)
	var u domainauth.User
	err := q.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Subject, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.User{}, ports.ErrUserNotFound
		}
		return domainauth.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
