package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/ltm/adventcal/internal/domain/auth"
	"github.com/ltm/adventcal/internal/ports"
	"github.com/ltm/adventcal/internal/testutil"
)

func TestSessionRepo_CreateAndResolve(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	users := NewUserRepo(pool)
	user, err := users.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	repo := NewSessionRepo(pool)
	sess, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(domainauth.SessionTTL), sess.ExpiresAt, time.Minute)

	userID, err := repo.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestSessionRepo_ResolveUnknownToken(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)

	repo := NewSessionRepo(pool)
	_, err := repo.Resolve(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = repo.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionRepo_SlidingExpiry(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	users := NewUserRepo(pool)
	user, err := users.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	start := time.Now().UTC()
	clock := NewFixedTimeProvider(start)
	repo := NewSessionRepoWithTimeProvider(pool, clock)

	sess, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)

	// One second before expiry the session resolves and slides forward.
	clock.SetTime(start.Add(domainauth.SessionTTL - time.Second))
	userID, err := repo.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// The slide moved expiry to a full window from the last resolution, so
	// the original expiry time is now well within bounds.
	clock.SetTime(start.Add(domainauth.SessionTTL + time.Hour))
	_, err = repo.Resolve(ctx, sess.Token)
	assert.NoError(t, err)
}

func TestSessionRepo_ExpiredSessionIsGone(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	users := NewUserRepo(pool)
	user, err := users.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	start := time.Now().UTC()
	clock := NewFixedTimeProvider(start)
	repo := NewSessionRepoWithTimeProvider(pool, clock)

	sess, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)

	// One second past expiry the session fails to resolve and the lazy
	// sweep has removed the row.
	clock.SetTime(start.Add(domainauth.SessionTTL + time.Second))
	_, err = repo.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM sessions WHERE token = $1`, sess.Token).Scan(&count))
	assert.Equal(t, 0, count)

	// Even rewinding the clock cannot resurrect it.
	clock.SetTime(start)
	_, err = repo.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionRepo_DeleteIsIdempotent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	users := NewUserRepo(pool)
	user, err := users.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	repo := NewSessionRepo(pool)
	sess, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, sess.Token))
	_, err = repo.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	assert.NoError(t, repo.Delete(ctx, sess.Token))
	assert.NoError(t, repo.Delete(ctx, ""))
}
