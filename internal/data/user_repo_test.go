package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltm/adventcal/internal/ports"
	"github.com/ltm/adventcal/internal/testutil"
)

func TestUserRepo_UpsertIsIdempotent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	repo := NewUserRepo(pool)

	first, err := repo.UpsertBySubject(ctx, "subject-1", "User@Example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "user@example.com", first.Email)

	// Same subject again, even with a different email: the first call's
	// values stick.
	second, err := repo.UpsertBySubject(ctx, "subject-1", "renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.Subject, second.Subject)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	repo := NewUserRepo(pool)
	created, err := repo.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	found, err := repo.GetByEmail(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ports.ErrUserNotFound)
}

func TestUserRepo_GetByID(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	repo := NewUserRepo(pool)
	created, err := repo.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ports.ErrUserNotFound)
}
