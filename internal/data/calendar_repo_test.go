package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltm/adventcal/internal/domain/model"
	"github.com/ltm/adventcal/internal/testutil"
)

func TestCalendarRepo_MessagesSeeded(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	repo := NewCalendarRepo(pool)
	for _, day := range []int{1, model.DayCount} {
		msg, err := repo.MessageForDay(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, day, msg.Day)
		assert.NotEmpty(t, msg.Body)
	}
}

func TestCalendarRepo_OpenDay(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, pool)
	ctx := context.Background()

	users := NewUserRepo(pool)
	user, err := users.UpsertBySubject(ctx, "subject-1", "user@example.com")
	require.NoError(t, err)

	repo := NewCalendarRepo(pool)

	opened, err := repo.IsOpened(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.False(t, opened)

	require.NoError(t, repo.OpenDay(ctx, user.ID, 5))
	// Re-opening is a no-op.
	require.NoError(t, repo.OpenDay(ctx, user.ID, 5))

	opened, err = repo.IsOpened(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.True(t, opened)

	require.NoError(t, repo.OpenDay(ctx, user.ID, 2))
	days, err := repo.OpenedDays(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, days)
}
