package repository

import (
	"context"
	"sync"
	"testing"

	"repbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByTelegramID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByTelegramID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, "alice")
		require.NoError(t, err)

		user, err := repo.GetByTelegramID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, created.TelegramID, user.TelegramID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(0), user.Points)
	})
}

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user, err := repo.Create(ctx, 123456, "alice")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, int64(123456), user.TelegramID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(0), user.Points)
		assert.False(t, user.CreatedAt.IsZero())
		assert.False(t, user.UpdatedAt.IsZero())
	})

	t.Run("duplicate telegram ID", func(t *testing.T) {
		_, err := repo.Create(ctx, 789012, "bob")
		require.NoError(t, err)

		_, err = repo.Create(ctx, 789012, "someone_else")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestUserRepository_ApplyDelta(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("increment and decrement", func(t *testing.T) {
		_, err := repo.Create(ctx, 1001, "alice")
		require.NoError(t, err)

		oldPoints, newPoints, err := repo.ApplyDelta(ctx, 1001, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), oldPoints)
		assert.Equal(t, int64(1), newPoints)

		oldPoints, newPoints, err = repo.ApplyDelta(ctx, 1001, -1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), oldPoints)
		assert.Equal(t, int64(0), newPoints)
	})

	t.Run("decrement floors at zero", func(t *testing.T) {
		_, err := repo.Create(ctx, 1002, "bob")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			oldPoints, newPoints, err := repo.ApplyDelta(ctx, 1002, -1)
			require.NoError(t, err)
			assert.Equal(t, int64(0), oldPoints)
			assert.Equal(t, int64(0), newPoints)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := repo.ApplyDelta(ctx, 999999, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent increments lose no updates", func(t *testing.T) {
		_, err := repo.Create(ctx, 1003, "carol")
		require.NoError(t, err)

		const workers = 10
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, errs[i] = repo.ApplyDelta(ctx, 1003, 1)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		user, err := repo.GetByTelegramID(ctx, 1003)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), user.Points)
	})
}

func TestUserRepository_SetPoints(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("set value", func(t *testing.T) {
		_, err := repo.Create(ctx, 2001, "alice")
		require.NoError(t, err)

		oldPoints, newPoints, err := repo.SetPoints(ctx, 2001, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(0), oldPoints)
		assert.Equal(t, int64(42), newPoints)

		user, err := repo.GetByTelegramID(ctx, 2001)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.Points)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := repo.SetPoints(ctx, 999999, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 3001, "alice")
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, 3001)
	require.NoError(t, err)
	assert.True(t, removed)

	user, err := repo.GetByTelegramID(ctx, 3001)
	require.NoError(t, err)
	assert.Nil(t, user)

	removed, err = repo.Delete(ctx, 3001)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUserRepository_ListByPoints(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	seed := []struct {
		id     int64
		name   string
		points int64
	}{
		{4001, "alice", 30},
		{4002, "bob", 10},
		{4003, "carol", 30},
		{4004, "dave", 50},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, s.id, s.name)
		require.NoError(t, err)
		_, _, err = repo.SetPoints(ctx, s.id, s.points)
		require.NoError(t, err)
	}

	users, err := repo.ListByPoints(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 4)

	assert.Equal(t, int64(4004), users[0].TelegramID)
	// Equal points: alice was inserted before carol, so she sorts first
	assert.Equal(t, int64(4001), users[1].TelegramID)
	assert.Equal(t, int64(4003), users[2].TelegramID)
	assert.Equal(t, int64(4002), users[3].TelegramID)

	// Re-running with no intervening mutation returns the identical order
	again, err := repo.ListByPoints(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 4)
	for i := range users {
		assert.Equal(t, users[i].TelegramID, again[i].TelegramID)
	}

	t.Run("limit applies", func(t *testing.T) {
		top, err := repo.ListByPoints(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, top, 2)
	})
}

func TestUserRepository_ListAll(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for i, id := range []int64{5003, 5001, 5002} {
		_, err := repo.Create(ctx, id, "user")
		require.NoError(t, err)
		_, _, err = repo.SetPoints(ctx, id, int64(i))
		require.NoError(t, err)
	}

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Insertion order, regardless of points
	assert.Equal(t, int64(5003), users[0].TelegramID)
	assert.Equal(t, int64(5001), users[1].TelegramID)
	assert.Equal(t, int64(5002), users[2].TelegramID)
}
