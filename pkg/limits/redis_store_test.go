package limits_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/limits"
)

func newRedisStore(t *testing.T, opts ...limits.RedisStoreOption) (*limits.RedisUsageStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return limits.NewRedisUsageStore(client, opts...), mr
}

func TestRedisUsageStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("absent counter reads as zero", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		used, err := store.Get(ctx, userID, limits.ResourceSchoolsSent)
		require.NoError(t, err)
		assert.Equal(t, int64(0), used)
	})

	t.Run("increment initializes and accumulates", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)

		got, err := store.IncrementBy(ctx, userID, limits.ResourceSchoolsSent, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)

		got, err = store.IncrementBy(ctx, userID, limits.ResourceSchoolsSent, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got)

		used, err := store.Get(ctx, userID, limits.ResourceSchoolsSent)
		require.NoError(t, err)
		assert.Equal(t, int64(5), used)
	})

	t.Run("counters are period scoped", func(t *testing.T) {
		t.Parallel()

		period := "2026-01"
		store, _ := newRedisStore(t, limits.WithPeriodFunc(func(time.Time) string { return period }))

		_, err := store.IncrementBy(ctx, userID, limits.ResourceAICalls, 4)
		require.NoError(t, err)

		// Rolling the period over exposes a fresh counter.
		period = "2026-02"
		used, err := store.Get(ctx, userID, limits.ResourceAICalls)
		require.NoError(t, err)
		assert.Equal(t, int64(0), used)
	})

	t.Run("resources and users are isolated", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		other := uuid.New()

		_, err := store.IncrementBy(ctx, userID, limits.ResourceSchoolsSent, 7)
		require.NoError(t, err)

		used, err := store.Get(ctx, userID, limits.ResourceTemplates)
		require.NoError(t, err)
		assert.Equal(t, int64(0), used)

		used, err = store.Get(ctx, other, limits.ResourceSchoolsSent)
		require.NoError(t, err)
		assert.Equal(t, int64(0), used)
	})

	t.Run("unreachable redis fails closed", func(t *testing.T) {
		t.Parallel()

		store, mr := newRedisStore(t)
		mr.Close()

		_, err := store.Get(ctx, userID, limits.ResourceSchoolsSent)
		assert.ErrorIs(t, err, limits.ErrUsageUnavailable)

		_, err = store.IncrementBy(ctx, userID, limits.ResourceSchoolsSent, 1)
		assert.ErrorIs(t, err, limits.ErrConsumeFailed)
	})
}
