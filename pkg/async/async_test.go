package async_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("await returns the result", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), "state u", func(_ context.Context, s string) (string, error) {
			return strings.ToUpper(s), nil
		})

		got, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, "STATE U", got)
	})

	t.Run("await returns the error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("render failed")
		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			return 0, wantErr
		})

		_, err := f.Await()
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("pre-canceled context skips the function", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		f := async.Async(ctx, 0, func(context.Context, int) (int, error) {
			called = true
			return 1, nil
		})

		_, err := f.Await()
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("await with timeout", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			time.Sleep(time.Second)
			return 1, nil
		})

		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		require.ErrorIs(t, err, async.ErrTimeout)
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("results keep input order", func(t *testing.T) {
		t.Parallel()

		inputs := []int{3, 1, 2}
		futures := make([]*async.Future[int], len(inputs))
		for i, n := range inputs {
			futures[i] = async.Async(context.Background(), n, func(_ context.Context, n int) (int, error) {
				time.Sleep(time.Duration(n) * 10 * time.Millisecond)
				return n * 10, nil
			})
		}

		results, err := async.WaitAll(futures...)
		require.NoError(t, err)
		assert.Equal(t, []int{30, 10, 20}, results)
	})

	t.Run("first error is surfaced", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		ok := async.Async(context.Background(), 0, func(context.Context, int) (int, error) { return 1, nil })
		bad := async.Async(context.Background(), 0, func(context.Context, int) (int, error) { return 0, wantErr })

		_, err := async.WaitAll(ok, bad)
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		results, err := async.WaitAll[int]()
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
