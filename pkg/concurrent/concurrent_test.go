package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEach(t *testing.T) {
	t.Run("Visits Every Item", func(t *testing.T) {
		var sum atomic.Int64
		items := []int64{1, 2, 3, 4, 5}
		err := ForEach(context.Background(), items, 2, func(_ context.Context, _ int, v int64) error {
			sum.Add(v)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, int64(15), sum.Load())
	})

	t.Run("Respects Limit", func(t *testing.T) {
		var running, peak atomic.Int32
		items := make([]int, 32)
		err := ForEach(context.Background(), items, 3, func(context.Context, int, int) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			running.Add(-1)
			return nil
		})
		require.NoError(t, err)
		require.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("First Error Cancels", func(t *testing.T) {
		boom := errors.New("boom")
		err := ForEach(context.Background(), []int{0, 1, 2}, 1, func(ctx context.Context, i int, _ int) error {
			if i == 0 {
				return boom
			}
			return ctx.Err()
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("Cancelled Parent", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var calls atomic.Int32
		err := ForEach(ctx, []int{1, 2}, 0, func(context.Context, int, int) error {
			calls.Add(1)
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, calls.Load())
	})
}

func TestMap(t *testing.T) {
	out, err := Map(context.Background(), []string{"a", "bb", "ccc"}, 0, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, out)

	_, err = Map(context.Background(), []int{1}, 0, func(context.Context, int) (int, error) {
		return 0, context.DeadlineExceeded
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
