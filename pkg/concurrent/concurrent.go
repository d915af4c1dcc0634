package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element with at most limit goroutines at a
// time; limit <= 0 means one goroutine per element. The context passed to
// action is cancelled as soon as one action fails, and the first error is
// returned once every started action has finished. A parent context that
// is done before all items were started yields its error.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(ctx context.Context, index int, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, i, item)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Map applies mapFn to every element concurrently and returns the results in
// input order. On error the partial results are returned with it.
func Map[T any, R any](ctx context.Context, items []T, limit int, mapFn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := ForEach(ctx, items, limit, func(ctx context.Context, i int, item T) error {
		r, err := mapFn(ctx, item)
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	return out, err
}
