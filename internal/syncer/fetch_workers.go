package syncer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fetchAllByID executes fetch concurrently across ids using a bounded worker
// pool. Results keep the order of ids. The first error cancels the rest.
func fetchAllByID[T any](
	ctx context.Context,
	ids []string,
	workers int,
	fetch func(context.Context, string) (T, error),
) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if workers <= 0 {
		workers = 1
	}

	out := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fetch(gctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
