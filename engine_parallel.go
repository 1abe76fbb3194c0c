package opimpact

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// closeBucketsParallel computes bucket closures on a bounded worker group.
// Each worker writes only its own slot, so buckets keep enumeration order.
// The graph is read-only and shared without locking.
func (e *Engine) closeBucketsParallel(ctx context.Context, buckets []Bucket) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(runtime.NumCPU(), len(buckets))))

	for i := range buckets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.closeBucket(&buckets[i])
		})
	}
	return g.Wait()
}
