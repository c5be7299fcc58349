package ecs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// span is a half-open range [lo, hi) of a partitioned slice.
type span struct {
	lo, hi int
}

// partition splits n items into at most parts contiguous, near-equal spans.
func partition(n, parts int) []span {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	out := make([]span, 0, parts)
	size, rem := n/parts, n%parts
	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, span{lo, hi})
		lo = hi
	}
	return out
}

// ParallelFor runs fn over contiguous chunks of [0, n) on up to workers
// goroutines. The first error cancels ctx for the remaining chunks and is
// returned. With one worker fn runs on the calling goroutine.
func ParallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	spans := partition(n, workers)
	if len(spans) <= 1 {
		if n <= 0 {
			return nil
		}
		return fn(ctx, 0, n)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(spans))
	for _, sp := range spans {
		g.Go(func() error {
			return fn(gctx, sp.lo, sp.hi)
		})
	}
	return g.Wait()
}

// Gather maps fn over entities on up to workers goroutines and returns the
// results index-aligned with entities, so any reduction the caller does over
// the slice is independent of the worker count.
func Gather[R any](ctx context.Context, entities []Entity, workers int, fn func(Entity) (R, error)) ([]R, error) {
	out := make([]R, len(entities))
	err := ParallelFor(ctx, len(entities), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(entities[i])
			if err != nil {
				return err
			}
			out[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
