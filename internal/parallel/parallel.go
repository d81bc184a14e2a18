package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileFunc processes the half-open index range [lo, hi).
type TileFunc func(lo, hi int) error

// Runner executes tiles of a loop, possibly in parallel.
type Runner interface {
	// Workers returns the maximum number of tiles processed concurrently.
	Workers() int
	// For runs fn over [0, n) in tiles of grain items and waits for all of
	// them. The first error cancels scheduling of remaining tiles.
	For(ctx context.Context, n, grain int, fn TileFunc) error
}

// NumTiles returns the number of tiles For creates for n items.
func NumTiles(n, grain int) int {
	if n <= 0 {
		return 0
	}
	if grain <= 0 {
		grain = n
	}
	return (n + grain - 1) / grain
}

// TileBounds returns the range of tile t.
func TileBounds(t, n, grain int) (int, int) {
	if grain <= 0 {
		grain = n
	}
	lo := t * grain
	return lo, min(lo+grain, n)
}

// Group is a Runner backed by errgroup with a concurrency limit.
type Group struct {
	workers int
}

// NewGroup returns a Group limited to workers goroutines.
// workers <= 0 selects runtime.GOMAXPROCS(0).
func NewGroup(workers int) *Group {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Group{workers: workers}
}

// Workers implements Runner.
func (g *Group) Workers() int { return g.workers }

// For implements Runner.
func (g *Group) For(ctx context.Context, n, grain int, fn TileFunc) error {
	tiles := NumTiles(n, grain)
	if tiles == 0 {
		return ctx.Err()
	}
	if g.workers == 1 || tiles == 1 {
		return serial(ctx, n, grain, tiles, fn)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for t := range tiles {
		if egCtx.Err() != nil {
			break
		}
		lo, hi := TileBounds(t, n, grain)
		eg.Go(func() error {
			return fn(lo, hi)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func serial(ctx context.Context, n, grain, tiles int, fn TileFunc) error {
	for t := range tiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		lo, hi := TileBounds(t, n, grain)
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}
