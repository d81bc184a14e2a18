package kmeans

import (
	"context"
	"unsafe"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/internal/parallel"
	"github.com/hupe1980/clustr/internal/resource"
)

// DefaultGrain is the number of data rows per kernel tile.
const DefaultGrain = 1024

// Env carries the execution resources shared by all kernels of one call.
// The zero value runs on GOMAXPROCS goroutines without resource limits.
type Env struct {
	Runner    parallel.Runner
	Resources *resource.Controller
	// Grain is the number of data rows per tile. Reductions are tiled by
	// Grain, so changing it may change results in the last bits.
	Grain int
}

func (e Env) runner() parallel.Runner {
	if e.Runner == nil {
		return parallel.NewGroup(0)
	}
	return e.Runner
}

func (e Env) grain() int {
	if e.Grain <= 0 {
		return DefaultGrain
	}
	return e.Grain
}

func (e Env) workers() int {
	return e.runner().Workers()
}

// alloc reserves memory for n elements of T from the controller and
// returns the buffer together with its release func.
func alloc[T dense.Float](e Env, n int) ([]T, func(), error) {
	var zero T
	bytes := int64(n) * int64(unsafe.Sizeof(zero))
	if err := e.Resources.AcquireMemory(bytes); err != nil {
		return nil, nil, err
	}
	return make([]T, n), func() { e.Resources.ReleaseMemory(bytes) }, nil
}

// tileSum reduces values in fixed tiles and combines the partial sums in
// tile order.
func tileSum[T dense.Float](ctx context.Context, e Env, values []T) (float64, error) {
	grain := e.grain()
	partials := make([]float64, parallel.NumTiles(len(values), grain))
	err := e.runner().For(ctx, len(values), grain, func(lo, hi int) error {
		var s float64
		for _, v := range values[lo:hi] {
			s += float64(v)
		}
		partials[lo/grain] = s
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range partials {
		total += p
	}
	return total, nil
}
