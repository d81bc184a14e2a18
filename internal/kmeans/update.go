package kmeans

import (
	"context"

	"github.com/hupe1980/clustr/dense"
	"gonum.org/v1/gonum/floats"
)

// columnGrain is the number of feature columns per update tile.
const columnGrain = 8

// updateCenters replaces every center with the mean of its assigned rows.
// Centers without members keep their previous position. Work is split over
// feature columns; each column is summed sequentially over the rows so the
// result does not depend on the number of workers.
func updateCenters[T dense.Float](ctx context.Context, env Env, data dense.Matrix[T], labels []int, prev dense.Matrix[T]) (dense.Matrix[T], error) {
	k, dim := prev.Rows(), prev.Cols()

	counts := make([]float64, k)
	for _, l := range labels {
		counts[l]++
	}

	next := prev.Clone()
	out := next.Data()
	src := data.Data()

	err := env.runner().For(ctx, dim, columnGrain, func(lo, hi int) error {
		sums := make([]float64, k)
		for col := lo; col < hi; col++ {
			clear(sums)
			for i, l := range labels {
				sums[l] += float64(src[i*dim+col])
			}
			floats.Div(sums, counts)
			for c, mean := range sums {
				if counts[c] > 0 {
					out[c*dim+col] = T(mean)
				}
			}
		}
		return nil
	})
	if err != nil {
		return dense.Matrix[T]{}, err
	}
	return next, nil
}
