package kmeans

import (
	"context"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
)

// Assign maps every data row to its nearest center under the squared metric
// distance. Ties resolve to the lowest center index.
func Assign[T dense.Float](
	ctx context.Context, env Env,
	data, centers dense.Matrix[T], metric distance.Metric[T],
) ([]int, []T, error) {
	if err := checkCenters(data, centers); err != nil {
		return nil, nil, err
	}
	f, err := newFrame(ctx, env, data, metric)
	if err != nil {
		return nil, nil, err
	}
	return assignFrame(ctx, env, f, centers, metric)
}

func checkCenters[T dense.Float](data, centers dense.Matrix[T]) error {
	if centers.Rows() == 0 {
		return ErrInvalidK
	}
	if centers.Cols() != data.Cols() {
		return &ErrDimensionMismatch{Expected: data.Cols(), Actual: centers.Cols()}
	}
	return nil
}

// assignFrame assigns the rows of f to centers given in data coordinates.
func assignFrame[T dense.Float](
	ctx context.Context, env Env,
	f *frame[T], centers dense.Matrix[T], metric distance.Metric[T],
) ([]int, []T, error) {
	k, err := f.kernelForMatrix(ctx, env, centers, metric)
	if err != nil {
		return nil, nil, err
	}

	n, nc := f.data.Rows(), centers.Rows()
	labels := make([]int, n)
	dists := make([]T, n)

	err = env.runner().For(ctx, n, env.grain(), func(lo, hi int) error {
		width := hi - lo
		buf, release, err := alloc[T](env, nc*width)
		if err != nil {
			return err
		}
		defer release()

		k.fill(lo, hi, buf, width, lo, true)

		for j := 0; j < width; j++ {
			best, bestDist := 0, buf[j]
			for c := 1; c < nc; c++ {
				if d := buf[c*width+j]; d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[lo+j] = best
			dists[lo+j] = bestDist
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return labels, dists, nil
}
