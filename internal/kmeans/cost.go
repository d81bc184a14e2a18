package kmeans

import (
	"context"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
)

// Cost returns the sum of squared distances of every data row to its assigned
// center. With nil labels the nearest center is used.
func Cost[T dense.Float](
	ctx context.Context, env Env,
	data, centers dense.Matrix[T], metric distance.Metric[T], labels []int,
) (float64, error) {
	if labels == nil {
		var err error
		if labels, _, err = Assign(ctx, env, data, centers, metric); err != nil {
			return 0, err
		}
	}
	dists, err := labelledDistances(ctx, env, data, centers, metric, labels)
	if err != nil {
		return 0, err
	}
	return tileSum(ctx, env, dists)
}

// labelledDistances evaluates the squared metric distance of every row to
// the center given by labels.
func labelledDistances[T dense.Float](
	ctx context.Context, env Env,
	data, centers dense.Matrix[T], metric distance.Metric[T], labels []int,
) ([]T, error) {
	if err := validateLabels(labels, data.Rows(), centers.Rows()); err != nil {
		return nil, err
	}
	if centers.Cols() != data.Cols() {
		return nil, &ErrDimensionMismatch{Expected: data.Cols(), Actual: centers.Cols()}
	}

	dists := make([]T, data.Rows())
	err := env.runner().For(ctx, data.Rows(), env.grain(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			dists[i] = metric.SquaredDistance(data.Row(i), centers.Row(labels[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dists, nil
}

func validateLabels(labels []int, n, k int) error {
	if len(labels) != n {
		return &ErrAssignmentLength{Expected: n, Actual: len(labels)}
	}
	for i, l := range labels {
		if l < 0 || l >= k {
			return &ErrInvalidAssignment{Index: i, Label: l, K: k}
		}
	}
	return nil
}
