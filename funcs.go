package clustr

import (
	"context"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
)

// Seed selects k initial centers from data with greedy k-means++ using a
// temporary Clusterer.
func Seed[T dense.Float](ctx context.Context, data dense.Matrix[T], k int, metric distance.Metric[T], optFns ...Option) (*SeedResult[T], error) {
	c, err := New(metric, optFns...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Seed(ctx, data, k)
}

// Assign maps every point of data to its nearest center.
func Assign[T dense.Float](ctx context.Context, data, centers dense.Matrix[T], metric distance.Metric[T], optFns ...Option) (*Assignment[T], error) {
	c, err := New(metric, optFns...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Assign(ctx, data, centers)
}

// Refine runs Lloyd iterations from initial.
func Refine[T dense.Float](ctx context.Context, data, initial dense.Matrix[T], metric distance.Metric[T], optFns ...Option) (*RefineResult[T], error) {
	c, err := New(metric, optFns...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Refine(ctx, data, initial)
}

// Cost returns the sum of squared distances of every point to its center.
// With nil labels every point is charged to its nearest center.
func Cost[T dense.Float](ctx context.Context, data, centers dense.Matrix[T], labels []int, metric distance.Metric[T], optFns ...Option) (float64, error) {
	c, err := New(metric, optFns...)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.Cost(ctx, data, centers, labels)
}

// Fit seeds k centers and refines them.
func Fit[T dense.Float](ctx context.Context, data dense.Matrix[T], k int, metric distance.Metric[T], optFns ...Option) (*FitResult[T], error) {
	c, err := New(metric, optFns...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Fit(ctx, data, k)
}
