package kmeans

import (
	"context"
	"math"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/internal/parallel"
	"gonum.org/v1/gonum/floats"
)

// frame is the data translated so that its mean lies near the origin,
// together with the squared norms of the translated rows.
//
// Squared distances do not change under translation, but the expansion
// |q|^2 - 2·q·x + |x|^2 cancels catastrophically when the points sit far
// from the origin relative to their spread. Every norm-based kernel
// therefore runs in the translated frame.
//
// The origin is the column mean rounded to a power of two not larger than
// the column spread, so integer-valued data stays integer-valued.
type frame[T dense.Float] struct {
	data   dense.Matrix[T]
	norms  []T
	origin []T // nil when the metric has no norm support
}

func newFrame[T dense.Float](ctx context.Context, env Env, data dense.Matrix[T], metric distance.Metric[T]) (*frame[T], error) {
	nm, ok := distance.SupportsNorms(metric)
	if !ok {
		return &frame[T]{data: data}, nil
	}

	origin, err := frameOrigin(ctx, env, data)
	if err != nil {
		return nil, err
	}

	f := &frame[T]{origin: origin}
	f.data = dense.Zeros[T](data.Rows(), data.Cols())
	err = env.runner().For(ctx, data.Rows(), env.grain(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			subtract(f.data.Row(i), data.Row(i), origin)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.norms, err = PrecomputeNorms(ctx, env, f.data, nm); err != nil {
		return nil, err
	}
	return f, nil
}

// translate returns m moved into the frame. Without an origin m is returned
// unchanged.
func (f *frame[T]) translate(m dense.Matrix[T]) dense.Matrix[T] {
	if f.origin == nil {
		return m
	}
	out := dense.Zeros[T](m.Rows(), m.Cols())
	for i := 0; i < m.Rows(); i++ {
		subtract(out.Row(i), m.Row(i), f.origin)
	}
	return out
}

// kernelFor returns a kernel from queries (already in the frame, with their
// norms when the frame has any) to all frame rows.
func (f *frame[T]) kernelFor(queries dense.Matrix[T], metric distance.Metric[T], queryNorms []T) *kernel[T] {
	k := &kernel[T]{queries: queries, data: f.data, metric: metric}
	if f.norms != nil {
		k.qn, k.dn = queryNorms, f.norms
	}
	return k
}

// kernelForMatrix translates queries into the frame and computes their norms.
func (f *frame[T]) kernelForMatrix(ctx context.Context, env Env, queries dense.Matrix[T], metric distance.Metric[T]) (*kernel[T], error) {
	if f.origin == nil {
		return f.kernelFor(queries, metric, nil), nil
	}
	q := f.translate(queries)
	nm, _ := distance.SupportsNorms(metric)
	qn, err := PrecomputeNorms(ctx, env, q, nm)
	if err != nil {
		return nil, err
	}
	return f.kernelFor(q, metric, qn), nil
}

// frameOrigin computes the snapped column means of data. Partial sums are
// reduced per tile and combined in tile order.
func frameOrigin[T dense.Float](ctx context.Context, env Env, data dense.Matrix[T]) ([]T, error) {
	n, d := data.Rows(), data.Cols()
	grain := env.grain()
	tiles := parallel.NumTiles(n, grain)
	sums := make([]float64, tiles*d)
	squares := make([]float64, tiles*d)

	err := env.runner().For(ctx, n, grain, func(lo, hi int) error {
		tile := lo / grain
		s, sq := sums[tile*d:(tile+1)*d], squares[tile*d:(tile+1)*d]
		for i := lo; i < hi; i++ {
			for j, v := range data.Row(i) {
				x := float64(v)
				s[j] += x
				sq[j] += x * x
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mean := make([]float64, d)
	meanSq := make([]float64, d)
	for t := 0; t < tiles; t++ {
		floats.Add(mean, sums[t*d:(t+1)*d])
		floats.Add(meanSq, squares[t*d:(t+1)*d])
	}
	if n > 0 {
		floats.Scale(1/float64(n), mean)
		floats.Scale(1/float64(n), meanSq)
	}

	origin := make([]T, d)
	for j := range origin {
		origin[j] = T(snap(mean[j], math.Sqrt(max(meanSq[j]-mean[j]*mean[j], 0))))
	}
	return origin, nil
}

// snap rounds mean to a multiple of the largest power of two not above
// spread. A zero spread keeps the mean itself.
func snap(mean, spread float64) float64 {
	if spread == 0 || math.IsInf(spread, 0) || math.IsNaN(spread) {
		return mean
	}
	q := math.Exp2(math.Floor(math.Log2(spread)))
	return math.Round(mean/q) * q
}

func subtract[T dense.Float](dst, src, origin []T) {
	for j, v := range src {
		dst[j] = v - origin[j]
	}
}
