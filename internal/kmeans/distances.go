package kmeans

import (
	"context"
	"math"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// PrecomputeNorms returns |x_i|^2 for every row of m.
func PrecomputeNorms[T dense.Float](ctx context.Context, env Env, m dense.Matrix[T], metric distance.NormMetric[T]) ([]T, error) {
	norms := make([]T, m.Rows())
	err := env.runner().For(ctx, m.Rows(), env.grain(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			norms[i] = metric.NormSquared(m.Row(i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return norms, nil
}

// Distances computes the dense M×N matrix of distances between every query
// row and every data row. When the metric supports precomputed norms the
// squared distance is expanded as |q|^2 - 2·q·x + |x|^2 and the cross term is
// evaluated by GEMM. Without norm slices both sides are first translated
// towards the data mean; given norms are used as they are.
func Distances[T dense.Float](
	ctx context.Context, env Env,
	queries, data dense.Matrix[T], metric distance.Metric[T],
	queryNorms, dataNorms []T, squared bool,
) (dense.Matrix[T], error) {
	if queries.Cols() != data.Cols() {
		return dense.Matrix[T]{}, &ErrDimensionMismatch{Expected: data.Cols(), Actual: queries.Cols()}
	}

	m, n := queries.Rows(), data.Rows()
	out, release, err := alloc[T](env, m*n)
	if err != nil {
		return dense.Matrix[T]{}, err
	}
	defer release()

	var k *kernel[T]
	if queryNorms == nil && dataNorms == nil {
		f, err := newFrame(ctx, env, data, metric)
		if err != nil {
			return dense.Matrix[T]{}, err
		}
		if k, err = f.kernelForMatrix(ctx, env, queries, metric); err != nil {
			return dense.Matrix[T]{}, err
		}
	} else if k, err = newKernel(ctx, env, queries, data, metric, queryNorms, dataNorms); err != nil {
		return dense.Matrix[T]{}, err
	}

	err = env.runner().For(ctx, n, env.grain(), func(lo, hi int) error {
		k.fill(lo, hi, out, n, 0, squared)
		return nil
	})
	if err != nil {
		return dense.Matrix[T]{}, err
	}
	return dense.MustMatrix(out, m, n), nil
}

// kernel holds everything needed to fill any column block of a query × data
// distance matrix. It is read-only once built and shared by all tiles.
type kernel[T dense.Float] struct {
	queries, data dense.Matrix[T]
	metric        distance.Metric[T]
	qn, dn        []T // nil when the metric has no norm support
}

func newKernel[T dense.Float](
	ctx context.Context, env Env,
	queries, data dense.Matrix[T], metric distance.Metric[T],
	queryNorms, dataNorms []T,
) (*kernel[T], error) {
	k := &kernel[T]{queries: queries, data: data, metric: metric}

	nm, ok := distance.SupportsNorms(metric)
	if !ok {
		return k, nil
	}

	var err error
	if queryNorms == nil {
		if queryNorms, err = PrecomputeNorms(ctx, env, queries, nm); err != nil {
			return nil, err
		}
	}
	if dataNorms == nil {
		if dataNorms, err = PrecomputeNorms(ctx, env, data, nm); err != nil {
			return nil, err
		}
	}
	if len(queryNorms) != queries.Rows() {
		return nil, &ErrDimensionMismatch{Expected: queries.Rows(), Actual: len(queryNorms)}
	}
	if len(dataNorms) != data.Rows() {
		return nil, &ErrDimensionMismatch{Expected: data.Rows(), Actual: len(dataNorms)}
	}
	k.qn, k.dn = queryNorms, dataNorms
	return k, nil
}

// fill writes d(q_i, x_j) for every query i and data rows j in [lo, hi) to
// out[i*stride + (j-off)].
func (k *kernel[T]) fill(lo, hi int, out []T, stride, off int, squared bool) {
	m := k.queries.Rows()
	if m == 0 || hi <= lo {
		return
	}

	if k.qn == nil {
		for i := 0; i < m; i++ {
			q := k.queries.Row(i)
			base := i*stride - off
			for j := lo; j < hi; j++ {
				if squared {
					out[base+j] = k.metric.SquaredDistance(q, k.data.Row(j))
				} else {
					out[base+j] = k.metric.Distance(q, k.data.Row(j))
				}
			}
		}
		return
	}

	gemmABt(k.queries, k.data.RowRange(lo, hi), out[lo-off:], stride)

	for i := 0; i < m; i++ {
		qn := k.qn[i]
		base := i*stride - off
		for j := lo; j < hi; j++ {
			d := qn + k.dn[j] - 2*out[base+j]
			if d < 0 {
				d = 0 // Numerical stability
			}
			if !squared {
				d = T(math.Sqrt(float64(d)))
			}
			out[base+j] = d
		}
	}
}

// gemmABt computes out[i*stride+j] = a_i · b_j via BLAS GEMM.
//
// This is the key vectorized operation:
//
//	out = A @ B.T
//
// where A is (m × dim) and B is (n × dim), both row-major.
func gemmABt[T dense.Float](a, b dense.Matrix[T], out []T, stride int) {
	m, n, dim := a.Rows(), b.Rows(), a.Cols()
	if m == 0 || n == 0 {
		return
	}
	if dim == 0 {
		for i := 0; i < m; i++ {
			clear(out[i*stride : i*stride+n])
		}
		return
	}
	switch ad := any(a.Data()).(type) {
	case []float32:
		blas32.Gemm(blas.NoTrans, blas.Trans, 1,
			blas32.General{Rows: m, Cols: dim, Stride: dim, Data: ad},
			blas32.General{Rows: n, Cols: dim, Stride: dim, Data: any(b.Data()).([]float32)},
			0,
			blas32.General{Rows: m, Cols: n, Stride: stride, Data: any(out).([]float32)},
		)
	case []float64:
		blas64.Gemm(blas.NoTrans, blas.Trans, 1,
			blas64.General{Rows: m, Cols: dim, Stride: dim, Data: ad},
			blas64.General{Rows: n, Cols: dim, Stride: dim, Data: any(b.Data()).([]float64)},
			0,
			blas64.General{Rows: m, Cols: n, Stride: stride, Data: any(out).([]float64)},
		)
	}
}
