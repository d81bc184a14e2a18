package distance

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/internal/simd"
)

// Metric is the distance capability consumed by the clustering engine.
// Implementations must be safe for concurrent use.
type Metric[T dense.Float] interface {
	// Name returns the stable metric name (used by persisted models).
	Name() string
	// Distance returns the metric distance between a and b.
	Distance(a, b []T) T
	// SquaredDistance returns Distance(a, b)^2, possibly cheaper.
	SquaredDistance(a, b []T) T
}

// NormMetric is implemented by metrics that support the squared-norm
// expansion d(a,b)^2 = |a|^2 - 2·a·b + |b|^2.
type NormMetric[T dense.Float] interface {
	Metric[T]
	// SupportsPrecomputedNorms reports whether NormSquared may be cached
	// and combined with a dot product.
	SupportsPrecomputedNorms() bool
	// NormSquared returns |v|^2.
	NormSquared(v []T) T
}

// SupportsNorms reports whether m can use precomputed squared norms.
func SupportsNorms[T dense.Float](m Metric[T]) (NormMetric[T], bool) {
	nm, ok := m.(NormMetric[T])
	if !ok || !nm.SupportsPrecomputedNorms() {
		return nil, false
	}
	return nm, true
}

// Euclidean is the L2 metric.
type Euclidean[T dense.Float] struct{}

// Name implements Metric.
func (Euclidean[T]) Name() string { return "euclidean" }

// Distance implements Metric.
func (Euclidean[T]) Distance(a, b []T) T {
	return T(math.Sqrt(float64(simd.SquaredL2(a, b))))
}

// SquaredDistance implements Metric.
func (Euclidean[T]) SquaredDistance(a, b []T) T {
	return simd.SquaredL2(a, b)
}

// SupportsPrecomputedNorms implements NormMetric.
func (Euclidean[T]) SupportsPrecomputedNorms() bool { return true }

// NormSquared implements NormMetric.
func (Euclidean[T]) NormSquared(v []T) T { return simd.NormSquared(v) }

// Periodic is the L2 metric under the minimum-image convention: along every
// dimension with a positive box length the difference is wrapped into
// [-L/2, L/2]. A zero box length leaves that dimension non-periodic.
type Periodic[T dense.Float] struct {
	box []T
}

// NewPeriodic returns a periodic metric for the given box lengths.
func NewPeriodic[T dense.Float](box []T) (*Periodic[T], error) {
	for i, l := range box {
		if l < 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
			return nil, fmt.Errorf("invalid box length %v in dimension %d", l, i)
		}
	}
	b := make([]T, len(box))
	copy(b, box)
	return &Periodic[T]{box: b}, nil
}

// Box returns the box lengths.
func (p *Periodic[T]) Box() []T { return p.box }

// Name implements Metric.
func (p *Periodic[T]) Name() string { return "periodic" }

// Distance implements Metric.
func (p *Periodic[T]) Distance(a, b []T) T {
	return T(math.Sqrt(float64(p.SquaredDistance(a, b))))
}

// SquaredDistance implements Metric.
// Dimensions beyond len(box) are treated as non-periodic.
func (p *Periodic[T]) SquaredDistance(a, b []T) T {
	var sum T
	for i := range a {
		d := a[i] - b[i]
		if i < len(p.box) && p.box[i] > 0 {
			l := p.box[i]
			d -= l * T(math.Round(float64(d/l)))
		}
		sum += d * d
	}
	return sum
}

// Manhattan is the L1 metric.
type Manhattan[T dense.Float] struct{}

// Name implements Metric.
func (Manhattan[T]) Name() string { return "manhattan" }

// Distance implements Metric.
func (Manhattan[T]) Distance(a, b []T) T {
	var sum T
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// SquaredDistance implements Metric.
func (m Manhattan[T]) SquaredDistance(a, b []T) T {
	d := m.Distance(a, b)
	return d * d
}

// ErrUnknownMetric indicates an unsupported metric name.
type ErrUnknownMetric struct {
	Name string
}

func (e *ErrUnknownMetric) Error() string {
	return fmt.Sprintf("unsupported metric: %q", e.Name)
}

// ByName returns the metric with the given stable name. box is only used by
// the periodic metric.
func ByName[T dense.Float](name string, box []T) (Metric[T], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "l2":
		return Euclidean[T]{}, nil
	case "periodic", "minimum-image":
		p, err := NewPeriodic(box)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "manhattan", "l1":
		return Manhattan[T]{}, nil
	default:
		return nil, &ErrUnknownMetric{Name: name}
	}
}
