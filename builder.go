// This file implements the fluent builder API for k-means estimators.
// Builders are immutable - each method returns a new builder with the updated configuration.

package clustr

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/progress"
)

// KMeans creates a new estimator builder for k centers.
//
// The builder is immutable - each method returns a new builder with the updated configuration.
// This ensures thread-safety and prevents accidental state sharing.
//
// Example:
//
//	est, err := clustr.KMeans[float32](8).
//	    Euclidean().
//	    Seed(42).
//	    Threads(4).
//	    MaxIterations(100).
//	    Build()
func KMeans[T dense.Float](k int) KMeansBuilder[T] {
	return KMeansBuilder[T]{
		k:             k,
		metric:        distance.Euclidean[T]{},
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
	}
}

// KMeansBuilder is an immutable fluent builder for Estimators.
type KMeansBuilder[T dense.Float] struct {
	k             int
	metric        distance.Metric[T]
	metricErr     error
	seed          *int64
	trials        int
	threads       int
	maxIterations int
	tolerance     float64
	logger        *Logger
	metrics       MetricsCollector
	progress      progress.Func
	extra         []Option
}

// Euclidean sets the distance metric to Euclidean distance.
func (b KMeansBuilder[T]) Euclidean() KMeansBuilder[T] {
	b.metric, b.metricErr = distance.Euclidean[T]{}, nil
	return b
}

// Manhattan sets the distance metric to L1 distance.
func (b KMeansBuilder[T]) Manhattan() KMeansBuilder[T] {
	b.metric, b.metricErr = distance.Manhattan[T]{}, nil
	return b
}

// Periodic sets a Euclidean metric with minimum-image wrapping in a box
// with the given per-dimension lengths.
func (b KMeansBuilder[T]) Periodic(box ...T) KMeansBuilder[T] {
	p, err := distance.NewPeriodic(box)
	if err != nil {
		b.metricErr = err
		return b
	}
	b.metric, b.metricErr = p, nil
	return b
}

// Metric sets a custom distance metric.
func (b KMeansBuilder[T]) Metric(m distance.Metric[T]) KMeansBuilder[T] {
	b.metric, b.metricErr = m, nil
	return b
}

// Seed sets the seed for deterministic seeding.
// If not set, a random seed is used.
func (b KMeansBuilder[T]) Seed(seed int64) KMeansBuilder[T] {
	b.seed = &seed
	return b
}

// Trials sets the number of candidates per seeding step.
// Default: 2 + floor(ln k).
func (b KMeansBuilder[T]) Trials(n int) KMeansBuilder[T] {
	b.trials = n
	return b
}

// Threads sets the number of kernel goroutines.
// Default: GOMAXPROCS.
func (b KMeansBuilder[T]) Threads(n int) KMeansBuilder[T] {
	b.threads = n
	return b
}

// MaxIterations sets the refinement iteration budget.
// Default: 300.
func (b KMeansBuilder[T]) MaxIterations(n int) KMeansBuilder[T] {
	b.maxIterations = n
	return b
}

// Tolerance sets the convergence threshold on the relative cost change.
// Default: 1e-5.
func (b KMeansBuilder[T]) Tolerance(tol float64) KMeansBuilder[T] {
	b.tolerance = tol
	return b
}

// Logger sets the structured logger for operation tracing.
func (b KMeansBuilder[T]) Logger(l *Logger) KMeansBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b KMeansBuilder[T]) Metrics(mc MetricsCollector) KMeansBuilder[T] {
	b.metrics = mc
	return b
}

// Progress sets the progress callback.
func (b KMeansBuilder[T]) Progress(fn progress.Func) KMeansBuilder[T] {
	b.progress = fn
	return b
}

// Options appends raw options, e.g. WithMemoryLimit or WithWorkerPool.
func (b KMeansBuilder[T]) Options(opts ...Option) KMeansBuilder[T] {
	b.extra = append(append([]Option(nil), b.extra...), opts...)
	return b
}

// Build validates the configuration and creates the Estimator.
func (b KMeansBuilder[T]) Build() (*Estimator[T], error) {
	if b.k < 1 {
		return nil, ErrInvalidK
	}
	if b.metricErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, b.metricErr)
	}

	opts := []Option{
		WithTrials(b.trials),
		WithNumThreads(b.threads),
		WithMaxIterations(b.maxIterations),
		WithTolerance(b.tolerance),
		WithProgress(b.progress),
	}
	if b.seed != nil {
		opts = append(opts, WithSeed(*b.seed))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	opts = append(opts, b.extra...)

	c, err := New(b.metric, opts...)
	if err != nil {
		return nil, err
	}
	return &Estimator[T]{c: c, k: b.k}, nil
}

// Estimator is a fitted-state wrapper around a Clusterer with a fixed k.
type Estimator[T dense.Float] struct {
	c *Clusterer[T]
	k int

	mu     sync.RWMutex
	result *FitResult[T]
}

// K returns the number of centers.
func (e *Estimator[T]) K() int { return e.k }

// Clusterer returns the underlying Clusterer.
func (e *Estimator[T]) Clusterer() *Clusterer[T] { return e.c }

// Fit seeds and refines k centers on data, replacing any previous fit.
func (e *Estimator[T]) Fit(ctx context.Context, data dense.Matrix[T]) (*FitResult[T], error) {
	res, err := e.c.Fit(ctx, data, e.k)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.result = res
	e.mu.Unlock()
	return res, nil
}

// Result returns the last fit, or nil.
func (e *Estimator[T]) Result() *FitResult[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result
}

// Centers returns the fitted centers.
func (e *Estimator[T]) Centers() (dense.Matrix[T], error) {
	res := e.Result()
	if res == nil {
		return dense.Matrix[T]{}, ErrNotFitted
	}
	return res.Centers, nil
}

// Predict assigns data to the fitted centers.
func (e *Estimator[T]) Predict(ctx context.Context, data dense.Matrix[T]) (*Assignment[T], error) {
	centers, err := e.Centers()
	if err != nil {
		return nil, err
	}
	return e.c.Assign(ctx, data, centers)
}

// Score returns the cost of data under the fitted centers.
func (e *Estimator[T]) Score(ctx context.Context, data dense.Matrix[T]) (float64, error) {
	centers, err := e.Centers()
	if err != nil {
		return 0, err
	}
	return e.c.Cost(ctx, data, centers, nil)
}

// Close releases the underlying Clusterer.
func (e *Estimator[T]) Close() error {
	return e.c.Close()
}
