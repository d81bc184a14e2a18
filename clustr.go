package clustr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/internal/kmeans"
	"github.com/hupe1980/clustr/internal/parallel"
	"github.com/hupe1980/clustr/internal/resource"
	"github.com/hupe1980/clustr/progress"
)

// Clusterer runs clustering operations with a fixed metric and
// configuration. It is safe for concurrent use.
type Clusterer[T dense.Float] struct {
	metric    distance.Metric[T]
	opts      options
	env       kmeans.Env
	pool      *parallel.Pool
	notifier  *progress.Notifier
	logger    *Logger
	metrics   MetricsCollector
	closed    atomic.Bool
	closeOnce sync.Once
}

// New creates a Clusterer. A nil metric selects Euclidean distance.
//
// Example:
//
//	c, err := clustr.New[float32](nil, clustr.WithSeed(42), clustr.WithNumThreads(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//	res, err := c.Fit(ctx, data, 8)
func New[T dense.Float](metric distance.Metric[T], optFns ...Option) (*Clusterer[T], error) {
	if metric == nil {
		metric = distance.Euclidean[T]{}
	}
	opts := applyOptions(optFns)
	if err := opts.validate(); err != nil {
		return nil, err
	}

	c := &Clusterer[T]{
		metric:   metric,
		opts:     opts,
		notifier: progress.NewNotifier(opts.progressFunc()),
		logger:   opts.logger.WithMetric(metric.Name()),
		metrics:  opts.metricsCollector,
	}

	var runner parallel.Runner
	if opts.workerPool {
		c.pool = parallel.NewPool(opts.numThreads)
		runner = c.pool
	} else {
		runner = parallel.NewGroup(opts.numThreads)
	}

	c.env = kmeans.Env{
		Runner: runner,
		Resources: resource.NewController(resource.Config{
			MemoryLimitBytes:  opts.memoryLimit,
			MaxConcurrentRuns: opts.maxConcurrentRuns,
		}),
		Grain: opts.grain,
	}

	return c, nil
}

func (o options) validate() error {
	if o.maxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidArgument, o.maxIterations)
	}
	if !(o.tolerance >= 0) {
		return fmt.Errorf("%w: tolerance must be a non-negative number, got %v", ErrInvalidArgument, o.tolerance)
	}
	if o.trials < 0 {
		return fmt.Errorf("%w: trials must not be negative, got %d", ErrInvalidArgument, o.trials)
	}
	if o.memoryLimit < 0 || o.maxConcurrentRuns < 0 {
		return fmt.Errorf("%w: resource limits must not be negative", ErrInvalidArgument)
	}
	return nil
}

// Metric returns the distance metric.
func (c *Clusterer[T]) Metric() distance.Metric[T] { return c.metric }

// Workers returns the number of goroutines used by the kernels.
func (c *Clusterer[T]) Workers() int { return c.env.Runner.Workers() }

// begin admits one run and returns its release func.
func (c *Clusterer[T]) begin(ctx context.Context) (func(), error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if err := c.env.Resources.AcquireRun(ctx); err != nil {
		return nil, err
	}
	return c.env.Resources.ReleaseRun, nil
}

// Seed selects k initial centers from data with greedy k-means++.
func (c *Clusterer[T]) Seed(ctx context.Context, data dense.Matrix[T], k int) (*SeedResult[T], error) {
	release, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	res, err := kmeans.Seed(ctx, c.env, data, k, c.metric, kmeans.SeedConfig{
		Seed:     c.opts.seed,
		Trials:   c.opts.trials,
		Notifier: c.notifier,
	})
	err = translateError(err)
	c.metrics.RecordSeed(k, time.Since(start), err)

	if err != nil {
		c.logger.LogSeed(ctx, k, 0, 0, time.Since(start), err)
		return nil, err
	}

	out := &SeedResult[T]{
		Centers:    res.Centers,
		Indices:    res.Indices,
		Potentials: res.Potentials,
		Seed:       res.Seed,
	}
	c.logger.LogSeed(ctx, k, out.Seed, out.Potential(), time.Since(start), nil)
	return out, nil
}

// Assign maps every point of data to its nearest center.
func (c *Clusterer[T]) Assign(ctx context.Context, data, centers dense.Matrix[T]) (*Assignment[T], error) {
	release, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	a, err := c.assign(ctx, data, centers)
	c.metrics.RecordAssign(data.Rows(), time.Since(start), err)
	c.logger.LogAssign(ctx, data.Rows(), centers.Rows(), err)
	return a, err
}

func (c *Clusterer[T]) assign(ctx context.Context, data, centers dense.Matrix[T]) (*Assignment[T], error) {
	if err := data.Validate(); err != nil {
		return nil, translateError(err)
	}
	labels, dists, err := kmeans.Assign(ctx, c.env, data, centers, c.metric)
	if err != nil {
		return nil, translateError(err)
	}
	return newAssignment(labels, dists, centers.Rows()), nil
}

// Refine runs Lloyd iterations from initial until the relative cost change
// reaches the tolerance or the iteration budget runs out. initial is not
// modified.
func (c *Clusterer[T]) Refine(ctx context.Context, data, initial dense.Matrix[T]) (*RefineResult[T], error) {
	release, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return c.refine(ctx, data, initial)
}

func (c *Clusterer[T]) refine(ctx context.Context, data, initial dense.Matrix[T]) (*RefineResult[T], error) {
	start := time.Now()
	res, err := kmeans.Refine(ctx, c.env, data, initial, c.metric, kmeans.RefineConfig{
		MaxIterations: c.opts.maxIterations,
		Tolerance:     c.opts.tolerance,
		Notifier:      c.notifier,
	})
	err = translateError(err)
	if err != nil {
		c.metrics.RecordRefine(0, false, time.Since(start), err)
		c.logger.LogRefine(ctx, 0, false, 0, time.Since(start), err)
		return nil, err
	}

	out := &RefineResult[T]{
		Centers:        res.Centers,
		Assignment:     newAssignment(res.Labels, res.Distances, res.Centers.Rows()),
		Iterations:     res.Iterations,
		Converged:      res.Converged,
		State:          res.State,
		InitialCost:    res.InitialCost,
		CostTrajectory: res.CostTrajectory,
	}
	c.metrics.RecordRefine(out.Iterations, out.Converged, time.Since(start), nil)
	c.logger.LogRefine(ctx, out.Iterations, out.Converged, out.Cost(), time.Since(start), nil)
	return out, nil
}

// Cost returns the sum of squared distances of every point to its center.
// With nil labels every point is charged to its nearest center.
func (c *Clusterer[T]) Cost(ctx context.Context, data, centers dense.Matrix[T], labels []int) (float64, error) {
	release, err := c.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	start := time.Now()
	cost, err := c.cost(ctx, data, centers, labels)
	c.metrics.RecordCost(time.Since(start), err)
	c.logger.LogCost(ctx, cost, err)
	return cost, err
}

func (c *Clusterer[T]) cost(ctx context.Context, data, centers dense.Matrix[T], labels []int) (float64, error) {
	if err := data.Validate(); err != nil {
		return 0, translateError(err)
	}
	if centers.Rows() == 0 {
		return 0, ErrInvalidK
	}
	cost, err := kmeans.Cost(ctx, c.env, data, centers, c.metric, labels)
	return cost, translateError(err)
}

// Fit seeds k centers and refines them.
func (c *Clusterer[T]) Fit(ctx context.Context, data dense.Matrix[T], k int) (*FitResult[T], error) {
	seeded, err := c.Seed(ctx, data, k)
	if err != nil {
		return nil, err
	}
	refined, err := c.Refine(ctx, data, seeded.Centers)
	if err != nil {
		return nil, err
	}
	return &FitResult[T]{RefineResult: refined, Seeding: seeded}, nil
}

// Distances returns the M×N matrix of distances between queries and data.
func (c *Clusterer[T]) Distances(ctx context.Context, queries, data dense.Matrix[T], squared bool) (dense.Matrix[T], error) {
	release, err := c.begin(ctx)
	if err != nil {
		return dense.Matrix[T]{}, err
	}
	defer release()

	m, err := kmeans.Distances(ctx, c.env, queries, data, c.metric, nil, nil, squared)
	return m, translateError(err)
}

// Close releases the worker pool, if any. Further operations fail with
// ErrClosed. Close is idempotent.
func (c *Clusterer[T]) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.pool != nil {
			c.pool.Close()
		}
	})
	return nil
}
