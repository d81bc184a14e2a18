package clustr

import (
	"log/slog"
	"time"

	"github.com/hupe1980/clustr/progress"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxIterations is the refinement iteration budget.
	DefaultMaxIterations = 300

	// DefaultTolerance is the relative cost change that counts as converged.
	DefaultTolerance = 1e-5
)

type options struct {
	numThreads        int
	seed              *int64
	trials            int
	maxIterations     int
	tolerance         float64
	progress          progress.Func
	progressLogEvery  time.Duration
	logger            *Logger
	metricsCollector  MetricsCollector
	memoryLimit       int64
	maxConcurrentRuns int64
	workerPool        bool
	grain             int
}

// Option configures a Clusterer.
type Option func(*options)

func defaultOptions() options {
	return options{
		maxIterations:    DefaultMaxIterations,
		tolerance:        DefaultTolerance,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}

// WithNumThreads bounds the number of goroutines used by the parallel
// kernels. n <= 0 selects runtime.GOMAXPROCS(0). Results do not depend on n.
func WithNumThreads(n int) Option {
	return func(o *options) {
		o.numThreads = n
	}
}

// WithSeed makes seeding deterministic. A negative seed selects a random
// one, which is reported in SeedResult.Seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithTrials overrides the number of candidates sampled per seeding step.
// Default: 2 + floor(ln k).
func WithTrials(n int) Option {
	return func(o *options) {
		o.trials = n
	}
}

// WithMaxIterations sets the refinement iteration budget.
// Default: 300.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the relative cost change |prev-cost|/cost at which
// refinement stops. Default: 1e-5.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithProgress registers a callback that is invoked after every chosen
// center and every refinement iteration. Calls never overlap.
//
// Example:
//
//	c, _ := clustr.New[float32](nil, clustr.WithProgress(func(e progress.Event) {
//	    fmt.Printf("%s %d/%d cost=%g\n", e.Stage, e.Step, e.Total, e.Cost)
//	}))
func WithProgress(fn progress.Func) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithProgressLogging logs progress events at debug level through the
// configured logger, at most once per interval (the final step of every
// stage is always logged).
func WithProgressLogging(interval time.Duration) Option {
	return func(o *options) {
		o.progressLogEvery = interval
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := clustr.NewJSONLogger(slog.LevelInfo)
//	c, _ := clustr.New[float64](nil, clustr.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &clustr.BasicMetricsCollector{}
//	c, _ := clustr.New[float32](nil, clustr.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Refinements: %d, Avg latency: %dns\n", stats.RefineCount, stats.RefineAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithMemoryLimit caps the bytes held by transient distance buffers.
// Kernels that would exceed it fail with ErrMemoryLimitExceeded.
// Zero disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrentRuns limits how many operations may run at once on a
// shared Clusterer. Further calls block until a slot frees up or their
// context ends. Zero disables the limit.
func WithMaxConcurrentRuns(n int) Option {
	return func(o *options) {
		o.maxConcurrentRuns = int64(n)
	}
}

// WithWorkerPool runs kernels on a persistent goroutine pool owned by the
// Clusterer instead of spawning goroutines per kernel. Close releases it.
func WithWorkerPool() Option {
	return func(o *options) {
		o.workerPool = true
	}
}

// WithGrain sets the number of rows per parallel tile.
// Default: 1024. Reductions are combined per tile, so results are
// reproducible for a fixed grain regardless of the thread count.
func WithGrain(rows int) Option {
	return func(o *options) {
		o.grain = rows
	}
}

func (o options) progressFunc() progress.Func {
	var logFn progress.Func
	if o.progressLogEvery > 0 {
		logFn = progress.LogReporter(o.logger.Logger, rate.NewLimiter(rate.Every(o.progressLogEvery), 1))
	}
	return progress.Chain(o.progress, logFn)
}
