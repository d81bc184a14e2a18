package kmeans

import (
	"context"
	"math"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/progress"
)

// State is the state of a refinement run.
type State uint8

const (
	// Running is the state while iterations remain.
	Running State = iota
	// Converged means the relative cost change fell to the tolerance.
	Converged
	// IterationLimitReached means the iteration budget ran out first.
	IterationLimitReached
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case IterationLimitReached:
		return "iteration limit reached"
	default:
		return "unknown"
	}
}

// RefineConfig controls Lloyd refinement.
type RefineConfig struct {
	MaxIterations int
	// Tolerance bounds the relative cost change |prev-cost|/cost that counts
	// as converged.
	Tolerance float64
	// Notifier receives one event per iteration.
	Notifier *progress.Notifier
}

// RefineResult is the outcome of Refine.
type RefineResult[T dense.Float] struct {
	Centers   dense.Matrix[T]
	Labels    []int
	Distances []T
	// Iterations is the number of completed iterations.
	Iterations int
	Converged  bool
	State      State
	// InitialCost is the cost of the initial centers.
	InitialCost float64
	// CostTrajectory holds the cost after every iteration.
	CostTrajectory []float64
}

// Refine runs Lloyd iterations starting from initial. The initial matrix is
// not modified.
func Refine[T dense.Float](
	ctx context.Context, env Env,
	data, initial dense.Matrix[T], metric distance.Metric[T], cfg RefineConfig,
) (*RefineResult[T], error) {
	if cfg.MaxIterations < 0 {
		return nil, ErrInvalidIterations
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return nil, ErrInvalidTolerance
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if initial.Rows() == 0 {
		return nil, ErrInvalidK
	}
	if initial.Cols() != data.Cols() {
		return nil, &ErrDimensionMismatch{Expected: data.Cols(), Actual: initial.Cols()}
	}

	f, err := newFrame(ctx, env, data, metric)
	if err != nil {
		return nil, err
	}

	centers := initial.Clone()
	labels, dists, cost, err := evaluate(ctx, env, f, data, centers, metric)
	if err != nil {
		return nil, err
	}

	res := &RefineResult[T]{
		InitialCost:    cost,
		CostTrajectory: make([]float64, 0, min(cfg.MaxIterations, 64)),
		State:          Running,
	}

	prev := cost
	for it := 1; it <= cfg.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if centers, err = updateCenters(ctx, env, data, labels, centers); err != nil {
			return nil, err
		}
		if labels, dists, cost, err = evaluate(ctx, env, f, data, centers, metric); err != nil {
			return nil, err
		}

		res.Iterations = it
		res.CostTrajectory = append(res.CostTrajectory, cost)

		converged := relativeChange(prev, cost) <= cfg.Tolerance
		cfg.Notifier.Notify(progress.Event{
			Stage: progress.StageRefine,
			Step:  it,
			Total: cfg.MaxIterations,
			Cost:  cost,
			Final: converged || it == cfg.MaxIterations,
		})

		if converged {
			res.State = Converged
			break
		}
		prev = cost
	}

	if res.State == Running {
		res.State = IterationLimitReached
	}
	res.Converged = res.State == Converged
	res.Centers = centers
	res.Labels = labels
	res.Distances = dists
	return res, nil
}

// evaluate assigns every row and returns labels, squared distances and cost.
func evaluate[T dense.Float](
	ctx context.Context, env Env,
	f *frame[T], data, centers dense.Matrix[T], metric distance.Metric[T],
) ([]int, []T, float64, error) {
	labels, _, err := assignFrame(ctx, env, f, centers, metric)
	if err != nil {
		return nil, nil, 0, err
	}
	dists, err := labelledDistances(ctx, env, data, centers, metric, labels)
	if err != nil {
		return nil, nil, 0, err
	}
	cost, err := tileSum(ctx, env, dists)
	if err != nil {
		return nil, nil, 0, err
	}
	return labels, dists, cost, nil
}

func relativeChange(prev, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return math.Abs(prev-cost) / cost
}
