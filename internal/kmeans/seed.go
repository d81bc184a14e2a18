package kmeans

import (
	"context"
	"math"
	"sort"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/internal/parallel"
	"github.com/hupe1980/clustr/internal/rnd"
	"github.com/hupe1980/clustr/internal/simd"
	"github.com/hupe1980/clustr/progress"
	"gonum.org/v1/gonum/floats"
)

// SeedConfig controls greedy k-means++ seeding.
type SeedConfig struct {
	// Seed makes the run reproducible. nil or negative draws a random seed.
	Seed *int64
	// Trials is the number of candidates per step. Zero selects
	// 2 + floor(ln k).
	Trials int
	// Notifier receives one event per chosen center.
	Notifier *progress.Notifier
}

// SeedResult is the outcome of Seed.
type SeedResult[T dense.Float] struct {
	// Centers holds k rows copied from the input.
	Centers dense.Matrix[T]
	// Indices are the input row indices of the chosen centers.
	Indices []int
	// Potentials[c] is the total minimum squared distance after center c
	// was chosen. The sequence is non-increasing.
	Potentials []float64
	// Seed reproduces the run when passed back as SeedConfig.Seed.
	Seed int64
}

// Trials returns the default number of candidates per seeding step.
func Trials(k int) int {
	return 2 + int(math.Log(float64(k)))
}

// Seed picks k initial centers from data with greedy multi-candidate
// k-means++: every step samples several candidates proportionally to the
// current minimum squared distances and keeps the one that lowers the
// potential most.
func Seed[T dense.Float](
	ctx context.Context, env Env,
	data dense.Matrix[T], k int, metric distance.Metric[T], cfg SeedConfig,
) (*SeedResult[T], error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	n := data.Rows()
	if n < k {
		return nil, &ErrNotEnoughData{Points: n, Centers: k}
	}

	trials := cfg.Trials
	if trials <= 0 {
		trials = Trials(k)
	}

	gen := rnd.New(cfg.Seed)

	f, err := newFrame(ctx, env, data, metric)
	if err != nil {
		return nil, err
	}

	s := &seeder[T]{
		env:     env,
		frame:   f,
		metric:  metric,
		minDist: make([]T, n),
		cum:     make([]float64, n),
	}

	res := &SeedResult[T]{
		Centers:    dense.Zeros[T](k, data.Cols()),
		Indices:    make([]int, 0, k),
		Potentials: make([]float64, 0, k),
		Seed:       int64(gen.Seed()),
	}

	first := gen.UniformInt(0, n-1)
	if err := s.choose(ctx, first, true); err != nil {
		return nil, err
	}
	res.add(data, first, s.phi())
	cfg.Notifier.Notify(progress.Event{Stage: progress.StageSeed, Step: 1, Total: k, Cost: s.phi(), Final: k == 1})

	draws := make([]float64, trials)
	candidates := make([]int, trials)

	for c := 1; c < k; c++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		phi := s.phi()
		for t := range draws {
			draws[t] = phi * gen.UniformReal()
		}
		sort.Float64s(draws)
		s.sample(draws, candidates)

		best, err := s.best(ctx, candidates)
		if err != nil {
			return nil, err
		}
		if err := s.choose(ctx, best, false); err != nil {
			return nil, err
		}
		res.add(data, best, s.phi())
		cfg.Notifier.Notify(progress.Event{Stage: progress.StageSeed, Step: c + 1, Total: k, Cost: s.phi(), Final: c+1 == k})
	}

	return res, nil
}

func (r *SeedResult[T]) add(data dense.Matrix[T], idx int, phi float64) {
	r.Centers.SetRow(len(r.Indices), data.Row(idx))
	r.Indices = append(r.Indices, idx)
	r.Potentials = append(r.Potentials, phi)
}

// seeder holds the per-run state of Seed.
type seeder[T dense.Float] struct {
	env     Env
	frame   *frame[T]
	metric  distance.Metric[T]
	minDist []T
	cum     []float64
}

func (s *seeder[T]) phi() float64 {
	return s.cum[len(s.cum)-1]
}

// kernelFor returns a distance kernel from the given data rows to all data.
func (s *seeder[T]) kernelFor(rows []int) *kernel[T] {
	data, norms := s.frame.data, s.frame.norms
	q := dense.Zeros[T](len(rows), data.Cols())
	for i, r := range rows {
		q.SetRow(i, data.Row(r))
	}
	var qn []T
	if norms != nil {
		qn = make([]T, len(rows))
		for i, r := range rows {
			qn[i] = norms[r]
		}
	}
	return s.frame.kernelFor(q, s.metric, qn)
}

// sample maps sorted draws to candidate indices with a lower-bound search
// over the cumulative distances. Each search continues where the previous
// one stopped. A draw beyond the last cumulative value selects the last row.
func (s *seeder[T]) sample(draws []float64, out []int) {
	n := len(s.cum)
	pos := 0
	for t, r := range draws {
		pos += sort.SearchFloat64s(s.cum[pos:], r)
		out[t] = min(pos, n-1)
	}
}

// best returns the candidate whose selection yields the lowest potential.
// Ties keep the earliest candidate.
func (s *seeder[T]) best(ctx context.Context, candidates []int) (int, error) {
	n, trials := len(s.minDist), len(candidates)
	grain := s.env.grain()
	tiles := parallel.NumTiles(n, grain)
	partials := make([]float64, trials*tiles)

	k := s.kernelFor(candidates)
	err := s.env.runner().For(ctx, n, grain, func(lo, hi int) error {
		width := hi - lo
		buf, release, err := alloc[T](s.env, trials*width)
		if err != nil {
			return err
		}
		defer release()

		k.fill(lo, hi, buf, width, lo, true)

		tile := lo / grain
		md := s.minDist[lo:hi]
		for t := 0; t < trials; t++ {
			var sum float64
			for j, d := range buf[t*width : (t+1)*width] {
				sum += float64(min(d, md[j]))
			}
			partials[t*tiles+tile] = sum
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	best, bestPot := 0, math.Inf(1)
	for t := 0; t < trials; t++ {
		var pot float64
		for _, p := range partials[t*tiles : (t+1)*tiles] {
			pot += p
		}
		if pot < bestPot {
			best, bestPot = t, pot
		}
	}
	return candidates[best], nil
}

// choose folds the distances to data row idx into the minimum distances and
// rebuilds the cumulative sum. With reset the minimum distances are replaced.
func (s *seeder[T]) choose(ctx context.Context, idx int, reset bool) error {
	k := s.kernelFor([]int{idx})
	err := s.env.runner().For(ctx, len(s.minDist), s.env.grain(), func(lo, hi int) error {
		if reset {
			k.fill(lo, hi, s.minDist[lo:hi], hi-lo, lo, true)
			return nil
		}
		buf := make([]T, hi-lo)
		k.fill(lo, hi, buf, hi-lo, lo, true)
		simd.MinimumInPlace(s.minDist[lo:hi], buf)
		return nil
	})
	if err != nil {
		return err
	}
	s.minDist[idx] = 0

	for i, d := range s.minDist {
		s.cum[i] = float64(d)
	}
	floats.CumSum(s.cum, s.cum)
	return nil
}
