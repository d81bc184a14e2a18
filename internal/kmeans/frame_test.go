package kmeans

import (
	"math"
	"testing"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shifted adds offset to every element of m in place and returns it.
func shifted[T dense.Float](m dense.Matrix[T], offset T) dense.Matrix[T] {
	d := m.Data()
	for i := range d {
		d[i] += offset
	}
	return m
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name         string
		mean, spread float64
		want         float64
	}{
		{"IntegerGrid", 3.67, 1.9, 4},
		{"CoarseGrid", 3001.3, 9, 3000},
		{"FineGrid", 0.30, 0.1, 0.3125},
		{"ZeroSpread", 7.25, 0, 7.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snap(tt.mean, tt.spread))
		})
	}
}

func TestFrame_TranslatesTowardsMean(t *testing.T) {
	data := shifted(testutil.Gaussian[float32](testutil.NewRNG(4), 500, 3), 3000)

	f, err := newFrame(t.Context(), Env{Grain: 64}, data, distance.Euclidean[float32]{})
	require.NoError(t, err)

	require.Len(t, f.origin, 3)
	for _, o := range f.origin {
		assert.InDelta(t, 3000, float64(o), 1)
		assert.Equal(t, math.Round(float64(o)), float64(o))
	}
	require.Len(t, f.norms, 500)
	for i := range 500 {
		assert.InDelta(t, float64(f.norms[i]), float64(distance.Euclidean[float32]{}.NormSquared(f.data.Row(i))), 1e-3)
	}

	// Translation keeps squared distances.
	c := f.translate(data.RowRange(0, 1))
	assert.InDelta(t, 0, float64(distance.Euclidean[float32]{}.SquaredDistance(c.Row(0), f.data.Row(0))), 1e-9)
}

func TestFrame_PerPairMetricKeepsData(t *testing.T) {
	data := dense.MustMatrix([]float64{0.1, 0.9, 0.4}, 3, 1)
	periodic, err := distance.NewPeriodic([]float64{1})
	require.NoError(t, err)

	f, err := newFrame(t.Context(), Env{}, data, distance.Metric[float64](periodic))
	require.NoError(t, err)

	assert.Nil(t, f.origin)
	assert.Nil(t, f.norms)
	assert.Equal(t, data.Data(), f.data.Data())
}

func TestAssign_Float32FarFromOrigin(t *testing.T) {
	rng := testutil.NewRNG(3)
	data := shifted(testutil.Gaussian[float32](rng, 4000, 16), 3000)
	env := Env{Grain: 256}
	metric := distance.Euclidean[float32]{}

	seeded, err := Seed(t.Context(), env, data, 16, metric, SeedConfig{Seed: seedPtr(3)})
	require.NoError(t, err)

	labels, dists, err := Assign(t.Context(), env, data, seeded.Centers, metric)
	require.NoError(t, err)

	// Labels may only differ from brute force on near ties.
	exact := testutil.ExactAssign(data, seeded.Centers)
	var mislabelled int
	for i, l := range labels {
		got := metric.SquaredDistance(data.Row(i), seeded.Centers.Row(l))
		want := metric.SquaredDistance(data.Row(i), seeded.Centers.Row(exact[i]))
		if l != exact[i] {
			mislabelled++
			assert.InDelta(t, float64(want), float64(got), 1e-2*float64(want)+1e-2, "row %d", i)
		}
		assert.InDelta(t, float64(got), float64(dists[i]), 1e-2*float64(got)+1e-2, "row %d", i)
	}
	assert.LessOrEqual(t, mislabelled, 40)

	res, err := Refine(t.Context(), env, data, seeded.Centers, metric, RefineConfig{MaxIterations: 50})
	require.NoError(t, err)

	prev := res.InitialCost
	for i, c := range res.CostTrajectory {
		assert.LessOrEqual(t, c, prev*(1+1e-5), "iteration %d", i+1)
		prev = c
	}
	potential := seeded.Potentials[len(seeded.Potentials)-1]
	assert.InDelta(t, res.InitialCost, potential, 1e-3*res.InitialCost)
}
