package clustr_test

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corners = [][]float64{{0, 0}, {50, 0}, {0, 50}, {50, 50}}

// cornerBlobs places perCorner noisy points around each corner.
func cornerBlobs(t *testing.T, perCorner int, spread float64) dense.Matrix[float64] {
	t.Helper()
	noise := testutil.Gaussian[float64](testutil.NewRNG(11), perCorner*len(corners), 2)
	data := noise.Clone()
	for i := 0; i < data.Rows(); i++ {
		row := data.Row(i)
		c := corners[i%len(corners)]
		for j := range row {
			row[j] = c[j] + spread*row[j]
		}
	}
	return data
}

func nearestCorner(p []float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for c, corner := range corners {
		d := math.Hypot(p[0]-corner[0], p[1]-corner[1])
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func TestFit_RecoversSeparatedBlobs(t *testing.T) {
	ctx := context.Background()
	data := cornerBlobs(t, 200, 0.5)

	for _, metric := range []distance.Metric[float64]{distance.Euclidean[float64]{}, distance.Manhattan[float64]{}} {
		t.Run(metric.Name(), func(t *testing.T) {
			res, err := clustr.Fit(ctx, data, 4, metric, clustr.WithSeed(3))
			require.NoError(t, err)
			assert.True(t, res.Converged)

			seen := map[int]bool{}
			for c := 0; c < res.Centers.Rows(); c++ {
				corner, dist := nearestCorner(res.Centers.Row(c))
				assert.Less(t, dist, 0.5, "center %d", c)
				seen[corner] = true
			}
			assert.Len(t, seen, 4, "every blob gets its own center")
			assert.Equal(t, []uint64{200, 200, 200, 200}, res.Assignment.Sizes())

			// Points of one blob share a label.
			for i := len(corners); i < data.Rows(); i++ {
				assert.Equal(t, res.Assignment.Labels[i%len(corners)], res.Assignment.Labels[i])
			}
		})
	}
}

func TestAssign_PeriodicWrapsAround(t *testing.T) {
	ctx := context.Background()

	data := dense.MustMatrix([]float64{
		0.1, 5,
		9.9, 5,
		5, 0.1,
		5, 9.9,
	}, 4, 2)
	centers := dense.MustMatrix([]float64{0, 5, 5, 0}, 2, 2)

	periodic, err := distance.NewPeriodic([]float64{10, 10})
	require.NoError(t, err)

	res, err := clustr.Assign(ctx, data, centers, distance.Metric[float64](periodic))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, res.Labels)
	assert.InDelta(t, 0.01, float64(res.Distances[1]), 1e-9)

	// Without wrapping the far edge belongs to the other center.
	plain, err := clustr.Assign(ctx, data, centers, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, plain.Labels[1])
}

func TestFit_CostNeverIncreases(t *testing.T) {
	ctx := context.Background()
	data := testutil.Blobs[float32](testutil.NewRNG(8), 10, 300, 8, 20, 4.0).Data

	res, err := clustr.Fit(ctx, data, 10, nil, clustr.WithSeed(1), clustr.WithTolerance(0), clustr.WithMaxIterations(50))
	require.NoError(t, err)

	prev := res.InitialCost
	for i, c := range res.CostTrajectory {
		assert.LessOrEqual(t, c, prev*(1+1e-6), "iteration %d", i+1)
		prev = c
	}
	assert.LessOrEqual(t, res.Cost(), res.Seeding.Potential()*(1+1e-6))
}
