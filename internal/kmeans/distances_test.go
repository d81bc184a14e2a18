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

func TestDistances_Euclidean(t *testing.T) {
	rng := testutil.NewRNG(42)
	queries := testutil.Gaussian[float64](rng, 5, 12)
	data := testutil.Gaussian[float64](rng, 53, 12)
	env := Env{Grain: 8}
	metric := distance.Euclidean[float64]{}

	sq, err := Distances(t.Context(), env, queries, data, metric, nil, nil, true)
	require.NoError(t, err)
	plain, err := Distances(t.Context(), env, queries, data, metric, nil, nil, false)
	require.NoError(t, err)

	require.Equal(t, 5, sq.Rows())
	require.Equal(t, 53, sq.Cols())
	for i := range 5 {
		for j := range 53 {
			want := metric.SquaredDistance(queries.Row(i), data.Row(j))
			assert.InDelta(t, want, sq.Row(i)[j], 1e-9)
			assert.InDelta(t, math.Sqrt(want), plain.Row(i)[j], 1e-7)
		}
	}
}

func TestDistances_Float32(t *testing.T) {
	rng := testutil.NewRNG(7)
	queries := testutil.Uniform[float32](rng, 3, 33)
	data := testutil.Uniform[float32](rng, 40, 33)
	metric := distance.Euclidean[float32]{}

	out, err := Distances(t.Context(), Env{Grain: 6}, queries, data, metric, nil, nil, true)
	require.NoError(t, err)

	for i := range 3 {
		for j := range 40 {
			want := metric.SquaredDistance(queries.Row(i), data.Row(j))
			assert.InDelta(t, want, out.Row(i)[j], 1e-4)
		}
	}
}

func TestDistances_ClampsAtZero(t *testing.T) {
	data := dense.MustMatrix([]float32{1e3, 1e3 + 1e-3, -7.5, 1e3, 1e3 + 1e-3, -7.5}, 2, 3)

	out, err := Distances(t.Context(), Env{}, data, data, distance.Euclidean[float32]{}, nil, nil, false)
	require.NoError(t, err)

	for _, v := range out.Data() {
		assert.False(t, math.IsNaN(float64(v)))
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestDistances_PrecomputedNorms(t *testing.T) {
	rng := testutil.NewRNG(3)
	queries := testutil.Gaussian[float64](rng, 4, 5)
	data := testutil.Gaussian[float64](rng, 20, 5)
	metric := distance.Euclidean[float64]{}

	qn, err := PrecomputeNorms(t.Context(), Env{}, queries, metric)
	require.NoError(t, err)
	dn, err := PrecomputeNorms(t.Context(), Env{}, data, metric)
	require.NoError(t, err)

	withNorms, err := Distances(t.Context(), Env{}, queries, data, metric, qn, dn, true)
	require.NoError(t, err)
	without, err := Distances(t.Context(), Env{}, queries, data, metric, nil, nil, true)
	require.NoError(t, err)

	assert.InDeltaSlice(t, without.Data(), withNorms.Data(), 1e-9)

	_, err = Distances(t.Context(), Env{}, queries, data, metric, qn[:2], dn, true)
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestDistances_PerPairMetrics(t *testing.T) {
	rng := testutil.NewRNG(11)
	queries := testutil.Uniform[float64](rng, 3, 4)
	data := testutil.Uniform[float64](rng, 25, 4)

	periodic, err := distance.NewPeriodic([]float64{1, 1, 1, 1})
	require.NoError(t, err)

	for _, metric := range []distance.Metric[float64]{distance.Manhattan[float64]{}, periodic} {
		t.Run(metric.Name(), func(t *testing.T) {
			out, err := Distances(t.Context(), Env{Grain: 4}, queries, data, metric, nil, nil, false)
			require.NoError(t, err)
			for i := range 3 {
				for j := range 25 {
					assert.Equal(t, metric.Distance(queries.Row(i), data.Row(j)), out.Row(i)[j])
				}
			}
		})
	}
}

func TestDistances_DimensionMismatch(t *testing.T) {
	a := dense.Zeros[float64](2, 3)
	b := dense.Zeros[float64](2, 4)

	_, err := Distances(t.Context(), Env{}, a, b, distance.Euclidean[float64]{}, nil, nil, true)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestDistances_Float32FarFromOrigin(t *testing.T) {
	rng := testutil.NewRNG(5)
	queries := shifted(testutil.Gaussian[float32](rng, 4, 16), 3000)
	data := shifted(testutil.Gaussian[float32](rng, 300, 16), 3000)
	metric := distance.Euclidean[float32]{}

	out, err := Distances(t.Context(), Env{Grain: 64}, queries, data, metric, nil, nil, true)
	require.NoError(t, err)

	for i := range 4 {
		for j := range 300 {
			want := metric.SquaredDistance(queries.Row(i), data.Row(j))
			assert.InDelta(t, want, out.Row(i)[j], 0.05*float64(want)+1e-2)
		}
	}
}
