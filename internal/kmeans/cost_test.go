package kmeans

import (
	"testing"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(12)
	set := testutil.Blobs[float32](rng, 4, 100, 5, 10, 1)
	metric := distance.Euclidean[float32]{}

	for name, env := range envs(t) {
		t.Run(name, func(t *testing.T) {
			labels, _, err := Assign(t.Context(), env, set.Data, set.Centers, metric)
			require.NoError(t, err)

			withLabels, err := Cost(t.Context(), env, set.Data, set.Centers, metric, labels)
			require.NoError(t, err)
			without, err := Cost(t.Context(), env, set.Data, set.Centers, metric, nil)
			require.NoError(t, err)

			assert.Equal(t, withLabels, without)
			assert.InDelta(t, testutil.ExactCost(set.Data, set.Centers, labels), withLabels, 1e-2)
		})
	}
}

func TestCost_FourPoints(t *testing.T) {
	centers := dense.MustMatrix([]float64{0, 0.5, 10, 10.5}, 2, 2)

	cost, err := Cost(t.Context(), Env{}, fourPoints(), centers, distance.Euclidean[float64]{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, cost)
}

func TestCost_InvalidLabels(t *testing.T) {
	data := fourPoints()
	centers := dense.MustMatrix([]float64{0, 0.5, 10, 10.5}, 2, 2)
	metric := distance.Euclidean[float64]{}

	_, err := Cost(t.Context(), Env{}, data, centers, metric, []int{0, 0, 1})
	var le *ErrAssignmentLength
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 4, le.Expected)

	_, err = Cost(t.Context(), Env{}, data, centers, metric, []int{0, 0, 2, 1})
	var ia *ErrInvalidAssignment
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, 2, ia.Index)
	assert.Equal(t, 2, ia.Label)

	_, err = Cost(t.Context(), Env{}, data, centers, metric, []int{0, -1, 1, 1})
	assert.ErrorAs(t, err, &ia)
}
