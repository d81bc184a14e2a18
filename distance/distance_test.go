package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
	}

	m := Euclidean[float64]{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, m.SquaredDistance(tt.a, tt.b), 1e-12)
			assert.InDelta(t, math.Sqrt(tt.expected), m.Distance(tt.a, tt.b), 1e-12)
		})
	}
}

func TestEuclidean_NormCapability(t *testing.T) {
	nm, ok := SupportsNorms[float32](Euclidean[float32]{})
	require.True(t, ok)
	assert.Equal(t, float32(25), nm.NormSquared([]float32{3, 4}))

	_, ok = SupportsNorms[float32](Manhattan[float32]{})
	assert.False(t, ok)

	p, err := NewPeriodic([]float32{1})
	require.NoError(t, err)
	_, ok = SupportsNorms[float32](p)
	assert.False(t, ok)
}

func TestPeriodic_MinimumImage(t *testing.T) {
	p, err := NewPeriodic([]float64{10, 0})
	require.NoError(t, err)

	// 0.5 and 9.5 are 1 apart across the boundary in dimension 0.
	assert.InDelta(t, 1.0, p.SquaredDistance([]float64{0.5, 0}, []float64{9.5, 0}), 1e-12)
	// dimension 1 is not periodic.
	assert.InDelta(t, 81.0, p.SquaredDistance([]float64{0, 0.5}, []float64{0, 9.5}), 1e-12)
	assert.InDelta(t, 1.0, p.Distance([]float64{0.5, 0}, []float64{9.5, 0}), 1e-12)
	assert.Equal(t, "periodic", p.Name())

	_, err = NewPeriodic([]float64{-1})
	assert.Error(t, err)
}

func TestManhattan(t *testing.T) {
	m := Manhattan[float32]{}
	assert.Equal(t, float32(7), m.Distance([]float32{1, 2}, []float32{4, -2}))
	assert.Equal(t, float32(49), m.SquaredDistance([]float32{1, 2}, []float32{4, -2}))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euclidean", "L2", ""} {
		m, err := ByName[float64](name, nil)
		require.NoError(t, err)
		assert.Equal(t, "euclidean", m.Name())
	}

	m, err := ByName("periodic", []float64{5})
	require.NoError(t, err)
	assert.Equal(t, "periodic", m.Name())

	m, err = ByName[float64]("l1", nil)
	require.NoError(t, err)
	assert.Equal(t, "manhattan", m.Name())

	_, err = ByName[float64]("cosine", nil)
	var unknown *ErrUnknownMetric
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "cosine", unknown.Name)
}
