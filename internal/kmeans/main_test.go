package kmeans

import (
	"testing"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/internal/parallel"
)

func seedPtr(s int64) *int64 { return &s }

// envs returns environments that differ only in their worker count.
func envs(t *testing.T) map[string]Env {
	t.Helper()
	pool := parallel.NewPool(4)
	t.Cleanup(pool.Close)
	return map[string]Env{
		"serial": {Runner: parallel.NewGroup(1), Grain: 16},
		"group":  {Runner: parallel.NewGroup(4), Grain: 16},
		"pool":   {Runner: pool, Grain: 16},
	}
}

func fourPoints() dense.Matrix[float64] {
	return dense.MustMatrix([]float64{
		0, 0,
		0, 1,
		10, 10,
		10, 11,
	}, 4, 2)
}
