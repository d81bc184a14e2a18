package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runners(t *testing.T) map[string]Runner {
	t.Helper()
	pool := NewPool(4)
	t.Cleanup(pool.Close)
	return map[string]Runner{
		"group-1": NewGroup(1),
		"group-4": NewGroup(4),
		"pool-4":  pool,
	}
}

func TestTiles(t *testing.T) {
	assert.Equal(t, 0, NumTiles(0, 8))
	assert.Equal(t, 1, NumTiles(8, 8))
	assert.Equal(t, 2, NumTiles(9, 8))
	assert.Equal(t, 1, NumTiles(9, 0))

	lo, hi := TileBounds(1, 9, 8)
	assert.Equal(t, 8, lo)
	assert.Equal(t, 9, hi)
}

func TestRunner_CoversEveryIndexOnce(t *testing.T) {
	for name, r := range runners(t) {
		t.Run(name, func(t *testing.T) {
			const n = 1003
			hits := make([]int32, n)
			err := r.For(t.Context(), n, 17, func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
				return nil
			})
			require.NoError(t, err)
			for i, h := range hits {
				require.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestRunner_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	for name, r := range runners(t) {
		t.Run(name, func(t *testing.T) {
			err := r.For(t.Context(), 100, 10, func(lo, _ int) error {
				if lo == 50 {
					return boom
				}
				return nil
			})
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, r := range runners(t) {
		t.Run(name, func(t *testing.T) {
			err := r.For(ctx, 100, 10, func(int, int) error { return nil })
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestPool_Closed(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close() // idempotent

	assert.ErrorIs(t, p.Submit(t.Context(), func() {}), ErrPoolClosed)
	err := p.For(t.Context(), 100, 10, func(int, int) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestNewGroup_DefaultWorkers(t *testing.T) {
	assert.Positive(t, NewGroup(0).Workers())
	assert.Equal(t, 3, NewGroup(3).Workers())
}
