package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is submitted to a closed pool.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool manages a fixed pool of goroutines for parallel kernels.
// This avoids spawning goroutines per kernel call when a Clusterer runs
// many short iterations.
type Pool struct {
	numWorkers int
	workCh     chan func() // Channel carries work closures
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool // Tracks if pool is closed
	submitMu   sync.RWMutex
}

// NewPool creates a worker pool with numWorkers goroutines.
// numWorkers <= 0 selects runtime.GOMAXPROCS(0).
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2), // 2x buffer for pipelining
		stopCh:     make(chan struct{}),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

// worker processes work closures from the work channel.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			// Drain remaining work before exiting
			for {
				select {
				case workFunc, ok := <-p.workCh:
					if !ok {
						return
					}
					workFunc()
				default:
					return
				}
			}
		case workFunc, ok := <-p.workCh:
			if !ok {
				return
			}
			workFunc()
		}
	}
}

// Workers implements Runner.
func (p *Pool) Workers() int { return p.numWorkers }

// Submit enqueues a task. It returns immediately after enqueueing.
//
// Error conditions:
//   - Returns ErrPoolClosed if pool is closed
//   - Returns ctx.Err() if context is cancelled before enqueueing
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- task:
		return nil
	case <-p.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// For implements Runner. Tiles are submitted to the pool and For blocks
// until all submitted tiles have completed.
func (p *Pool) For(ctx context.Context, n, grain int, fn TileFunc) error {
	tiles := NumTiles(n, grain)
	if tiles == 0 {
		return ctx.Err()
	}
	if p.numWorkers == 1 || tiles == 1 {
		return serial(ctx, n, grain, tiles, fn)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		failed   atomic.Bool
	)
	setErr := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			failed.Store(true)
		})
	}

	for t := range tiles {
		if failed.Load() {
			break
		}
		lo, hi := TileBounds(t, n, grain)
		wg.Add(1)
		err := p.Submit(ctx, func() {
			defer wg.Done()
			if failed.Load() {
				return
			}
			if err := fn(lo, hi); err != nil {
				setErr(err)
			}
		})
		if err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// Close shuts down the worker pool gracefully.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}
