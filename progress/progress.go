// Package progress delivers clustering progress notifications.
//
// The engine calls Notify only between parallel phases, from the goroutine
// that drives seeding or refinement, never from a kernel worker. A Notifier
// additionally serializes delivery so a callback that re-enters a host
// environment (an interpreter, a UI loop) never runs concurrently with
// itself, even when one Notifier is shared by several concurrent runs.
package progress

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// Stage identifies the phase that produced an event.
type Stage uint8

const (
	// StageSeed is reported once per chosen center.
	StageSeed Stage = iota + 1
	// StageRefine is reported once per refinement iteration.
	StageRefine
)

func (s Stage) String() string {
	switch s {
	case StageSeed:
		return "seed"
	case StageRefine:
		return "refine"
	default:
		return "unknown"
	}
}

// Event is a single progress notification.
type Event struct {
	Stage Stage
	// Step is 1-based: the number of centers chosen so far (seed) or the
	// iteration just completed (refine).
	Step int
	// Total is k (seed) or the iteration budget (refine).
	Total int
	// Cost is the potential after the step (seed) or the iteration cost
	// (refine).
	Cost float64
	// Final marks the last event of a stage. A refinement that converges
	// early ends with Step < Total.
	Final bool
}

// Func receives progress events.
type Func func(Event)

// Tick adapts a zero-argument hook to a Func.
func Tick(fn func()) Func {
	if fn == nil {
		return nil
	}
	return func(Event) { fn() }
}

// Notifier is the serialized handoff point between the engine and a Func.
// The zero value and a nil *Notifier discard events.
type Notifier struct {
	mu sync.Mutex
	fn Func
}

// NewNotifier wraps fn. A nil fn yields a Notifier that discards events.
func NewNotifier(fn Func) *Notifier {
	return &Notifier{fn: fn}
}

// Enabled reports whether events are delivered anywhere.
func (n *Notifier) Enabled() bool {
	return n != nil && n.fn != nil
}

// Notify delivers e while holding the notifier lock.
func (n *Notifier) Notify(e Event) {
	if !n.Enabled() {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fn(e)
}

// Chain returns a Func that calls every non-nil fn in order.
func Chain(fns ...Func) Func {
	var live []Func
	for _, fn := range fns {
		if fn != nil {
			live = append(live, fn)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(e Event) {
		for _, fn := range live {
			fn(e)
		}
	}
}

// LogReporter returns a Func that logs events at debug level. When limiter
// is non-nil, events beyond its rate are dropped, except final events,
// which are always logged.
func LogReporter(logger *slog.Logger, limiter *rate.Limiter) Func {
	if logger == nil {
		return nil
	}
	return func(e Event) {
		if limiter != nil && !e.Final && !limiter.Allow() {
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "clustering progress",
			slog.String("stage", e.Stage.String()),
			slog.Int("step", e.Step),
			slog.Int("total", e.Total),
			slog.Float64("cost", e.Cost),
			slog.Bool("final", e.Final),
		)
	}
}
