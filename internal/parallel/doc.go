// Package parallel provides the fork-join loops used by the numeric kernels.
//
// Work is split into fixed-size tiles of grain items. Tile boundaries only
// depend on n and grain, never on the worker count, so kernels that reduce
// per-tile partial results in tile order produce bit-identical output for
// any number of workers.
//
// Two Runners are provided:
//
//   - Group: spawns goroutines per call through errgroup (default)
//   - Pool:  a persistent set of workers shared across calls
//
// For returns only after every tile has finished (implicit barrier).
package parallel
