// Package resource limits what a Clusterer may consume.
//
// The Controller governs three resources:
//
//   - Memory: budget for transient distance-matrix buffers (non-blocking, fail-fast)
//   - Runs: number of clustering calls executing at once on a shared Clusterer
//   - IO: byte rate for persisting fitted models to a blob store
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//
//	if err := rc.AcquireMemory(n * 8); err != nil {
//	    // ErrMemoryLimitExceeded - shrink the tile or raise the limit
//	}
//	defer rc.ReleaseMemory(n * 8)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
