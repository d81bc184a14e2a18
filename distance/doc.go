// Package distance provides the pluggable metrics used by clustr.
//
// A Metric measures the dissimilarity of two equally sized vectors. The
// clustering engine always works with squared distances; metrics that can
// expand the squared distance as |a|^2 - 2a·b + |b|^2 implement NormMetric,
// which lets the engine reuse precomputed squared norms and evaluate the
// cross term with a single matrix multiplication.
//
// # Supported Metrics
//
//   - Euclidean: L2 distance (norm-accelerated)
//   - Periodic: L2 distance under the minimum-image convention in a box
//   - Manhattan: L1 distance
//
// # Usage
//
//	m := distance.Euclidean[float32]{}
//	d2 := m.SquaredDistance(a, b)
//	pbc := distance.NewPeriodic([]float64{10, 10, 10})
package distance
