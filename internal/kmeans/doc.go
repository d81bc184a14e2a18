// Package kmeans implements greedy k-means++ seeding and Lloyd refinement.
//
// The control flow of seeding and refinement is sequential; the heavy work
// inside every step (distance matrices, elementwise minima, reductions,
// assignments, center updates) is fanned out through a parallel.Runner in
// fixed-size tiles. Reductions combine per-tile partial sums in tile order,
// so results do not depend on scheduling or on the worker count.
//
// All distances handled here are squared distances.
package kmeans
