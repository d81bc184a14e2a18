package clustr

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/internal/kmeans"
)

// State is the terminal state of a refinement run.
type State = kmeans.State

const (
	// Running is only observed while a refinement is in progress.
	Running = kmeans.Running
	// Converged means the relative cost change fell to the tolerance.
	Converged = kmeans.Converged
	// IterationLimitReached means the iteration budget ran out first.
	IterationLimitReached = kmeans.IterationLimitReached
)

// SeedResult holds the centers chosen by greedy k-means++ seeding.
type SeedResult[T dense.Float] struct {
	// Centers is a k × d matrix of rows copied from the input.
	Centers dense.Matrix[T]
	// Indices are the input rows the centers were copied from.
	Indices []int
	// Potentials[c] is the total minimum squared distance once c+1
	// centers were chosen. It never increases.
	Potentials []float64
	// Seed reproduces this run via WithSeed.
	Seed int64
}

// Potential returns the final potential.
func (r *SeedResult[T]) Potential() float64 {
	if len(r.Potentials) == 0 {
		return 0
	}
	return r.Potentials[len(r.Potentials)-1]
}

// Assignment maps every point to its nearest center.
type Assignment[T dense.Float] struct {
	// Labels holds the center index of every point.
	Labels []int
	// Distances holds the squared distance of every point to its center.
	Distances []T

	members []*roaring.Bitmap
}

func newAssignment[T dense.Float](labels []int, dists []T, k int) *Assignment[T] {
	members := make([]*roaring.Bitmap, k)
	for c := range members {
		members[c] = roaring.New()
	}
	for i, l := range labels {
		members[l].Add(uint32(i))
	}
	for _, m := range members {
		m.RunOptimize()
	}
	return &Assignment[T]{Labels: labels, Distances: dists, members: members}
}

// K returns the number of centers.
func (a *Assignment[T]) K() int { return len(a.members) }

// Members returns the point indices assigned to center c.
// The bitmap is shared; clone it before modifying.
func (a *Assignment[T]) Members(c int) *roaring.Bitmap {
	return a.members[c]
}

// Sizes returns the number of points assigned to every center.
func (a *Assignment[T]) Sizes() []uint64 {
	sizes := make([]uint64, len(a.members))
	for c, m := range a.members {
		sizes[c] = m.GetCardinality()
	}
	return sizes
}

// EmptyClusters returns the centers without assigned points.
func (a *Assignment[T]) EmptyClusters() []int {
	var empty []int
	for c, m := range a.members {
		if m.IsEmpty() {
			empty = append(empty, c)
		}
	}
	return empty
}

// RefineResult holds the outcome of Lloyd refinement.
type RefineResult[T dense.Float] struct {
	Centers    dense.Matrix[T]
	Assignment *Assignment[T]
	// Iterations is the number of completed iterations.
	Iterations int
	Converged  bool
	State      State
	// InitialCost is the cost of the initial centers.
	InitialCost float64
	// CostTrajectory holds the cost after every iteration.
	CostTrajectory []float64
}

// Cost returns the cost of the final centers.
func (r *RefineResult[T]) Cost() float64 {
	if len(r.CostTrajectory) == 0 {
		return r.InitialCost
	}
	return r.CostTrajectory[len(r.CostTrajectory)-1]
}

// FitResult combines seeding and refinement.
type FitResult[T dense.Float] struct {
	*RefineResult[T]
	Seeding *SeedResult[T]
}
