package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/clustr/dense"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uniform generates a rows × cols matrix with values in [0, 1).
func Uniform[T dense.Float](r *RNG, rows, cols int) dense.Matrix[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := dense.Zeros[T](rows, cols)
	data := m.Data()
	for i := range data {
		data[i] = T(r.rand.Float64())
	}
	return m
}

// Gaussian generates a rows × cols matrix from a standard normal distribution.
func Gaussian[T dense.Float](r *RNG, rows, cols int) dense.Matrix[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := dense.Zeros[T](rows, cols)
	data := m.Data()
	for i := range data {
		data[i] = T(r.rand.NormFloat64())
	}
	return m
}

// BlobSet is a point set drawn around known centers.
type BlobSet[T dense.Float] struct {
	Data    dense.Matrix[T]
	Centers dense.Matrix[T]
	// Labels holds the generating center of every row.
	Labels []int
}

// Blobs draws perCluster points around each of k centers. Centers are
// uniform in [0, scale)^dim; points add Gaussian noise with the given
// spread. Rows are interleaved (row i belongs to blob i%k).
func Blobs[T dense.Float](r *RNG, k, perCluster, dim int, scale, spread float64) BlobSet[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := dense.Zeros[T](k, dim)
	cd := centers.Data()
	for i := range cd {
		cd[i] = T(r.rand.Float64() * scale)
	}

	n := k * perCluster
	data := dense.Zeros[T](n, dim)
	labels := make([]int, n)
	for i := range n {
		c := i % k
		labels[i] = c
		row, center := data.Row(i), centers.Row(c)
		for j := range row {
			row[j] = center[j] + T(r.rand.NormFloat64()*spread)
		}
	}

	return BlobSet[T]{Data: data, Centers: centers, Labels: labels}
}

// ExactAssign returns the nearest center of every row by brute force in
// float64. Ties resolve to the lowest index.
func ExactAssign[T dense.Float](data, centers dense.Matrix[T]) []int {
	labels := make([]int, data.Rows())
	for i := range labels {
		best, bestDist := 0, math.Inf(1)
		for c := range centers.Rows() {
			if d := squaredL2(data.Row(i), centers.Row(c)); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
	return labels
}

// ExactCost sums squared Euclidean distances to the labelled centers in
// float64.
func ExactCost[T dense.Float](data, centers dense.Matrix[T], labels []int) float64 {
	var cost float64
	for i, l := range labels {
		cost += squaredL2(data.Row(i), centers.Row(l))
	}
	return cost
}

// Centroid returns the per-feature mean of all rows.
func Centroid[T dense.Float](data dense.Matrix[T]) []float64 {
	mean := make([]float64, data.Cols())
	for i := range data.Rows() {
		for j, v := range data.Row(i) {
			mean[j] += float64(v)
		}
	}
	for j := range mean {
		mean[j] /= float64(data.Rows())
	}
	return mean
}

func squaredL2[T dense.Float](a, b []T) float64 {
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}
