// Package rnd provides the reproducible random source used by seeding.
//
// A Generator is not safe for concurrent use; the seeding control flow owns
// it exclusively and never touches it from parallel kernels.
package rnd

import (
	"math/rand/v2"
)

// pcgStream is the fixed PCG stream selector; only the state seed varies.
const pcgStream = 0x9e3779b97f4a7c15

// Generator is a seeded PCG random source.
type Generator struct {
	r    *rand.Rand
	seed uint64
}

// New returns a generator seeded from seed. A nil or negative seed selects a
// random non-negative seed, so Seed always fits back into an int64.
func New(seed *int64) *Generator {
	var s uint64
	if seed != nil && *seed >= 0 {
		s = uint64(*seed)
	} else {
		s = uint64(rand.Int64())
	}
	return FromUint64(s)
}

// FromUint64 returns a generator for an explicit 64-bit seed.
func FromUint64(seed uint64) *Generator {
	return &Generator{
		r:    rand.New(rand.NewPCG(seed, pcgStream)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the effective seed, which reproduces this generator's stream.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// UniformInt returns a uniformly distributed integer in [lo, hi].
func (g *Generator) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.r.IntN(hi-lo+1)
}

// UniformReal returns a uniformly distributed float64 in [0, 1).
func (g *Generator) UniformReal() float64 {
	return g.r.Float64()
}
