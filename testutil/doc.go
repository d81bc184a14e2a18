// Package testutil provides testing utilities for clustr.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for point sets and brute-force reference
// implementations to verify the clustering kernels against.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	data := testutil.Uniform[float32](rng, 1000, 16)
//	blobs := testutil.Blobs[float64](rng, 4, 250, 8, 10, 0.5)
//
// # Ground Truth
//
//	labels := testutil.ExactAssign(data, centers)
//	cost := testutil.ExactCost(data, centers, labels)
package testutil
