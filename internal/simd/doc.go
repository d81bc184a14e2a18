// Package simd provides the vector kernels used by the clustering engine.
//
// # Supported Platforms
//
//   - x86-64: AVX2+FMA and AVX-512 via github.com/viterin/vek
//   - everything else: portable Go loops
//
// Runtime CPU feature detection selects the implementation once at init.
// Set CLUSTR_SIMD=generic to force the portable kernels.
//
// # Operations
//
//   - Distance: Dot, SquaredL2, NormSquared
//   - Elementwise: MinimumInPlace
//
// All kernels are generic over float32 and float64.
package simd
