package simd

import (
	"github.com/hupe1980/clustr/dense"
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

var (
	dot32Impl     = dotGeneric[float32]
	dot64Impl     = dotGeneric[float64]
	minimum32Impl = minimumGeneric[float32]
	minimum64Impl = minimumGeneric[float64]
)

// selectKernels wires the implementation for the chosen ISA.
// vek only accelerates AVX2 and above; on other ISAs it would run its own
// pure Go fallbacks, so the generic loops are kept there.
func selectKernels(isa ISA) {
	switch isa {
	case AVX2, AVX512:
		dot32Impl = vek32.Dot
		dot64Impl = vek.Dot
		minimum32Impl = vek32.Minimum_Inplace
		minimum64Impl = vek.Minimum_Inplace
	default:
		dot32Impl = dotGeneric[float32]
		dot64Impl = dotGeneric[float64]
		minimum32Impl = minimumGeneric[float32]
		minimum64Impl = minimumGeneric[float64]
	}
}

// Dot calculates the dot product of two vectors.
//
// SAFETY: This function assumes len(a) == len(b).
func Dot[T dense.Float](a, b []T) T {
	switch a := any(a).(type) {
	case []float32:
		return T(dot32Impl(a, any(b).([]float32)))
	case []float64:
		return T(dot64Impl(a, any(b).([]float64)))
	}
	panic("simd: unsupported element type")
}

// NormSquared returns |v|^2.
func NormSquared[T dense.Float](v []T) T {
	return Dot(v, v)
}

// SquaredL2 calculates the squared L2 distance.
//
// SAFETY: This function assumes len(a) == len(b).
func SquaredL2[T dense.Float](a, b []T) T {
	var s0, s1, s2, s3 T
	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}

// MinimumInPlace sets dst[i] = min(dst[i], src[i]).
//
// SAFETY: This function assumes len(dst) == len(src).
func MinimumInPlace[T dense.Float](dst, src []T) {
	if len(dst) == 0 {
		return
	}
	switch dst := any(dst).(type) {
	case []float32:
		minimum32Impl(dst, any(src).([]float32))
	case []float64:
		minimum64Impl(dst, any(src).([]float64))
	default:
		panic("simd: unsupported element type")
	}
}

func dotGeneric[T dense.Float](a, b []T) T {
	var ret T
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

func minimumGeneric[T dense.Float](dst, src []T) {
	for i, v := range src {
		if v < dst[i] {
			dst[i] = v
		}
	}
}
