// Package simdops provides generic SIMD operations for float32 and float64 types.
// This enables a single codebase to support both precision levels without duplication.
//
// Every operation has a scalar reference implementation. The SIMD-backed set is
// selected at construction time, so hot loops only pay for one indirect call.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides the vector kernels used by the codec and the decimation engine.
// Function pointers allow type-safe generic code while delegating
// to optimized type-specific implementations.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s.
	// dst and a may be the same slice.
	Scale func(dst, a []F, s F)

	// SIMD reports whether the set is backed by tphakala/simd kernels.
	SIMD bool
}

// Pre-instantiated operations for each float type.
// These are package-level variables to avoid repeated allocation.
var (
	simd32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Scale:            f32.Scale,
		SIMD:             true,
	}
	simd64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Scale:            f64.Scale,
		SIMD:             true,
	}
	scalar32 = Ops[float32]{
		DotProductUnsafe: dotScalar[float32],
		Scale:            scaleScalar[float32],
	}
	scalar64 = Ops[float64]{
		DotProductUnsafe: dotScalar[float64],
		Scale:            scaleScalar[float64],
	}
)

// For returns the Ops instance for type F.
// When simd is false the scalar reference kernels are returned.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float](simd bool) *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		src := &scalar32
		if simd {
			src = &simd32
		}
		ops, ok := any(src).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		src := &scalar64
		if simd {
			src = &simd64
		}
		ops, ok := any(src).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Scalar returns the scalar reference operations for type F.
func Scalar[F Float]() *Ops[F] {
	return For[F](false)
}

// Info describes the SIMD capabilities detected on the host CPU.
func Info() string {
	return cpu.Info()
}

func dotScalar[F Float](a, b []F) F {
	var sum F
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func scaleScalar[F Float](dst, a []F, s F) {
	for i := range a {
		dst[i] = a[i] * s
	}
}
