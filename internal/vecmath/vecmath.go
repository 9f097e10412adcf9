// Package vecmath implements the small fixed-size tuple operations used by the
// decimation engine: lerp, dot, normalize, tolerance checks and quaternion
// interpolation. All functions work on caller-provided slices and never allocate.
package vecmath

import (
	"math"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// WithinTolerance reports whether every component of a and b differs by at
// most tolerance (L-infinity distance). Only the first len(a) components are
// compared; b must be at least as long.
func WithinTolerance[F simdops.Float](a, b []F, tolerance F) bool {
	b = b[:len(a)]
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		// NaN fails the comparison and is reported as different.
		if !(d <= tolerance) {
			return false
		}
	}
	return true
}

// Clamp01 limits t to the [0, 1] interval.
func Clamp01[F simdops.Float](t F) F {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp writes from + t*(to-from) into dst for len(dst) components.
func Lerp[F simdops.Float](dst, from, to []F, t F) {
	from = from[:len(dst)]
	to = to[:len(dst)]
	for i := range dst {
		dst[i] = from[i] + t*(to[i]-from[i])
	}
}

// Negate writes -src into dst.
func Negate[F simdops.Float](dst, src []F) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] = -src[i]
	}
}

// Normalize writes src scaled to unit length into dst. A zero-length input
// normalizes to the identity quaternion (0, 0, 0, 1) when len(dst) == QuatSize,
// and to all zeros otherwise.
func Normalize[F simdops.Float](ops *simdops.Ops[F], dst, src []F) {
	src = src[:len(dst)]
	dot := ops.DotProductUnsafe(src, src)
	if dot <= 0 {
		for i := range dst {
			dst[i] = 0
		}
		if len(dst) == QuatSize {
			dst[QuatSize-1] = 1
		}
		return
	}
	ops.Scale(dst, src, F(1/math.Sqrt(float64(dot))))
}
