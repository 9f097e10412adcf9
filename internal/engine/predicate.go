// Package engine implements keyframe decimation: an in-place, single-pass
// compaction that drops interior keyframes reconstructable by interpolation
// from their neighbors, plus the carry step that lets it run over chunked
// streams.
package engine

import (
	"fmt"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
	"github.com/tphakala/go-anim-resampler/internal/vecmath"
)

// Mode selects the interpolation semantics used to judge redundancy.
type Mode int

const (
	// ModeStep holds each value until the next keyframe.
	ModeStep Mode = iota

	// ModeLinear interpolates each component linearly.
	ModeLinear

	// ModeSpherical interpolates unit quaternions along the shortest arc.
	ModeSpherical

	// ModeNlerp approximates ModeSpherical with a corrected normalized lerp.
	ModeNlerp
)

func (m Mode) String() string {
	switch m {
	case ModeStep:
		return "step"
	case ModeLinear:
		return "lerp"
	case ModeSpherical:
		return "slerp"
	case ModeNlerp:
		return "nlerp"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Predicate decides whether an interior keyframe is necessary.
//
// Keep receives the retained predecessor, the candidate and the next raw
// keyframe (each exactly value-size long) and the candidate's time fraction t
// between predecessor and next. Interpolate reconstructs a value between two
// keyframes and is shared with curve evaluation.
type Predicate[F simdops.Float] interface {
	Keep(prev, cur, next []F, t, tolerance F) bool
	Interpolate(dst, from, to []F, t F)

	// Timed reports whether Keep uses t. Untimed predicates skip the division.
	Timed() bool

	// Width returns the required value size, or 0 when any size is accepted.
	Width() int
}

// NewPredicate returns the predicate for mode. When simd is true, quaternion
// predicates use the SIMD dot product kernels.
func NewPredicate[F simdops.Float](mode Mode, simd bool) (Predicate[F], error) {
	ops := simdops.For[F](simd)
	switch mode {
	case ModeStep:
		return Step[F]{}, nil
	case ModeLinear:
		return Linear[F]{}, nil
	case ModeSpherical:
		return Spherical[F]{ops: ops}, nil
	case ModeNlerp:
		return NormalizedLerp[F]{ops: ops}, nil
	default:
		return nil, fmt.Errorf("unknown interpolation mode %d", int(mode))
	}
}

// Step keeps a keyframe unless the curve is locally constant across
// predecessor, candidate and next.
type Step[F simdops.Float] struct{}

// Keep implements Predicate.
func (Step[F]) Keep(prev, cur, next []F, _ F, tolerance F) bool {
	return !vecmath.WithinTolerance(prev, cur, tolerance) ||
		!vecmath.WithinTolerance(cur, next, tolerance)
}

// Interpolate holds the start value.
func (Step[F]) Interpolate(dst, from, _ []F, _ F) {
	copy(dst, from[:len(dst)])
}

// Timed implements Predicate.
func (Step[F]) Timed() bool { return false }

// Width implements Predicate.
func (Step[F]) Width() int { return 0 }

// Linear keeps a keyframe when per-component linear interpolation between
// predecessor and next misses it by more than the tolerance.
type Linear[F simdops.Float] struct{}

// Keep implements Predicate. Values of any width are compared in blocks of
// four components.
func (Linear[F]) Keep(prev, cur, next []F, t, tolerance F) bool {
	t = vecmath.Clamp01(t)
	var scratch [blockWidth]F
	for off := 0; off < len(cur); off += blockWidth {
		end := min(off+blockWidth, len(cur))
		dst := scratch[:end-off]
		vecmath.Lerp(dst, prev[off:end], next[off:end], t)
		if !vecmath.WithinTolerance(dst, cur[off:end], tolerance) {
			return true
		}
	}
	return false
}

// Interpolate implements Predicate.
func (Linear[F]) Interpolate(dst, from, to []F, t F) {
	vecmath.Lerp(dst, from, to, vecmath.Clamp01(t))
}

// Timed implements Predicate.
func (Linear[F]) Timed() bool { return true }

// Width implements Predicate.
func (Linear[F]) Width() int { return 0 }

// Spherical keeps a quaternion keyframe when slerp between predecessor and
// next misses it, or when the rotation through it spans half a turn or more.
type Spherical[F simdops.Float] struct {
	ops *simdops.Ops[F]
}

// Keep implements Predicate.
func (s Spherical[F]) Keep(prev, cur, next []F, t, tolerance F) bool {
	if vecmath.ExceedsHalfTurn(s.ops, prev, cur, next) {
		return true
	}
	var q [vecmath.QuatSize]F
	vecmath.Slerp(s.ops, q[:], prev, next, vecmath.Clamp01(t))
	return !vecmath.WithinTolerance(q[:], cur, tolerance)
}

// Interpolate implements Predicate.
func (s Spherical[F]) Interpolate(dst, from, to []F, t F) {
	vecmath.Slerp(s.ops, dst, from, to, vecmath.Clamp01(t))
}

// Timed implements Predicate.
func (Spherical[F]) Timed() bool { return true }

// Width implements Predicate.
func (Spherical[F]) Width() int { return vecmath.QuatSize }

// NormalizedLerp is the fast approximation of Spherical. Both the
// reconstruction and the candidate are normalized before comparison.
type NormalizedLerp[F simdops.Float] struct {
	ops *simdops.Ops[F]
}

// Keep implements Predicate.
func (n NormalizedLerp[F]) Keep(prev, cur, next []F, t, tolerance F) bool {
	if vecmath.ExceedsHalfTurn(n.ops, prev, cur, next) {
		return true
	}
	var q, c [vecmath.QuatSize]F
	vecmath.Nlerp(n.ops, q[:], prev, next, vecmath.Clamp01(t))
	vecmath.Normalize(n.ops, c[:], cur)
	return !vecmath.WithinTolerance(q[:], c[:], tolerance)
}

// Interpolate implements Predicate.
func (n NormalizedLerp[F]) Interpolate(dst, from, to []F, t F) {
	vecmath.Nlerp(n.ops, dst, from, to, vecmath.Clamp01(t))
}

// Timed implements Predicate.
func (NormalizedLerp[F]) Timed() bool { return true }

// Width implements Predicate.
func (NormalizedLerp[F]) Width() int { return vecmath.QuatSize }
