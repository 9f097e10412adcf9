package vecmath

import (
	"math"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// QuatSize is the number of components of a quaternion (x, y, z, w).
const QuatSize = 4

// Quaternion interpolation constants.
const (
	// Float32Epsilon is the float32 machine epsilon (FLT_EPSILON).
	Float32Epsilon = 1.1920928955078125e-07

	// slerpLinearThreshold is the |cos| above which slerp falls back to lerp,
	// avoiding division by a near-zero sine.
	slerpLinearThreshold = 0.99999

	// Polynomial coefficients for the corrected normalized lerp.
	// See https://zeux.io/2015/07/23/approximating-slerp/
	nlerpA0  = 1.0904
	nlerpA1  = -3.2452
	nlerpA2  = 3.55645
	nlerpA3  = 1.43519
	nlerpB0  = 0.848013
	nlerpB1  = -1.06021
	nlerpB2  = 0.215638
	nlerpMid = 0.5
)

// QuatAngle returns the angular distance in radians between two unit
// quaternions, acos(2*dot^2 - 1). The argument is clamped so rounding on
// nearly identical rotations cannot produce NaN.
func QuatAngle[F simdops.Float](ops *simdops.Ops[F], a, b []F) F {
	d := float64(ops.DotProductUnsafe(a[:QuatSize], b[:QuatSize]))
	c := 2*d*d - 1
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return F(math.Acos(c))
}

// ExceedsHalfTurn reports whether the accumulated angle a->b->c reaches pi
// (within float32 epsilon). Interpolating across such a span is ambiguous.
func ExceedsHalfTurn[F simdops.Float](ops *simdops.Ops[F], a, b, c []F) bool {
	sum := float64(QuatAngle(ops, a, b)) + float64(QuatAngle(ops, b, c))
	return sum+Float32Epsilon > math.Pi
}

// Slerp writes the spherical linear interpolation of from and to at t into dst.
//
// The shorter arc is always taken: when dot(from, to) < 0 the start
// quaternion is negated first. Nearly parallel inputs (|cos| > 0.99999) are
// linearly interpolated instead.
func Slerp[F simdops.Float](ops *simdops.Ops[F], dst, from, to []F, t F) {
	dst = dst[:QuatSize]
	to = to[:QuatSize]
	cosTheta := ops.DotProductUnsafe(from[:QuatSize], to)

	if cosTheta >= 1 || cosTheta <= -1 {
		copy(dst, from[:QuatSize])
		return
	}

	var q1 [QuatSize]F
	copy(q1[:], from[:QuatSize])
	if cosTheta < 0 {
		Negate(q1[:], q1[:])
		cosTheta = -cosTheta
	}

	if cosTheta > slerpLinearThreshold {
		Lerp(dst, q1[:], to, t)
		return
	}

	angle := math.Acos(float64(cosTheta))
	invSin := 1 / math.Sin(angle)
	s0 := F(math.Sin((1-float64(t))*angle) * invSin)
	s1 := F(math.Sin(float64(t)*angle) * invSin)
	for i := range dst {
		dst[i] = q1[i]*s0 + to[i]*s1
	}
}

// Nlerp writes an approximation of Slerp into dst: a normalized lerp whose
// interpolation parameter is corrected by a cubic polynomial in |cos|.
// The result is unit length. Double cover is handled by flipping the sign of
// the destination weight.
func Nlerp[F simdops.Float](ops *simdops.Ops[F], dst, from, to []F, t F) {
	dst = dst[:QuatSize]
	ca := float64(ops.DotProductUnsafe(from[:QuatSize], to[:QuatSize]))
	d := math.Abs(ca)
	tt := float64(t)

	a := nlerpA0 + d*(nlerpA1+d*(nlerpA2-d*nlerpA3))
	b := nlerpB0 + d*(nlerpB1+d*nlerpB2)
	k := a*(tt-nlerpMid)*(tt-nlerpMid) + b
	ot := tt + tt*(tt-nlerpMid)*(tt-1)*k

	t0 := F(1 - ot)
	t1 := F(ot)
	if ca <= 0 {
		t1 = -t1
	}
	for i := range dst {
		dst[i] = from[i]*t0 + to[i]*t1
	}
	Normalize(ops, dst, dst)
}
