// Package testutil provides reusable test helpers for keyframe simplification
// tests: deterministic curve generators and track assertions.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	QuatTolerance    = 1e-6
	KinkTolerance    = 1e-3
)

// Curve generator parameters.
const (
	plateauOdds   = 3 // one in plateauOdds keyframes changes a component
	plateauLevels = 5 // plateau values are integers in [0, plateauLevels)
	minSegment    = 2 // shortest linear segment of a kinked curve
	segmentSpread = 5 // segment lengths span [minSegment, minSegment+segmentSpread)
	maxSlope      = 4 // slopes of the kinked component lie in [-maxSlope, maxSlope+1]
	sideSlope     = 2 // slopes of other components lie in [-sideSlope, sideSlope]
)

// PlateauCurve returns a packed step-like curve of exactly representable
// values at integer times. Runs of constant values alternate with jumps.
func PlateauCurve(rng *rand.Rand, count, size int) (frames, values []float32) {
	frames = make([]float32, count)
	values = make([]float32, count*size)
	cur := make([]float32, size)
	for i := range count {
		frames[i] = float32(i)
		if rng.Intn(plateauOdds) == 0 {
			cur[rng.Intn(size)] = float32(rng.Intn(plateauLevels))
		}
		copy(values[i*size:], cur)
	}
	return frames, values
}

// KinkedCurve returns a packed piecewise-linear curve at integer times. The
// first component changes slope by at least one unit at every breakpoint and
// segments are at least two keyframes long, so lerp decimation keeps exactly
// the breakpoints and endpoints for any small tolerance.
func KinkedCurve(rng *rand.Rand, count, size int) (frames, values []float32) {
	frames = make([]float32, count)
	values = make([]float32, count*size)
	slopes := make([]float32, size)
	cur := make([]float32, size)
	remaining := 0
	for i := range count {
		frames[i] = float32(i)
		if remaining == 0 {
			remaining = minSegment + rng.Intn(segmentSpread)
			s := float32(rng.Intn(2*maxSlope+1) - maxSlope)
			if s == slopes[0] {
				s++
			}
			slopes[0] = s
			for c := 1; c < size; c++ {
				slopes[c] = float32(rng.Intn(2*sideSlope+1) - sideSlope)
			}
		}
		remaining--
		copy(values[i*size:], cur)
		for c := range size {
			cur[c] += slopes[c]
		}
	}
	return frames, values
}

// RotationZ returns the unit quaternion (x, y, z, w) rotating deg degrees
// about the Z axis.
func RotationZ(deg float64) []float64 {
	half := deg * math.Pi / 360
	return []float64{0, 0, math.Sin(half), math.Cos(half)}
}

// QuatTrack returns a packed quaternion track of Z rotations at integer times.
func QuatTrack(degrees ...float64) (frames, values []float64) {
	for i, d := range degrees {
		frames = append(frames, float64(i))
		values = append(values, RotationZ(d)...)
	}
	return frames, values
}

// Clone returns a copy of s.
func Clone[F float32 | float64](s []F) []F {
	return append([]F(nil), s...)
}

// AssertStrictlyIncreasing verifies that keyframe times strictly increase.
func AssertStrictlyIncreasing[F float32 | float64](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return assert.Fail(t, "times not strictly increasing",
				"s[%d]=%v <= s[%d]=%v", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertEndpointsKept verifies that the simplified track starts and ends with
// the source track's first and last keyframes.
func AssertEndpointsKept[F float32 | float64](t *testing.T, srcFrames, srcValues, frames, values []F, size int) bool {
	t.Helper()
	if len(frames) == 0 || len(srcFrames) == 0 {
		return assert.Fail(t, "empty track")
	}
	n, m := len(srcFrames), len(frames)
	ok := assert.Equal(t, srcFrames[0], frames[0], "first time")
	ok = assert.Equal(t, srcValues[:size], values[:size], "first value") && ok
	ok = assert.Equal(t, srcFrames[n-1], frames[m-1], "last time") && ok
	return assert.Equal(t, srcValues[(n-1)*size:n*size], values[(m-1)*size:m*size], "last value") && ok
}

// AssertSubsequence verifies that every kept keyframe appears in the source
// track at a later position than the previous kept keyframe.
func AssertSubsequence[F float32 | float64](t *testing.T, srcFrames, srcValues, frames, values []F, size int) bool {
	t.Helper()
	j := 0
	for i := range frames {
		for j < len(srcFrames) && !keyframeEqual(srcFrames[j], srcValues[j*size:(j+1)*size], frames[i], values[i*size:(i+1)*size]) {
			j++
		}
		if j == len(srcFrames) {
			return assert.Fail(t, "not a subsequence", "keyframe %d (time %v) not found in source order", i, frames[i])
		}
		j++
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F float32 | float64](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

func keyframeEqual[F float32 | float64](t1 F, v1 []F, t2 F, v2 []F) bool {
	if t1 != t2 {
		return false
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			return false
		}
	}
	return true
}
