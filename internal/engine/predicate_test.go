package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_String(t *testing.T) {
	assert.Equal(t, "step", ModeStep.String())
	assert.Equal(t, "lerp", ModeLinear.String())
	assert.Equal(t, "slerp", ModeSpherical.String())
	assert.Equal(t, "nlerp", ModeNlerp.String())
}

func TestPredicate_Shape(t *testing.T) {
	tests := []struct {
		mode  Mode
		timed bool
		width int
	}{
		{ModeStep, false, 0},
		{ModeLinear, true, 0},
		{ModeSpherical, true, 4},
		{ModeNlerp, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p, err := NewPredicate[float64](tt.mode, true)
			require.NoError(t, err)
			assert.Equal(t, tt.timed, p.Timed())
			assert.Equal(t, tt.width, p.Width())
		})
	}
}

func TestStep_KeepUsesTolerance(t *testing.T) {
	var p Step[float32]
	a := []float32{1, 2}
	b := []float32{1.05, 2}

	assert.True(t, p.Keep(a, b, b, 0, 0.01))
	assert.False(t, p.Keep(a, b, b, 0, 0.1))
	assert.True(t, p.Keep(a, a, b, 0, 0.01), "a change toward next keeps the candidate")
}

func TestStep_InterpolateHolds(t *testing.T) {
	var p Step[float64]
	dst := make([]float64, 2)
	p.Interpolate(dst, []float64{1, 2}, []float64{9, 9}, 0.99)
	assert.Equal(t, []float64{1, 2}, dst)
}

func TestLinear_ClampsT(t *testing.T) {
	var p Linear[float64]
	prev := []float64{0}
	next := []float64{10}

	// Out-of-range fractions come from non-monotonic times.
	assert.False(t, p.Keep(prev, []float64{10}, next, 3, 0))
	assert.False(t, p.Keep(prev, []float64{0}, next, -2, 0))

	dst := make([]float64, 1)
	p.Interpolate(dst, prev, next, 1.5)
	assert.Equal(t, []float64{10}, dst)
}

func TestLinear_NaNIsKept(t *testing.T) {
	var p Linear[float64]
	assert.True(t, p.Keep([]float64{0}, []float64{math.NaN()}, []float64{0}, 0.5, 1))
}

func TestNormalizedLerp_NormalizesCandidate(t *testing.T) {
	p, err := NewPredicate[float64](ModeNlerp, false)
	require.NoError(t, err)

	identity := []float64{0, 0, 0, 1}
	scaled := []float64{0, 0, 0, 3}

	assert.False(t, p.Keep(identity, scaled, identity, 0.5, 1e-9))

	sp, err := NewPredicate[float64](ModeSpherical, false)
	require.NoError(t, err)
	assert.True(t, sp.Keep(identity, scaled, identity, 0.5, 1e-9),
		"spherical mode compares the raw candidate")
}
