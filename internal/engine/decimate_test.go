package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
	"github.com/tphakala/go-anim-resampler/internal/testutil"
)

func packed(size int) Layout {
	return Layout{FrameStride: 1, Size: size, Stride: size}
}

func mustPredicate[F simdops.Float](t *testing.T, mode Mode) Predicate[F] {
	t.Helper()
	p, err := NewPredicate[F](mode, false)
	require.NoError(t, err)
	return p
}

// =============================================================================
// Collapse Cases
// =============================================================================

func TestDecimate_StepConstantRunCollapses(t *testing.T) {
	frames := []float32{0, 1, 2, 3, 4}
	values := []float32{5, 5, 5, 5, 5}

	n, err := Decimate(frames, values, packed(1), len(frames), 0, mustPredicate[float32](t, ModeStep))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 4}, frames[:n])
	assert.Equal(t, []float32{5, 5}, values[:n])
}

func TestDecimate_LerpLinearRampCollapses(t *testing.T) {
	frames := []float32{0, 1, 2, 3}
	values := []float32{0, 1, 2, 3}

	n, err := Decimate(frames, values, packed(1), len(frames), 0, mustPredicate[float32](t, ModeLinear))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 3}, frames[:n])
	assert.Equal(t, []float32{0, 3}, values[:n])
}

func TestDecimate_KinkIsRetained(t *testing.T) {
	for _, mode := range []Mode{ModeStep, ModeLinear} {
		t.Run(mode.String(), func(t *testing.T) {
			frames := []float32{0, 1, 2}
			values := []float32{0, 5, 0}

			n, err := Decimate(frames, values, packed(1), len(frames), 0, mustPredicate[float32](t, mode))
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, []float32{0, 1, 2}, frames)
			assert.Equal(t, []float32{0, 5, 0}, values)
		})
	}
}

func TestDecimate_StepKeepsBothSidesOfJump(t *testing.T) {
	// (0,0,0,0,1,1,1,0,0,0) -> (0,0,1,1,0,0)
	frames := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	values := []float32{0, 0, 0, 0, 1, 1, 1, 0, 0, 0}

	n, err := Decimate(frames, values, packed(1), len(frames), 0, mustPredicate[float32](t, ModeStep))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 3, 4, 6, 7, 9}, frames[:n])
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 0}, values[:n])
}

func TestDecimate_Vec3Lerp(t *testing.T) {
	frames := []float64{0, 1, 2, 3, 4}
	values := []float64{
		0, 0, 0,
		1, 2, -1,
		2, 4, -2,
		3, 6, -3,
		3, 6, 10,
	}

	n, err := Decimate(frames, values, packed(3), len(frames), 1e-9, mustPredicate[float64](t, ModeLinear))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, []float64{0, 3, 4}, frames[:n])
	assert.Equal(t, []float64{0, 0, 0, 3, 6, -3, 3, 6, 10}, values[:3*n])
}

func TestDecimate_WideValuesCompareEveryComponent(t *testing.T) {
	// Six components: only the tail component (past the first block of four)
	// breaks linearity at the middle keyframe.
	frames := []float32{0, 1, 2}
	values := []float32{
		0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 7,
		2, 2, 2, 2, 2, 2,
	}

	n, err := Decimate(frames, values, packed(6), 3, 0.001, mustPredicate[float32](t, ModeLinear))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	values[11] = 1
	n, err = Decimate(frames, values, packed(6), 3, 0.001, mustPredicate[float32](t, ModeLinear))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// =============================================================================
// Time Ties
// =============================================================================

func TestDecimate_TimeTieDropsEarlierSample(t *testing.T) {
	frames := []float32{0, 1, 1, 2}
	values := []float32{0, 0, 5, 5}

	n, err := Decimate(frames, values, packed(1), 4, 0, mustPredicate[float32](t, ModeStep))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2}, frames[:n])
	assert.Equal(t, []float32{0, 5, 5}, values[:n])
}

func TestDecimate_SecondSampleAtFirstTimeIsDropped(t *testing.T) {
	frames := []float32{0, 0, 1, 2}
	values := []float32{0, 3, 3, 3}

	n, err := Decimate(frames, values, packed(1), 4, 0, mustPredicate[float32](t, ModeLinear))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2}, frames[:n])
	assert.Equal(t, []float32{0, 3, 3}, values[:n])
}

func TestDecimateCarried_EvaluatesSecondSampleAtFirstTime(t *testing.T) {
	frames := []float32{0, 0, 1}
	values := []float32{5, 7, 7}

	n, err := DecimateCarried(frames, values, packed(1), 3, 0, mustPredicate[float32](t, ModeStep))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, frames[:n])
	assert.Equal(t, []float32{5, 7, 7}, values[:n])
}

func TestDecimate_AllTimesEqualKeepsEndpoints(t *testing.T) {
	frames := []float32{1, 1, 1, 1}
	values := []float32{0, 9, -9, 4}

	n, err := Decimate(frames, values, packed(1), 4, 0, mustPredicate[float32](t, ModeLinear))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 4}, values[:n])
}

// =============================================================================
// Small Counts and Errors
// =============================================================================

func TestDecimate_SmallCounts(t *testing.T) {
	p := mustPredicate[float32](t, ModeLinear)

	n, err := Decimate[float32](nil, nil, packed(1), 0, 0, p)
	require.NoError(t, err)
	assert.Zero(t, n)

	frames := []float32{3}
	values := []float32{7}
	n, err = Decimate(frames, values, packed(1), 1, 0, p)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float32{3}, frames)
	assert.Equal(t, []float32{7}, values)

	frames = []float32{3, 4}
	values = []float32{7, 7}
	n, err = Decimate(frames, values, packed(1), 2, 0, p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDecimate_MalformedLayoutDoesNotMutate(t *testing.T) {
	frames := []float32{0, 1, 2}
	values := []float32{1, 1, 1, 1, 1, 1}

	_, err := Decimate(frames, values, Layout{FrameStride: 1, Size: 3, Stride: 2}, 3, 0,
		mustPredicate[float32](t, ModeStep))
	require.ErrorIs(t, err, ErrMalformedLayout)
	assert.Equal(t, []float32{0, 1, 2}, frames)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, values)
}

func TestDecimate_QuaternionPredicateRequiresFourComponents(t *testing.T) {
	frames := []float32{0, 1, 2}
	values := make([]float32, 9)

	_, err := Decimate(frames, values, packed(3), 3, 0, mustPredicate[float32](t, ModeSpherical))
	require.ErrorIs(t, err, ErrMalformedLayout)
}

func TestDecimate_BufferTooSmall(t *testing.T) {
	p := mustPredicate[float32](t, ModeStep)

	_, err := Decimate(make([]float32, 2), make([]float32, 3), packed(1), 3, 0, p)
	require.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = Decimate(make([]float32, 3), make([]float32, 5), packed(2), 3, 0, p)
	require.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestNewPredicate_UnknownMode(t *testing.T) {
	_, err := NewPredicate[float32](Mode(42), false)
	require.Error(t, err)
	assert.Equal(t, "Mode(42)", Mode(42).String())
}

// =============================================================================
// Layout Tests
// =============================================================================

// TestDecimate_InterleavedMatchesPacked verifies strided buffers give the
// same result as packed ones and that padding is never touched.
func TestDecimate_InterleavedMatchesPacked(t *testing.T) {
	const (
		count = 40
		size  = 3
	)
	rng := rand.New(rand.NewSource(3))
	packedFrames, packedValues := testutil.PlateauCurve(rng, count, size)

	const (
		frameStride = 2
		stride      = 5
		pad         = float32(-42)
	)
	frames := make([]float32, count*frameStride)
	values := make([]float32, count*stride)
	for i := range frames {
		frames[i] = pad
	}
	for i := range values {
		values[i] = pad
	}
	for i := range count {
		frames[i*frameStride] = packedFrames[i]
		copy(values[i*stride:], packedValues[i*size:(i+1)*size])
	}

	p := mustPredicate[float32](t, ModeStep)
	want, err := Decimate(packedFrames, packedValues, packed(size), count, 0, p)
	require.NoError(t, err)

	got, err := Decimate(frames, values, Layout{FrameStride: frameStride, Size: size, Stride: stride}, count, 0, p)
	require.NoError(t, err)
	require.Equal(t, want, got)

	for i := range count {
		assert.Equal(t, pad, frames[i*frameStride+1], "frame padding %d", i)
		for c := size; c < stride; c++ {
			assert.Equal(t, pad, values[i*stride+c], "value padding %d/%d", i, c)
		}
	}
	for i := range got {
		assert.Equal(t, packedFrames[i], frames[i*frameStride])
		assert.Equal(t, packedValues[i*size:(i+1)*size], values[i*stride:i*stride+size])
	}
}

// =============================================================================
// Quaternion Tests
// =============================================================================

func TestDecimate_SlerpConstantAngularVelocityCollapses(t *testing.T) {
	for _, mode := range []Mode{ModeSpherical, ModeNlerp} {
		t.Run(mode.String(), func(t *testing.T) {
			frames, values := testutil.QuatTrack(0, 20, 40, 60, 80)

			n, err := Decimate(frames, values, packed(4), 5, 1e-3, mustPredicate[float64](t, mode))
			require.NoError(t, err)
			require.Equal(t, 2, n)
			assert.Equal(t, []float64{0, 4}, frames[:n])
			assert.InDeltaSlice(t, testutil.RotationZ(80), values[4:8], 1e-12)
		})
	}
}

func TestDecimate_SlerpTakesShortestArc(t *testing.T) {
	frames, values := testutil.QuatTrack(0, 20, 40)
	// Flip the sign of the last two samples. They encode the same rotations,
	// so interpolation must go the short way and land on -q(20).
	for i := 4; i < 12; i++ {
		values[i] = -values[i]
	}

	n, err := Decimate(frames, values, packed(4), 3, 1e-6, mustPredicate[float64](t, ModeSpherical))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDecimate_SlerpHalfTurnIsAlwaysKept(t *testing.T) {
	frames, values := testutil.QuatTrack(0, 100, 200)

	n, err := Decimate(frames, values, packed(4), 3, 10, mustPredicate[float64](t, ModeSpherical))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "a half-turn span is ambiguous and must not be interpolated")
}

func TestDecimate_SlerpKeepsAngularKink(t *testing.T) {
	frames, values := testutil.QuatTrack(0, 60, 0)

	n, err := Decimate(frames, values, packed(4), 3, 1e-4, mustPredicate[float64](t, ModeSpherical))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDecimate_SlerpSIMDMatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const count = 200
	frames := make([]float64, count)
	values := make([]float64, 0, count*4)
	angle := 0.0
	for i := range count {
		frames[i] = float64(i)
		if rng.Intn(4) == 0 {
			angle += rng.Float64() * 30
		}
		values = append(values, testutil.RotationZ(angle)...)
	}

	fast, err := NewPredicate[float64](ModeSpherical, true)
	require.NoError(t, err)
	ref, err := NewPredicate[float64](ModeSpherical, false)
	require.NoError(t, err)

	f1, v1 := append([]float64(nil), frames...), append([]float64(nil), values...)
	f2, v2 := append([]float64(nil), frames...), append([]float64(nil), values...)
	n1, err := Decimate(f1, v1, packed(4), count, 1e-2, fast)
	require.NoError(t, err)
	n2, err := Decimate(f2, v2, packed(4), count, 1e-2, ref)
	require.NoError(t, err)

	require.Equal(t, n2, n1)
	assert.Equal(t, f2[:n2], f1[:n1])
}

// =============================================================================
// Property Tests
// =============================================================================

func TestDecimate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		mode      Mode
		tolerance float32
		curve     func(*rand.Rand, int, int) ([]float32, []float32)
	}{
		{ModeStep, 0, testutil.PlateauCurve},
		{ModeStep, 0.5, testutil.PlateauCurve},
		{ModeLinear, 1e-3, testutil.KinkedCurve},
	}

	for _, tc := range cases {
		for size := 1; size <= 6; size++ {
			for _, count := range []int{2, 3, 4, 17, 100} {
				frames, values := tc.curve(rng, count, size)
				origFrames := testutil.Clone(frames)
				origValues := testutil.Clone(values)
				p := mustPredicate[float32](t, tc.mode)

				n, err := Decimate(frames, values, packed(size), count, tc.tolerance, p)
				require.NoError(t, err)

				require.LessOrEqual(t, n, count)
				require.GreaterOrEqual(t, n, 2)
				testutil.AssertEndpointsKept(t, origFrames, origValues, frames[:n], values[:n*size], size)
				testutil.AssertSubsequence(t, origFrames, origValues, frames[:n], values[:n*size], size)
				testutil.AssertStrictlyIncreasing(t, frames[:n])

				// Idempotence.
				f2 := testutil.Clone(frames[:n])
				v2 := testutil.Clone(values[:n*size])
				n2, err := Decimate(f2, v2, packed(size), n, tc.tolerance, p)
				require.NoError(t, err)
				require.Equal(t, n, n2, "mode=%s size=%d count=%d", tc.mode, size, count)
				assert.Equal(t, frames[:n], f2[:n2])
				assert.Equal(t, values[:n*size], v2[:n2*size])
			}
		}
	}
}

func BenchmarkDecimate_LerpVec3(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const count = 4096
	srcFrames, srcValues := testutil.KinkedCurve(rng, count, 3)
	frames := make([]float32, count)
	values := make([]float32, count*3)
	p, _ := NewPredicate[float32](ModeLinear, false)

	b.ReportAllocs()
	for b.Loop() {
		copy(frames, srcFrames)
		copy(values, srcValues)
		_, _ = Decimate(frames, values, packed(3), count, 1e-4, p)
	}
}

func BenchmarkDecimate_SlerpQuat(b *testing.B) {
	const count = 4096
	srcFrames, srcValues := testutil.QuatTrack(make([]float64, count)...)
	for i := range count {
		copy(srcValues[i*4:], testutil.RotationZ(float64(i%90)))
	}
	frames := make([]float64, count)
	values := make([]float64, count*4)
	p, _ := NewPredicate[float64](ModeSpherical, true)

	b.ReportAllocs()
	for b.Loop() {
		copy(frames, srcFrames)
		copy(values, srcValues)
		_, _ = Decimate(frames, values, packed(4), count, 1e-5, p)
	}
}
