package animresample

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-anim-resampler/internal/codec"
	"github.com/tphakala/go-anim-resampler/internal/engine"
	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// Float is the type constraint for keyframe times and values.
type Float = simdops.Float

// Mode selects the interpolation used to decide which keyframes are redundant.
type Mode = engine.Mode

// Interpolation modes.
const (
	// ModeStep keeps only keyframes where the held value changes.
	ModeStep = engine.ModeStep

	// ModeLinear interpolates each component linearly.
	ModeLinear = engine.ModeLinear

	// ModeSpherical interpolates unit quaternions (x, y, z, w) with slerp.
	ModeSpherical = engine.ModeSpherical

	// ModeNlerp approximates ModeSpherical with a corrected normalized lerp.
	ModeNlerp = engine.ModeNlerp
)

// ComponentType identifies the integer encoding of normalized values.
type ComponentType = codec.ComponentType

// Component encodings. The numeric values match glTF accessor component types.
const (
	// ComponentFloat marks plain float values.
	ComponentFloat = codec.Float

	// ComponentByte is a signed 8-bit encoding normalized by 127.
	ComponentByte = codec.Byte

	// ComponentUnsignedByte is an unsigned 8-bit encoding normalized by 255.
	ComponentUnsignedByte = codec.UnsignedByte

	// ComponentShort is a signed 16-bit encoding normalized by 32767.
	ComponentShort = codec.Short

	// ComponentUnsignedShort is an unsigned 16-bit encoding normalized by 65535.
	ComponentUnsignedShort = codec.UnsignedShort
)

// Config holds keyframe simplification configuration.
type Config struct {
	// Mode selects the interpolation semantics.
	Mode Mode

	// Size is the number of components per value.
	// Quaternion modes require exactly 4.
	Size int

	// Tolerance is the maximum per-component deviation (L-infinity) allowed
	// between a dropped keyframe and its reconstruction.
	Tolerance float64

	// ChunkFrames bounds the working memory of a Stream in keyframes.
	// Set to 0 to use the default.
	ChunkFrames int

	// Component is the integer encoding of values. ComponentFloat means
	// plain floats; any other type means values hold normalized integer codes
	// that are decoded before comparison and encoded again on output.
	Component ComponentType

	// EnableSIMD allows the use of SIMD kernels when available.
	// Set to false to force the scalar reference implementation.
	EnableSIMD bool
}

// Common errors returned by the simplifier.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid simplifier configuration")

	// ErrUnsupportedEncoding indicates an unknown component type.
	ErrUnsupportedEncoding = codec.ErrUnsupportedEncoding

	// ErrMalformedLayout indicates an invalid size/stride combination.
	ErrMalformedLayout = codec.ErrMalformedLayout

	// ErrBufferTooSmall indicates a buffer shorter than its declared layout.
	ErrBufferTooSmall = codec.ErrBufferTooSmall

	// ErrNotSupported indicates the requested operation is not supported.
	ErrNotSupported = errors.New("operation not supported")
)

// DefaultConfig returns a configuration for mode and size with the default
// tolerance and chunk size and SIMD enabled.
func DefaultConfig(mode Mode, size int) Config {
	return Config{
		Mode:        mode,
		Size:        size,
		Tolerance:   DefaultTolerance,
		ChunkFrames: DefaultChunkFrames,
		EnableSIMD:  true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStep, ModeLinear:
		if c.Size < 1 {
			return fmt.Errorf("%w: size must be at least 1", ErrInvalidConfig)
		}
	case ModeSpherical, ModeNlerp:
		if c.Size != quatComponents {
			return fmt.Errorf("%w: %s requires %d components, got %d",
				ErrInvalidConfig, c.Mode, quatComponents, c.Size)
		}
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidConfig, c.Mode)
	}

	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be non-negative", ErrInvalidConfig)
	}

	if c.ChunkFrames != 0 && c.ChunkFrames < minChunkFrames {
		return fmt.Errorf("%w: chunk must hold at least %d keyframes", ErrInvalidConfig, minChunkFrames)
	}

	if c.Component != ComponentFloat && !c.Component.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, c.Component)
	}

	return nil
}

// chunkFrames returns the effective working buffer size.
func (c *Config) chunkFrames() int {
	if c.ChunkFrames == 0 {
		return DefaultChunkFrames
	}
	return c.ChunkFrames
}

// Decimate removes redundant interior keyframes in place and returns the new
// keyframe count.
//
// Times are read from frames at multiples of frameStride; value i occupies
// values[i*valueStride : i*valueStride+size]. The first and last keyframes are
// always retained, order is preserved, and the retained keyframes are packed
// at the front of both buffers using the same strides. count == 0 returns
// (0, nil). An invalid layout returns ErrMalformedLayout or ErrBufferTooSmall
// and leaves the buffers untouched.
func Decimate[F Float](
	frames []F, frameStride int,
	values []F, size, valueStride int,
	count int, mode Mode, tolerance F,
) (int, error) {
	return decimate(frames, frameStride, values, size, valueStride, count, mode, tolerance, true)
}

func decimate[F Float](
	frames []F, frameStride int,
	values []F, size, valueStride int,
	count int, mode Mode, tolerance F, simd bool,
) (int, error) {
	p, err := engine.NewPredicate[F](mode, simd)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	layout := engine.Layout{FrameStride: frameStride, Size: size, Stride: valueStride}
	return engine.Decimate(frames, values, layout, count, tolerance, p)
}

// StreamContinue copies the last min(count, 2) of count already-decimated
// keyframes to the front of the buffers and returns how many were carried.
// The next chunk of raw keyframes is appended after them before the next
// Decimate call, which makes chunked decimation equal to a single pass.
func StreamContinue[F Float](
	frames []F, frameStride int,
	values []F, size, valueStride int,
	count int,
) (int, error) {
	layout := engine.Layout{FrameStride: frameStride, Size: size, Stride: valueStride}
	return engine.Continue(frames, values, layout, count)
}

// Normalize converts float components in [-1, 1] (signed) or [0, 1] (unsigned)
// to integer codes of type ct in place: each component is multiplied by the
// type's scale and rounded to nearest. Values stay float-typed.
//
// It returns size*count, the number of components converted. An unknown type
// returns ErrUnsupportedEncoding without modifying values.
func Normalize[F Float](values []F, size, stride, count int, ct ComponentType) (int, error) {
	return codec.New[F](true).Normalize(values, size, stride, count, ct)
}

// Denormalize converts integer codes of type ct back to float components in
// place. Signed types clamp the result to at least -1.
func Denormalize[F Float](values []F, size, stride, count int, ct ComponentType) (int, error) {
	return codec.New[F](true).Denormalize(values, size, stride, count, ct)
}

// SIMDInfo describes the SIMD instruction sets detected on the host CPU.
func SIMDInfo() string {
	return simdops.Info()
}
