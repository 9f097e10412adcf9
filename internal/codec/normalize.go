package codec

import (
	"fmt"
	"math"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// Codec performs in-place normalization and denormalization of component
// buffers. A Codec is stateless and safe for concurrent use on disjoint buffers.
type Codec[F simdops.Float] struct {
	ops *simdops.Ops[F]
}

// New creates a codec. When simd is true the scale step uses the SIMD kernels.
func New[F simdops.Float](simd bool) *Codec[F] {
	return &Codec[F]{ops: simdops.For[F](simd)}
}

// Normalize multiplies every component of count vectors of width size, spaced
// stride elements apart, by the encoding's scale and rounds to the nearest
// integer (halves away from zero). Results stay in float form; narrowing to
// the integer type is the caller's job.
//
// It returns the number of components processed (size*count). An unknown
// component type returns ErrUnsupportedEncoding and leaves values untouched.
func (c *Codec[F]) Normalize(values []F, size, stride, count int, ct ComponentType) (int, error) {
	scale, ok := ct.Scale()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, ct)
	}
	if err := checkLayout(len(values), size, stride, count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	s := F(scale)
	if size == stride {
		run := values[:size*count]
		c.ops.Scale(run, run, s)
		roundInPlace(run)
		return size * count, nil
	}

	for i := range count {
		v := values[i*stride : i*stride+size]
		c.ops.Scale(v, v, s)
		roundInPlace(v)
	}
	return size * count, nil
}

// Denormalize multiplies every component by the reciprocal scale of the
// encoding. Signed encodings clamp the result's lower bound to -1.0; unsigned
// encodings are not clamped. Layout and return value match Normalize.
func (c *Codec[F]) Denormalize(values []F, size, stride, count int, ct ComponentType) (int, error) {
	scale, ok := ct.Scale()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, ct)
	}
	if err := checkLayout(len(values), size, stride, count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	inv := F(1 / scale)
	signed := ct.Signed()
	if size == stride {
		run := values[:size*count]
		c.ops.Scale(run, run, inv)
		if signed {
			clampLower(run)
		}
		return size * count, nil
	}

	for i := range count {
		v := values[i*stride : i*stride+size]
		c.ops.Scale(v, v, inv)
		if signed {
			clampLower(v)
		}
	}
	return size * count, nil
}

// checkLayout validates a size/stride/count layout against a buffer length.
func checkLayout(n, size, stride, count int) error {
	if size < 1 || stride < size || count < 0 {
		return fmt.Errorf("%w: size=%d stride=%d count=%d", ErrMalformedLayout, size, stride, count)
	}
	if count == 0 {
		return nil
	}
	if need := (count-1)*stride + size; n < need {
		return fmt.Errorf("%w: need %d elements, have %d", ErrBufferTooSmall, need, n)
	}
	return nil
}

func roundInPlace[F simdops.Float](v []F) {
	for i := range v {
		v[i] = F(math.Round(float64(v[i])))
	}
}

func clampLower[F simdops.Float](v []F) {
	for i := range v {
		if v[i] < signedDecodeMin {
			v[i] = signedDecodeMin
		}
	}
}
