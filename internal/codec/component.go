// Package codec converts between float components and fixed-width integer
// component encodings, in place.
//
// The numeric component type codes match the glTF accessor componentType
// values so buffers can be exchanged with 3D asset tooling unchanged.
package codec

import (
	"errors"
	"fmt"
)

// ComponentType identifies a fixed-width integer component encoding.
type ComponentType uint16

// Supported component types. The numeric values are part of the interchange
// contract and must not change.
const (
	// Float marks plain float components (no quantization).
	Float ComponentType = 0

	// Byte is a signed 8-bit component normalized by 127.
	Byte ComponentType = 5120

	// UnsignedByte is an unsigned 8-bit component normalized by 255.
	UnsignedByte ComponentType = 5121

	// Short is a signed 16-bit component normalized by 32767.
	Short ComponentType = 5122

	// UnsignedShort is an unsigned 16-bit component normalized by 65535.
	UnsignedShort ComponentType = 5123
)

// Normalization scales per component type.
const (
	scaleByte          = 127.0
	scaleUnsignedByte  = 255.0
	scaleShort         = 32767.0
	scaleUnsignedShort = 65535.0

	// Lower bound of decoded signed components. The integer range is one unit
	// wider on the negative side than the float range.
	signedDecodeMin = -1.0
)

// Common errors returned by the codec.
var (
	// ErrUnsupportedEncoding indicates an unknown component type.
	ErrUnsupportedEncoding = errors.New("unsupported component encoding")

	// ErrMalformedLayout indicates an invalid size/stride combination.
	ErrMalformedLayout = errors.New("malformed buffer layout")

	// ErrBufferTooSmall indicates a buffer shorter than its declared layout.
	ErrBufferTooSmall = errors.New("buffer too small")
)

// Scale returns the normalization scale of the component type and whether the
// type is a supported integer encoding.
func (c ComponentType) Scale() (float64, bool) {
	switch c {
	case Byte:
		return scaleByte, true
	case UnsignedByte:
		return scaleUnsignedByte, true
	case Short:
		return scaleShort, true
	case UnsignedShort:
		return scaleUnsignedShort, true
	default:
		return 0, false
	}
}

// Signed reports whether the encoding is a signed integer type.
func (c ComponentType) Signed() bool {
	return c == Byte || c == Short
}

// Valid reports whether c is one of the supported integer encodings.
func (c ComponentType) Valid() bool {
	_, ok := c.Scale()
	return ok
}

// ByteSize returns the encoded width in bytes (4 for Float).
func (c ComponentType) ByteSize() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	default:
		return 4
	}
}

// Bounds returns the representable integer range of the encoding.
func (c ComponentType) Bounds() (lo, hi int) {
	switch c {
	case Byte:
		return -128, 127
	case UnsignedByte:
		return 0, 255
	case Short:
		return -32768, 32767
	case UnsignedShort:
		return 0, 65535
	default:
		return 0, 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case Float:
		return "FLOAT"
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	default:
		return fmt.Sprintf("ComponentType(%d)", uint16(c))
	}
}
