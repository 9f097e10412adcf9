// Package compress provides the block compressors used by the track container.
//
// Every codec compresses a whole payload at once. Decompression takes the
// expected raw length, which the container stores in its header, so
// corrupted or truncated input is detected instead of silently accepted.
package compress

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies a compression algorithm. The numeric values are stored in
// track container headers and must not change.
type Type uint8

// Compression types.
const (
	None Type = 0x0
	Zstd Type = 0x1
	S2   Type = 0x2
	LZ4  Type = 0x3
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ErrUnknownType indicates an unsupported compression type.
var ErrUnknownType = errors.New("unknown compression type")

// ErrSizeMismatch indicates that decompressed data does not have the expected length.
var ErrSizeMismatch = errors.New("decompressed size mismatch")

// MaxDecodedSize bounds the payload any codec will decode.
const MaxDecodedSize = 1 << 30

// Codec compresses and decompresses complete payloads.
// Implementations are safe for concurrent use.
type Codec interface {
	// Compress returns the compressed form of data. The input is not modified.
	Compress(data []byte) ([]byte, error)

	// Decompress returns the original payload of size bytes.
	Decompress(data []byte, size int) ([]byte, error)
}

var builtinCodecs = map[Type]Codec{
	None: noopCodec{},
	Zstd: zstdCodec{},
	S2:   s2Codec{},
	LZ4:  lz4Codec{},
}

// Get returns the built-in codec for t.
func Get(t Type) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
}

// Parse converts a name such as "zstd" to a Type.
func Parse(name string) (Type, error) {
	for t := range builtinCodecs {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// checkRatio rejects a size that len(data) compressed bytes cannot decode
// to, so a forged size never drives an allocation.
func checkRatio(data []byte, size, ratio int) error {
	if size > MaxDecodedSize || size > len(data)*ratio {
		return fmt.Errorf("%w: %d compressed bytes cannot hold %d", ErrSizeMismatch, len(data), size)
	}
	return nil
}

func checkSize(out []byte, size int) ([]byte, error) {
	if len(out) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(out), size)
	}
	return out, nil
}

// noopCodec stores payloads uncompressed.
type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noopCodec) Decompress(data []byte, size int) ([]byte, error) {
	return checkSize(data, size)
}
