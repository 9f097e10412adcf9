// Package trackfile stores one keyframe track in a compact binary container:
// a fixed little-endian header followed by an optionally compressed payload
// of float32 times and float32 or quantized values.
//
// Header layout (28 bytes):
//
//	0  magic "AKF1"
//	4  version        u8
//	5  mode           u8
//	6  compression    u8
//	7  reserved       u8
//	8  size           u16
//	10 component      u16
//	12 count          u32
//	16 raw length     u32
//	20 xxhash64(raw)  u64
package trackfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"

	animresample "github.com/tphakala/go-anim-resampler"
	"github.com/tphakala/go-anim-resampler/internal/codec"
	"github.com/tphakala/go-anim-resampler/internal/compress"
)

const (
	// Magic identifies a track container.
	Magic = "AKF1"

	// Version is the container version written by Encode.
	Version = 1

	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 28

	// maxPayload bounds the decompressed payload accepted by Decode.
	maxPayload = compress.MaxDecodedSize

	timeBytes = 4
)

// Compression selects the payload codec.
type Compression = compress.Type

// Payload codecs.
const (
	CompressionNone = compress.None
	CompressionZstd = compress.Zstd
	CompressionS2   = compress.S2
	CompressionLZ4  = compress.LZ4
)

// ParseCompression maps a codec name (none, zstd, s2, lz4) to its Compression.
func ParseCompression(name string) (Compression, error) {
	return compress.Parse(name)
}

var (
	// ErrCorrupt indicates a malformed header or an undecodable payload.
	ErrCorrupt = errors.New("trackfile: corrupt container")

	// ErrChecksum indicates a payload whose checksum does not match the header.
	ErrChecksum = errors.New("trackfile: payload checksum mismatch")

	// ErrInvalidTrack indicates a track that cannot be encoded.
	ErrInvalidTrack = errors.New("trackfile: invalid track")
)

// Track is a single animation channel. Values always hold float components;
// Component selects how they are quantized on disk.
type Track struct {
	Mode      animresample.Mode
	Size      int
	Component animresample.ComponentType
	Frames    []float32
	Values    []float32
}

// Count returns the number of keyframes.
func (t *Track) Count() int {
	return len(t.Frames)
}

// Validate checks the track's shape.
func (t *Track) Validate() error {
	cfg := animresample.Config{Mode: t.Mode, Size: t.Size, Component: t.Component}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	if t.Size > math.MaxUint16 {
		return fmt.Errorf("%w: size %d exceeds %d", ErrInvalidTrack, t.Size, math.MaxUint16)
	}
	if len(t.Values) != len(t.Frames)*t.Size {
		return fmt.Errorf("%w: %d keyframes of size %d need %d values, have %d",
			ErrInvalidTrack, len(t.Frames), t.Size, len(t.Frames)*t.Size, len(t.Values))
	}
	if payloadLen(len(t.Frames), t.Size, t.Component) > maxPayload {
		return fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidTrack, maxPayload)
	}
	return nil
}

// Simplify drops redundant keyframes from the track in place using the
// track's own mode.
func (t *Track) Simplify(tolerance float64, chunkFrames int) error {
	if err := t.Validate(); err != nil {
		return err
	}
	cfg := animresample.Config{
		Mode:        t.Mode,
		Size:        t.Size,
		Tolerance:   tolerance,
		ChunkFrames: chunkFrames,
		EnableSIMD:  true,
	}
	frames, values, err := animresample.Simplify(cfg, t.Frames, t.Values)
	if err != nil {
		return err
	}
	t.Frames, t.Values = frames, values
	return nil
}

// Options controls encoding.
type Options struct {
	Compression Compression
}

type header struct {
	version     uint8
	mode        uint8
	compression uint8
	size        uint16
	component   uint16
	count       uint32
	rawLen      uint32
	checksum    uint64
}

func (h *header) bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Magic...)
	b = append(b, h.version, h.mode, h.compression, 0)
	b = binary.LittleEndian.AppendUint16(b, h.size)
	b = binary.LittleEndian.AppendUint16(b, h.component)
	b = binary.LittleEndian.AppendUint32(b, h.count)
	b = binary.LittleEndian.AppendUint32(b, h.rawLen)
	b = binary.LittleEndian.AppendUint64(b, h.checksum)
	return b
}

func parseHeader(b []byte) (header, error) {
	if len(b) != HeaderSize || string(b[:4]) != Magic {
		return header{}, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	h := header{
		version:     b[4],
		mode:        b[5],
		compression: b[6],
		size:        binary.LittleEndian.Uint16(b[8:10]),
		component:   binary.LittleEndian.Uint16(b[10:12]),
		count:       binary.LittleEndian.Uint32(b[12:16]),
		rawLen:      binary.LittleEndian.Uint32(b[16:20]),
		checksum:    binary.LittleEndian.Uint64(b[20:28]),
	}
	if h.version != Version {
		return header{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.version)
	}

	ct := codec.ComponentType(h.component)
	if ct != codec.Float && !ct.Valid() {
		return header{}, fmt.Errorf("%w: component type %d", ErrCorrupt, h.component)
	}
	if h.size == 0 {
		return header{}, fmt.Errorf("%w: zero value size", ErrCorrupt)
	}
	want := payloadLen(int(h.count), int(h.size), ct)
	if want > maxPayload || int64(h.rawLen) != want {
		return header{}, fmt.Errorf("%w: payload length %d, layout needs %d", ErrCorrupt, h.rawLen, want)
	}
	return h, nil
}

func payloadLen(count, size int, ct codec.ComponentType) int64 {
	return int64(count)*timeBytes + int64(count)*int64(size)*int64(ct.ByteSize())
}

// Encode writes t to w.
func Encode(w io.Writer, t *Track, opts Options) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c, err := compress.Get(opts.Compression)
	if err != nil {
		return err
	}

	raw, err := marshalPayload(t)
	if err != nil {
		return err
	}
	body, err := c.Compress(raw)
	if err != nil {
		return fmt.Errorf("trackfile: compress %s: %w", opts.Compression, err)
	}

	h := header{
		version:     Version,
		mode:        uint8(t.Mode),
		compression: uint8(opts.Compression),
		size:        uint16(t.Size),
		component:   uint16(t.Component),
		count:       uint32(len(t.Frames)),
		rawLen:      uint32(len(raw)),
		checksum:    xxhash.Sum64(raw),
	}
	if _, err := w.Write(h.bytes()); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Decode reads a track from r, consuming it to EOF. Quantized values are
// decoded back to floats.
func Decode(r io.Reader) (*Track, error) {
	hb := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hb); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header", ErrCorrupt)
		}
		return nil, err
	}
	h, err := parseHeader(hb)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	c, err := compress.Get(compress.Type(h.compression))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	raw, err := c.Decompress(body, int(h.rawLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if xxhash.Sum64(raw) != h.checksum {
		return nil, ErrChecksum
	}

	t := &Track{
		Mode:      animresample.Mode(h.mode),
		Size:      int(h.size),
		Component: codec.ComponentType(h.component),
	}
	if err := unmarshalPayload(t, raw, int(h.count)); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return t, nil
}
