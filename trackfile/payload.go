package trackfile

import (
	"encoding/binary"
	"math"

	"github.com/tphakala/go-anim-resampler/internal/codec"
)

// marshalPayload lays out times then values. Quantized values are normalized
// to integer codes, saturated to the encoding's range and narrowed.
func marshalPayload(t *Track) ([]byte, error) {
	ct := t.Component
	count := len(t.Frames)
	raw := make([]byte, 0, payloadLen(count, t.Size, ct))

	for _, f := range t.Frames {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(f))
	}

	if ct == codec.Float {
		for _, v := range t.Values {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
		}
		return raw, nil
	}

	codes := make([]float32, len(t.Values))
	copy(codes, t.Values)
	if _, err := codec.New[float32](true).Normalize(codes, t.Size, t.Size, count, ct); err != nil {
		return nil, err
	}

	lo, hi := ct.Bounds()
	for _, v := range codes {
		q := saturate(v, lo, hi)
		switch ct {
		case codec.Byte:
			raw = append(raw, byte(int8(q)))
		case codec.UnsignedByte:
			raw = append(raw, byte(q))
		case codec.Short:
			raw = binary.LittleEndian.AppendUint16(raw, uint16(int16(q)))
		case codec.UnsignedShort:
			raw = binary.LittleEndian.AppendUint16(raw, uint16(q))
		}
	}
	return raw, nil
}

// saturate clamps a rounded code to [lo, hi]. NaN encodes as 0.
func saturate(v float32, lo, hi int) int {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v <= float32(lo):
		return lo
	case v >= float32(hi):
		return hi
	default:
		return int(v)
	}
}

func unmarshalPayload(t *Track, raw []byte, count int) error {
	t.Frames = make([]float32, count)
	for i := range t.Frames {
		t.Frames[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*timeBytes:]))
	}
	raw = raw[count*timeBytes:]

	ct := t.Component
	t.Values = make([]float32, count*t.Size)
	if ct == codec.Float {
		for i := range t.Values {
			t.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return nil
	}

	for i := range t.Values {
		switch ct {
		case codec.Byte:
			t.Values[i] = float32(int8(raw[i]))
		case codec.UnsignedByte:
			t.Values[i] = float32(raw[i])
		case codec.Short:
			t.Values[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		case codec.UnsignedShort:
			t.Values[i] = float32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	}
	_, err := codec.New[float32](true).Denormalize(t.Values, t.Size, t.Size, count, ct)
	return err
}
