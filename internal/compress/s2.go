package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
)

// s2BlockSize bounds the buffers a reader allocates per block.
const s2BlockSize = 256 << 10

// s2Codec uses the framed stream format, so output grows with the data
// actually decoded rather than with a length read from the input.
type s2Codec struct{}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w := s2.NewWriter(&buf, s2.WriterConcurrency(1), s2.WriterBlockSize(s2BlockSize))
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (s2Codec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return checkSize(nil, size)
	}
	if size > MaxDecodedSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the decode limit", ErrSizeMismatch, size)
	}
	r := s2.NewReader(bytes.NewReader(data), s2.ReaderMaxBlockSize(s2BlockSize))

	// One extra byte detects payloads longer than size.
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	return checkSize(buf.Bytes(), size)
}
