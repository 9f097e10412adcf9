package engine

import (
	"fmt"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// Continue prepares buffers for the next chunk of a stream. It copies the
// last min(count, 2) of count already-decimated keyframes to the front of the
// buffers, preserving their order, and returns how many were carried.
//
// The caller appends new raw keyframes right after the carried ones and
// calls Decimate on the combined run. The carried pair supplies the retained
// predecessor and the unfinished boundary keyframe that a chunk cannot
// finalize without lookahead.
func Continue[F simdops.Float](frames []F, values []F, layout Layout, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrMalformedLayout, count)
	}
	if err := layout.Check(len(frames), len(values), count); err != nil {
		return 0, err
	}

	carry := min(count, maxCarry)
	offset := count - carry
	if offset == 0 {
		return carry, nil
	}

	fs, size, stride := layout.FrameStride, layout.Size, layout.Stride
	for i := range carry {
		src := offset + i
		frames[i*fs] = frames[src*fs]
		copy(values[i*stride:i*stride+size], values[src*stride:src*stride+size])
	}
	return carry, nil
}
