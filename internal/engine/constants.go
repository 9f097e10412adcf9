package engine

import "github.com/tphakala/go-anim-resampler/internal/codec"

// Interpolation block width. Lerp predicates on wide values compare
// components in blocks of this size using a stack scratch buffer.
const blockWidth = 4

// Maximum number of keyframes carried between stream chunks.
const maxCarry = 2

// Errors shared with the codec so errors.Is matches across layers.
var (
	// ErrMalformedLayout indicates an invalid size/stride combination.
	ErrMalformedLayout = codec.ErrMalformedLayout

	// ErrBufferTooSmall indicates a buffer shorter than its declared layout.
	ErrBufferTooSmall = codec.ErrBufferTooSmall
)
