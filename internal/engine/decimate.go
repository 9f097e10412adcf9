package engine

import (
	"fmt"

	"github.com/tphakala/go-anim-resampler/internal/simdops"
)

// Layout describes how keyframes are laid out in caller buffers.
type Layout struct {
	// FrameStride is the element distance between consecutive times.
	FrameStride int

	// Size is the number of components per value.
	Size int

	// Stride is the element distance between consecutive values (>= Size).
	Stride int
}

// Check validates the layout for count keyframes against the buffer lengths.
func (l Layout) Check(frames, values, count int) error {
	if l.Size < 1 || l.Stride < l.Size || l.FrameStride < 1 {
		return fmt.Errorf("%w: frameStride=%d size=%d stride=%d",
			ErrMalformedLayout, l.FrameStride, l.Size, l.Stride)
	}
	if count <= 0 {
		return nil
	}
	if need := (count-1)*l.FrameStride + 1; frames < need {
		return fmt.Errorf("%w: frames need %d elements, have %d", ErrBufferTooSmall, need, frames)
	}
	if need := (count-1)*l.Stride + l.Size; values < need {
		return fmt.Errorf("%w: values need %d elements, have %d", ErrBufferTooSmall, need, values)
	}
	return nil
}

// Decimate removes redundant interior keyframes from the first count
// keyframes of frames/values in place and returns the new count.
//
// The first and last keyframes are always retained and keyframe order is
// preserved. Keyframe i is evaluated against the last retained keyframe and
// raw keyframe i+1. When time[i] == time[i+1], or when i == 1 and time[1]
// equals the first time, the predicate is skipped and the keyframe is dropped.
// Entries past the returned count hold stale data.
//
// count == 0 is a no-op returning 0. An invalid layout returns
// ErrMalformedLayout (or ErrBufferTooSmall) without touching the buffers.
func Decimate[F simdops.Float](
	frames []F, values []F, layout Layout,
	count int, tolerance F, p Predicate[F],
) (int, error) {
	return decimate(frames, values, layout, count, tolerance, p, true)
}

// DecimateCarried is Decimate for a working buffer whose first two keyframes
// were carried over by Continue. Keyframe 1 is then not the second keyframe
// of the track, so the leading time tie rule does not apply to it.
func DecimateCarried[F simdops.Float](
	frames []F, values []F, layout Layout,
	count int, tolerance F, p Predicate[F],
) (int, error) {
	return decimate(frames, values, layout, count, tolerance, p, false)
}

func decimate[F simdops.Float](
	frames []F, values []F, layout Layout,
	count int, tolerance F, p Predicate[F], leadingTie bool,
) (int, error) {
	if count == 0 {
		return 0, nil
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrMalformedLayout, count)
	}
	if err := layout.Check(len(frames), len(values), count); err != nil {
		return 0, err
	}
	if w := p.Width(); w != 0 && layout.Size != w {
		return 0, fmt.Errorf("%w: predicate needs value size %d, got %d", ErrMalformedLayout, w, layout.Size)
	}

	fs, size, stride := layout.FrameStride, layout.Size, layout.Stride
	value := func(i int) []F {
		return values[i*stride : i*stride+size]
	}

	firstTime := frames[0]
	timed := p.Timed()
	write := 1
	last := count - 1

	for i := 1; i < last; i++ {
		time := frames[i*fs]
		timeNext := frames[(i+1)*fs]

		keep := false
		if time != timeNext && (!leadingTie || i != 1 || time != firstTime) {
			var t F
			if timed {
				timePrev := frames[(write-1)*fs]
				t = (time - timePrev) / (timeNext - timePrev)
			}
			keep = p.Keep(value(write-1), value(i), value(i+1), t, tolerance)
		}

		if keep {
			if i != write {
				frames[write*fs] = time
				copy(value(write), value(i))
			}
			write++
		}
	}

	// The loop looks one keyframe ahead, so the last one is flushed here.
	if last > 0 {
		frames[write*fs] = frames[last*fs]
		copy(value(write), value(last))
		write++
	}

	return write, nil
}
