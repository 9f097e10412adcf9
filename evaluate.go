package animresample

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-anim-resampler/internal/engine"
)

// Evaluate samples a packed track at time t into dst (len(dst) >= size).
// Times before the first or after the last keyframe clamp to the end values.
// Frames must be sorted in non-decreasing order.
func Evaluate[F Float](frames, values []F, size int, mode Mode, t F, dst []F) error {
	p, err := engine.NewPredicate[F](mode, true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := checkTrack(frames, values, size, p); err != nil {
		return err
	}
	if len(dst) < size {
		return fmt.Errorf("%w: dst holds %d of %d components", ErrBufferTooSmall, len(dst), size)
	}
	evaluate(frames, values, size, p, t, dst[:size])
	return nil
}

// MaxError returns the largest L-infinity deviation between a source track
// and its simplified version, measured at every source keyframe time.
// A NaN on either side yields NaN.
func MaxError[F Float](srcFrames, srcValues, frames, values []F, size int, mode Mode) (float64, error) {
	p, err := engine.NewPredicate[F](mode, true)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := checkTrack(srcFrames, srcValues, size, p); err != nil {
		return 0, err
	}
	if err := checkTrack(frames, values, size, p); err != nil {
		return 0, err
	}

	sample := make([]F, size)
	want := make([]float64, size)
	got := make([]float64, size)
	var maxErr float64
	for i, t := range srcFrames {
		evaluate(frames, values, size, p, t, sample)
		for c := range size {
			want[c] = float64(srcValues[i*size+c])
			got[c] = float64(sample[c])
		}
		if floats.HasNaN(want) || floats.HasNaN(got) {
			return math.NaN(), nil
		}
		maxErr = math.Max(maxErr, floats.Distance(want, got, math.Inf(1)))
	}
	return maxErr, nil
}

func checkTrack[F Float](frames, values []F, size int, p engine.Predicate[F]) error {
	if size < 1 {
		return fmt.Errorf("%w: size must be at least 1", ErrMalformedLayout)
	}
	if w := p.Width(); w != 0 && w != size {
		return fmt.Errorf("%w: mode needs value size %d, got %d", ErrMalformedLayout, w, size)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: empty track", ErrBufferTooSmall)
	}
	if len(values) < len(frames)*size {
		return fmt.Errorf("%w: %d keyframes of size %d need %d values, have %d",
			ErrBufferTooSmall, len(frames), size, len(frames)*size, len(values))
	}
	return nil
}

func evaluate[F Float](frames, values []F, size int, p engine.Predicate[F], t F, dst []F) {
	value := func(i int) []F {
		return values[i*size : (i+1)*size]
	}

	// First keyframe strictly after t.
	next := sort.Search(len(frames), func(i int) bool { return frames[i] > t })
	switch next {
	case 0:
		copy(dst, value(0))
		return
	case len(frames):
		copy(dst, value(len(frames)-1))
		return
	}

	prev := next - 1
	u := (t - frames[prev]) / (frames[next] - frames[prev])
	p.Interpolate(dst, value(prev), value(next), u)
}
