package animresample

import (
	"fmt"

	"github.com/tphakala/go-anim-resampler/internal/codec"
	"github.com/tphakala/go-anim-resampler/internal/engine"
)

// Stream simplifies a track delivered in pieces using a fixed working buffer
// of Config.ChunkFrames keyframes, so memory use does not grow with track
// length.
//
// Process emits keyframes as soon as they are final. The last two retained
// keyframes are carried to the next chunk because they still depend on data
// that has not arrived; Flush emits them. The concatenated output of
// Process calls followed by Flush equals a single Decimate pass over the
// whole track.
//
// Values are packed: value i occupies values[i*Size : (i+1)*Size]. When
// Config.Component is an integer encoding, values are decoded after loading
// into the working buffer and encoded again on output.
//
// A Stream is not safe for concurrent use.
type Stream[F Float] struct {
	cfg       Config
	size      int
	tolerance F
	layout    engine.Layout
	pred      engine.Predicate[F]
	codec     *codec.Codec[F]

	frames  []F
	values  []F
	carried int

	// loaded counts raw keyframes of the current track; prefix is set while
	// the working buffer starts with the track's first raw keyframes.
	loaded int64
	prefix bool

	framesIn  int64
	framesOut int64
	chunks    int64
}

// NewStream creates a stream for the given configuration.
func NewStream[F Float](cfg Config) (*Stream[F], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pred, err := engine.NewPredicate[F](cfg.Mode, cfg.EnableSIMD)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	chunk := cfg.chunkFrames()
	s := &Stream[F]{
		cfg:       cfg,
		size:      cfg.Size,
		tolerance: F(cfg.Tolerance),
		layout:    engine.Layout{FrameStride: 1, Size: cfg.Size, Stride: cfg.Size},
		pred:      pred,
		frames:    make([]F, chunk),
		values:    make([]F, chunk*cfg.Size),
	}
	if cfg.Component != ComponentFloat {
		s.codec = codec.New[F](cfg.EnableSIMD)
	}
	return s, nil
}

// Process consumes the next keyframes of the track and returns the keyframes
// that are now final. The returned slices are newly allocated.
func (s *Stream[F]) Process(frames, values []F) (outFrames, outValues []F, err error) {
	if err := s.checkInput(frames, values); err != nil {
		return nil, nil, err
	}

	outFrames = make([]F, 0, len(frames))
	outValues = make([]F, 0, len(values))
	for read := 0; read < len(frames); {
		n, err := s.load(frames[read:], values[read*s.size:])
		if err != nil {
			return nil, nil, err
		}
		read += n

		ready, err := s.decimate(n, false)
		if err != nil {
			return nil, nil, err
		}
		outFrames, outValues, err = s.appendReady(outFrames, outValues, ready)
		if err != nil {
			return nil, nil, err
		}
		if err := s.carry(); err != nil {
			return nil, nil, err
		}
	}
	return outFrames, outValues, nil
}

// Flush returns the carried keyframes, ending the track. The stream can be
// reused for a new track afterwards.
func (s *Stream[F]) Flush() (outFrames, outValues []F, err error) {
	n := s.carried
	outFrames, outValues, err = s.appendReady(nil, nil, n)
	s.carried = 0
	s.loaded = 0
	return outFrames, outValues, err
}

// Reset discards carried keyframes and clears statistics.
func (s *Stream[F]) Reset() {
	s.carried = 0
	s.loaded = 0
	s.framesIn = 0
	s.framesOut = 0
	s.chunks = 0
}

// Simplify decimates a complete track in place through the stream's working
// buffer and returns the retained prefixes of frames and values. Any carried
// state is discarded first.
//
// The write position never overtakes the read position, so results are
// written back into the caller's slices while reading ahead.
func (s *Stream[F]) Simplify(frames, values []F) (outFrames, outValues []F, err error) {
	if err := s.checkInput(frames, values); err != nil {
		return nil, nil, err
	}
	s.carried = 0
	s.loaded = 0

	count := len(frames)
	write := 0
	for read := 0; read < count; {
		n, err := s.load(frames[read:], values[read*s.size:])
		if err != nil {
			return nil, nil, err
		}
		read += n
		last := read == count

		ready, err := s.decimate(n, last)
		if err != nil {
			return nil, nil, err
		}
		if err := s.writeReady(frames[write:], values[write*s.size:], ready); err != nil {
			return nil, nil, err
		}
		write += ready
		if last {
			break
		}
		if err := s.carry(); err != nil {
			return nil, nil, err
		}
	}
	s.carried = 0
	s.loaded = 0
	return frames[:write], values[:write*s.size], nil
}

// GetStatistics returns processing statistics.
func (s *Stream[F]) GetStatistics() map[string]int64 {
	return map[string]int64{
		"framesIn":  s.framesIn,
		"framesOut": s.framesOut,
		"chunks":    s.chunks,
	}
}

// Config returns the stream configuration.
func (s *Stream[F]) Config() Config {
	return s.cfg
}

func (s *Stream[F]) checkInput(frames, values []F) error {
	need := len(frames) * s.size
	if len(values) < need {
		return fmt.Errorf("%w: %d keyframes of size %d need %d values, have %d",
			ErrBufferTooSmall, len(frames), s.size, need, len(values))
	}
	if len(values) > need {
		return fmt.Errorf("%w: %d values for %d keyframes of size %d",
			ErrMalformedLayout, len(values), len(frames), s.size)
	}
	return nil
}

// load copies as many raw keyframes as fit behind the carried ones and
// decodes them when values are normalized.
func (s *Stream[F]) load(frames, values []F) (int, error) {
	n := min(len(s.frames)-s.carried, len(frames))
	copy(s.frames[s.carried:], frames[:n])
	dst := s.values[s.carried*s.size : (s.carried+n)*s.size]
	copy(dst, values[:n*s.size])
	if s.codec != nil {
		if _, err := s.codec.Denormalize(dst, s.size, s.size, n, s.cfg.Component); err != nil {
			return 0, err
		}
	}
	s.prefix = s.loaded == int64(s.carried)
	s.loaded += int64(n)
	s.framesIn += int64(n)
	return n, nil
}

// decimate runs one pass over the carried and n new keyframes. It returns
// how many leading keyframes are final: all of them when last is set,
// otherwise all but the carry.
func (s *Stream[F]) decimate(n int, last bool) (int, error) {
	pass := engine.DecimateCarried[F]
	if s.prefix {
		pass = engine.Decimate[F]
	}
	kept, err := pass(s.frames, s.values, s.layout, s.carried+n, s.tolerance, s.pred)
	if err != nil {
		return 0, err
	}
	s.chunks++
	s.carried = kept
	if last {
		return kept, nil
	}
	return kept - min(kept, streamCarry), nil
}

// carry moves the unfinished tail of the working buffer to its front.
func (s *Stream[F]) carry() error {
	carried, err := engine.Continue(s.frames, s.values, s.layout, s.carried)
	if err != nil {
		return err
	}
	s.carried = carried
	return nil
}

func (s *Stream[F]) appendReady(frames, values []F, n int) ([]F, []F, error) {
	start := len(values)
	frames = append(frames, s.frames[:n]...)
	values = append(values, s.values[:n*s.size]...)
	if s.codec != nil {
		if _, err := s.codec.Normalize(values[start:], s.size, s.size, n, s.cfg.Component); err != nil {
			return nil, nil, err
		}
	}
	s.framesOut += int64(n)
	return frames, values, nil
}

func (s *Stream[F]) writeReady(frames, values []F, n int) error {
	copy(frames, s.frames[:n])
	dst := values[:n*s.size]
	copy(dst, s.values[:n*s.size])
	if s.codec != nil {
		if _, err := s.codec.Normalize(dst, s.size, s.size, n, s.cfg.Component); err != nil {
			return err
		}
	}
	s.framesOut += int64(n)
	return nil
}

// Simplify decimates a complete packed track in place with a bounded working
// buffer and returns the retained prefixes of frames and values.
func Simplify[F Float](cfg Config, frames, values []F) (outFrames, outValues []F, err error) {
	s, err := NewStream[F](cfg)
	if err != nil {
		return nil, nil, err
	}
	return s.Simplify(frames, values)
}
