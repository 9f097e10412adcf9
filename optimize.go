package animresample

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TargetPath names the animated property of a channel.
type TargetPath string

// Animated properties.
const (
	PathTranslation TargetPath = "translation"
	PathRotation    TargetPath = "rotation"
	PathScale       TargetPath = "scale"
	PathWeights     TargetPath = "weights"
)

// Interpolation names the sampler interpolation of a channel.
type Interpolation string

// Sampler interpolations.
const (
	InterpolationStep        Interpolation = "STEP"
	InterpolationLinear      Interpolation = "LINEAR"
	InterpolationCubicSpline Interpolation = "CUBICSPLINE"
)

// Channel is one animated property: packed keyframe times and values.
// Rotations are unit quaternions (x, y, z, w).
type Channel[F Float] struct {
	Name          string
	Path          TargetPath
	Interpolation Interpolation
	Frames        []F
	Values        []F

	// Component is the encoding of Values. Normalized channels are decoded
	// for comparison and written back encoded.
	Component ComponentType
}

// OptimizeOptions configures Optimize.
type OptimizeOptions struct {
	// Tolerance is the L-infinity tolerance. Zero means DefaultTolerance
	// unless Lossless is set.
	Tolerance float64

	// Lossless forces a zero tolerance: only keyframes that interpolation
	// reproduces exactly are removed.
	Lossless bool

	// Weights enables optimizing morph target weight channels.
	Weights bool

	// Parallel processes channels concurrently.
	Parallel bool

	// Workers bounds concurrent channels when Parallel is set.
	// Zero means a small default.
	Workers int

	// ChunkFrames bounds working memory per channel. Zero means the default.
	ChunkFrames int

	// EnableSIMD allows the use of SIMD kernels when available.
	EnableSIMD bool

	// Logger receives skip notices. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptimizeOptions returns the default options:
// float32 epsilon tolerance, weights untouched, SIMD enabled.
func DefaultOptimizeOptions() OptimizeOptions {
	return OptimizeOptions{
		Tolerance:  DefaultTolerance,
		EnableSIMD: true,
	}
}

// Stats summarizes an Optimize run.
type Stats struct {
	// Channels is the number of channels that were decimated.
	Channels int

	// Skipped is the number of channels left untouched.
	Skipped int

	// FramesBefore and FramesAfter count keyframes of decimated channels.
	FramesBefore int
	FramesAfter  int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Channels += o.Channels
	s.Skipped += o.Skipped
	s.FramesBefore += o.FramesBefore
	s.FramesAfter += o.FramesAfter
}

// Optimize removes redundant keyframes from every supported channel.
//
// STEP channels use step decimation; LINEAR rotations use slerp and other
// LINEAR channels use lerp. CUBICSPLINE channels, weight channels (unless
// opts.Weights is set) and channels whose value count is not a whole
// multiple of the keyframe count are skipped and logged. A channel's slices
// are replaced by truncated prefixes only when keyframes were removed.
//
// Channels are decimated in place and must not share backing arrays.
// Cancellation is checked between channels.
func Optimize[F Float](ctx context.Context, channels []*Channel[F], opts OptimizeOptions) (Stats, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	switch {
	case opts.Lossless:
		opts.Tolerance = 0
	case opts.Tolerance == 0:
		opts.Tolerance = DefaultTolerance
	}

	results := make([]Stats, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel {
		workers := opts.Workers
		if workers <= 0 {
			workers = maxParallelChannels
		}
		g.SetLimit(workers)
	} else {
		g.SetLimit(1)
	}

	for i, ch := range channels {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := optimizeChannel(ch, opts, logger)
			if err != nil {
				return fmt.Errorf("channel %q: %w", ch.Name, err)
			}
			results[i] = st
			return nil
		})
	}

	var total Stats
	if err := g.Wait(); err != nil {
		return total, err
	}
	if err := ctx.Err(); err != nil {
		return total, err
	}
	for _, st := range results {
		total.Add(st)
	}

	logger.Debug().
		Int("channels", total.Channels).
		Int("skipped", total.Skipped).
		Int("framesBefore", total.FramesBefore).
		Int("framesAfter", total.FramesAfter).
		Msg("optimize complete")
	return total, nil
}

func optimizeChannel[F Float](ch *Channel[F], opts OptimizeOptions, logger zerolog.Logger) (Stats, error) {
	skipped := Stats{Skipped: 1}
	log := logger.With().Str("channel", ch.Name).Str("path", string(ch.Path)).Logger()

	if ch.Path == PathWeights && !opts.Weights {
		log.Debug().Msg("skipped morph target weights")
		return skipped, nil
	}

	var mode Mode
	switch ch.Interpolation {
	case InterpolationStep:
		mode = ModeStep
	case InterpolationLinear:
		mode = ModeLinear
		if ch.Path == PathRotation {
			mode = ModeSpherical
		}
	default:
		log.Debug().Str("interpolation", string(ch.Interpolation)).Msg("skipped unsupported interpolation")
		return skipped, nil
	}

	count := len(ch.Frames)
	if count == 0 || len(ch.Values)%count != 0 {
		log.Warn().
			Int("frames", count).
			Int("values", len(ch.Values)).
			Str("interpolation", string(ch.Interpolation)).
			Msg("skipped channel with unsupported element size")
		return skipped, nil
	}
	size := len(ch.Values) / count

	cfg := Config{
		Mode:        mode,
		Size:        size,
		Tolerance:   opts.Tolerance,
		ChunkFrames: opts.ChunkFrames,
		Component:   ch.Component,
		EnableSIMD:  opts.EnableSIMD,
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Int("size", size).Msg("skipped channel with unsupported layout")
		return skipped, nil
	}

	frames, values, err := Simplify(cfg, ch.Frames, ch.Values)
	if err != nil {
		return Stats{}, err
	}
	if len(frames) != count {
		ch.Frames = frames
		ch.Values = values
	}

	return Stats{
		Channels:     1,
		FramesBefore: count,
		FramesAfter:  len(frames),
	}, nil
}
