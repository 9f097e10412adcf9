// Command anim-resample simplifies keyframe tracks by dropping keyframes that
// interpolation reconstructs within a tolerance.
//
// Usage:
//
//	anim-resample input.akf output.akf
//	anim-resample -tolerance 1e-4 -compress lz4 input.akf output.akf
//	anim-resample -wav -mode step -quantize short take.wav take.akf
//	anim-resample -config defaults.yaml -verify input.akf output.akf
//
// WAV input is read in chunks and simplified by a bounded-memory stream, so
// arbitrarily long recordings can be processed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	animresample "github.com/tphakala/go-anim-resampler"
	"github.com/tphakala/go-anim-resampler/trackfile"
)

const (
	minRequiredArgs = 2
	percentScale    = 100

	defaultCompress = "zstd"
	defaultQuantize = "none"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "anim-resample:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	wav        bool
	mode       string
	tolerance  float64
	chunk      int
	quantize   string
	compress   string
	verify     bool
	verbose    bool
	configPath string
	cpuprofile string
}

// simplifyStats summarizes one run.
type simplifyStats struct {
	mode      animresample.Mode
	size      int
	framesIn  int
	framesOut int
	bytesIn   int64
	bytesOut  int64
	maxError  float64
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("anim-resample", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.BoolVar(&opts.wav, "wav", false, "Read input as WAV audio: one keyframe per sample frame, one component per channel")
	fs.StringVar(&opts.mode, "mode", "", "Interpolation: step, lerp, slerp, nlerp (default: the track's mode, lerp for WAV)")
	fs.Float64Var(&opts.tolerance, "tolerance", animresample.DefaultTolerance, "Maximum per-component deviation")
	fs.IntVar(&opts.chunk, "chunk", animresample.DefaultChunkFrames, "Working buffer size in keyframes (minimum 3)")
	fs.StringVar(&opts.quantize, "quantize", defaultQuantize, "Stored value encoding: none, byte, ubyte, short, ushort")
	fs.StringVar(&opts.compress, "compress", defaultCompress, "Payload compression: none, zstd, s2, lz4")
	fs.BoolVar(&opts.verify, "verify", false, "Report the maximum reconstruction error")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.StringVar(&opts.configPath, "config", "", "YAML file with default flag values")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "Write CPU profile to file (for PGO)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: anim-resample [options] input output.akf\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  anim-resample walk.akf walk_min.akf                 # Lossless for float32 data\n")
		fmt.Fprintf(stderr, "  anim-resample -tolerance 1e-3 walk.akf walk_min.akf # Lossy simplification\n")
		fmt.Fprintf(stderr, "  anim-resample -wav -quantize short mocap.wav out.akf\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.configPath != "" {
		fc, err := loadConfigFile(opts.configPath)
		if err != nil {
			return err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		fc.apply(&opts, set)
	}

	if fs.NArg() < minRequiredArgs {
		fs.Usage()
		return errors.New("insufficient arguments")
	}
	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, opts.verbose)

	// Start CPU profiling if requested (for PGO)
	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	logger.Debug().
		Str("input", inputPath).
		Str("output", outputPath).
		Float64("tolerance", cfg.tolerance).
		Int("chunk", cfg.chunk).
		Str("quantize", cfg.component.String()).
		Str("compress", cfg.compression.String()).
		Str("simd", animresample.SIMDInfo()).
		Msg("starting")

	start := time.Now()
	var (
		track *trackfile.Track
		stats *simplifyStats
	)
	if opts.wav {
		track, stats, err = simplifyWAV(inputPath, cfg, logger)
	} else {
		track, stats, err = simplifyContainer(inputPath, cfg)
	}
	if err != nil {
		return err
	}

	track.Component = cfg.component
	stats.bytesOut, err = writeTrack(outputPath, track, cfg.compression)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Print summary
	fmt.Fprintf(stdout, "Simplified %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Fprintf(stdout, "  %s, %d components, tolerance %g\n", stats.mode, stats.size, cfg.tolerance)
	fmt.Fprintf(stdout, "  %d keyframes -> %d keyframes (%.1f%%)\n",
		stats.framesIn, stats.framesOut, ratio(stats.framesOut, stats.framesIn))
	fmt.Fprintf(stdout, "  %d bytes -> %d bytes (%s, %s)\n",
		stats.bytesIn, stats.bytesOut, cfg.compression, cfg.component)
	if cfg.verify {
		fmt.Fprintf(stdout, "  Max error: %g\n", stats.maxError)
	}
	fmt.Fprintf(stdout, "  Duration: %.2fs\n", elapsed.Seconds())

	return nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * percentScale
}

// simplifyContainer reads a track container and simplifies it in place.
func simplifyContainer(path string, cfg *settings) (*trackfile.Track, *simplifyStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	track, err := trackfile.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read track %s: %w", path, err)
	}
	if cfg.modeSet {
		track.Mode = cfg.mode
	}

	stats := &simplifyStats{
		mode:     track.Mode,
		size:     track.Size,
		framesIn: track.Count(),
		bytesIn:  info.Size(),
		maxError: math.NaN(),
	}

	var src *trackfile.Track
	if cfg.verify {
		src = &trackfile.Track{
			Frames: append([]float32(nil), track.Frames...),
			Values: append([]float32(nil), track.Values...),
		}
	}
	if err := track.Simplify(cfg.tolerance, cfg.chunk); err != nil {
		return nil, nil, err
	}
	stats.framesOut = track.Count()

	if src != nil && src.Count() > 0 {
		stats.maxError, err = animresample.MaxError(src.Frames, src.Values, track.Frames, track.Values, track.Size, track.Mode)
		if err != nil {
			return nil, nil, err
		}
	}
	return track, stats, nil
}

// writeTrack encodes track to path and returns the file size.
func writeTrack(path string, track *trackfile.Track, compression trackfile.Compression) (n int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	cw := &countingWriter{w: f}
	if err := trackfile.Encode(cw, track, trackfile.Options{Compression: compression}); err != nil {
		return 0, fmt.Errorf("failed to write track: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
