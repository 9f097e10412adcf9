package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	animresample "github.com/tphakala/go-anim-resampler"
	"github.com/tphakala/go-anim-resampler/trackfile"
)

const (
	// Sample frames read per WAV chunk.
	wavChunkFrames = 16384

	// Sample format constants
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	maxInt24        = 8388607.0
	pcm8Midpoint    = 128
	maxInt32        = 2147483647.0

	progressInterval = 10 // Log progress every N%
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
	sizeInBytes int64
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV format: %s", path)
	}

	var totalFrames int64
	if duration, err := decoder.Duration(); err == nil {
		totalFrames = int64(duration.Seconds() * float64(format.SampleRate))
	}
	var size int64
	if info, err := inputFile.Stat(); err == nil {
		size = info.Size()
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    int(decoder.BitDepth),
		totalFrames: totalFrames,
		format:      format,
		sizeInBytes: size,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// decodeSamples converts interleaved PCM integers to float components in
// dst. 8-bit and 16-bit samples go through the component codec; wider
// depths are scaled by their full range. 8-bit PCM is unsigned and centered
// on 128, so it is shifted to signed before decoding.
func decodeSamples(data []int, dst []float32, bitDepth int) error {
	offset := 0
	if bitDepth == bitsPerSample8 {
		offset = pcm8Midpoint
	}
	for i, s := range data {
		dst[i] = float32(s - offset)
	}

	count := len(data)
	switch bitDepth {
	case bitsPerSample8:
		_, err := animresample.Denormalize(dst, 1, 1, count, animresample.ComponentByte)
		return err
	case bitsPerSample16:
		_, err := animresample.Denormalize(dst, 1, 1, count, animresample.ComponentShort)
		return err
	case bitsPerSample24:
		scaleSamples(dst, 1/maxInt24)
	case bitsPerSample32:
		scaleSamples(dst, 1/maxInt32)
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	return nil
}

func scaleSamples(v []float32, scale float64) {
	for i := range v {
		v[i] = float32(math.Max(float64(v[i])*scale, -1))
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	logger       zerolog.Logger
	totalFrames  int64
	lastProgress int
}

// reportIfNeeded logs progress when another interval has been crossed.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if p.totalFrames == 0 {
		return
	}
	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		p.logger.Debug().Int("percent", progress).Msg("progress")
		p.lastProgress = progress
	}
}

// simplifyWAV streams a WAV file through a keyframe Stream. Sample frame i
// becomes a keyframe at time i/rate whose components are the channels.
func simplifyWAV(path string, cfg *settings, logger zerolog.Logger) (*trackfile.Track, *simplifyStats, error) {
	input, err := openWAVInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = input.Close() }()

	mode := animresample.ModeLinear
	if cfg.modeSet {
		mode = cfg.mode
	}
	logger.Debug().
		Int("rate", input.rate).
		Int("channels", input.channels).
		Int("bitDepth", input.bitDepth).
		Str("mode", mode.String()).
		Msg("input format")

	stream, err := animresample.NewStream[float32](animresample.Config{
		Mode:        mode,
		Size:        input.channels,
		Tolerance:   cfg.tolerance,
		ChunkFrames: cfg.chunk,
		EnableSIMD:  true,
	})
	if err != nil {
		return nil, nil, err
	}

	channels := input.channels
	buf := &audio.IntBuffer{Data: make([]int, wavChunkFrames*channels), Format: input.format}
	frames := make([]float32, wavChunkFrames)
	values := make([]float32, wavChunkFrames*channels)

	track := &trackfile.Track{Mode: mode, Size: channels}
	var src *trackfile.Track
	if cfg.verify {
		src = &trackfile.Track{Mode: mode, Size: channels}
	}
	progress := &progressTracker{logger: logger, totalFrames: input.totalFrames}

	var read int64
	for {
		n, err := input.decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		// n counts samples across all channels.
		count := n / channels
		if count == 0 {
			break
		}

		for i := range count {
			frames[i] = float32(float64(read+int64(i)) / float64(input.rate))
		}
		if err := decodeSamples(buf.Data[:count*channels], values, input.bitDepth); err != nil {
			return nil, nil, err
		}
		if src != nil {
			src.Frames = append(src.Frames, frames[:count]...)
			src.Values = append(src.Values, values[:count*channels]...)
		}

		outFrames, outValues, err := stream.Process(frames[:count], values[:count*channels])
		if err != nil {
			return nil, nil, err
		}
		track.Frames = append(track.Frames, outFrames...)
		track.Values = append(track.Values, outValues...)

		read += int64(count)
		progress.reportIfNeeded(read)
	}

	outFrames, outValues, err := stream.Flush()
	if err != nil {
		return nil, nil, err
	}
	track.Frames = append(track.Frames, outFrames...)
	track.Values = append(track.Values, outValues...)

	stats := &simplifyStats{
		mode:      mode,
		size:      channels,
		framesIn:  int(read),
		framesOut: track.Count(),
		bytesIn:   input.sizeInBytes,
		maxError:  math.NaN(),
	}
	if src != nil && src.Count() > 0 {
		stats.maxError, err = animresample.MaxError(src.Frames, src.Values, track.Frames, track.Values, channels, mode)
		if err != nil {
			return nil, nil, err
		}
	}
	return track, stats, nil
}
