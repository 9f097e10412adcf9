package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	animresample "github.com/tphakala/go-anim-resampler"
)

const testRate = 8000

// writeTestWAV writes interleaved PCM samples to a new WAV file.
func writeTestWAV(t *testing.T, path string, bitDepth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	enc := wav.NewEncoder(f, testRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: testRate},
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

// plateauSamples returns stereo 16-bit frames holding two constant levels.
func plateauSamples() []int {
	data := make([]int, 0, 400)
	for range 100 {
		data = append(data, 1000, -1000)
	}
	for range 100 {
		data = append(data, 2000, 0)
	}
	return data
}

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	invalidFile := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := openWAVInput(invalidFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenWAVInput_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 16, 2, plateauSamples())

	input, err := openWAVInput(path)
	require.NoError(t, err)
	defer func() { _ = input.Close() }()

	assert.Equal(t, testRate, input.rate)
	assert.Equal(t, 2, input.channels)
	assert.Equal(t, 16, input.bitDepth)
	assert.Positive(t, input.sizeInBytes)
}

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		data     []int
		want     []float32
	}{
		{"8-bit unsigned", 8, []int{0, 128, 255}, []float32{-1, 0, 1}},
		{"8-bit silence", 8, []int{128, 128}, []float32{0, 0}},
		{"16-bit", 16, []int{32767, -32768, 0}, []float32{1, -1, 0}},
		{"24-bit", 24, []int{8388607, -8388608}, []float32{1, -1}},
		{"32-bit", 32, []int{2147483647, 0}, []float32{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float32, len(tt.data))
			require.NoError(t, decodeSamples(tt.data, dst, tt.bitDepth))
			assert.InDeltaSlice(t, tt.want, dst, 1e-6)
		})
	}

	err := decodeSamples([]int{1}, make([]float32, 1), 12)
	require.Error(t, err)
}

func TestSimplifyWAV_Plateaus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 16, 2, plateauSamples())

	for _, chunk := range []int{3, 64, animresample.DefaultChunkFrames} {
		cfg := &settings{tolerance: 0, chunk: chunk, verify: true}
		track, stats, err := simplifyWAV(path, cfg, zerolog.Nop())
		require.NoError(t, err)

		assert.Equal(t, animresample.ModeLinear, track.Mode, "WAV input defaults to lerp")
		assert.Equal(t, 2, track.Size)
		assert.Equal(t, 200, stats.framesIn)
		assert.Equal(t, 4, stats.framesOut)
		assert.InDeltaSlice(t,
			[]float32{0, 99.0 / testRate, 100.0 / testRate, 199.0 / testRate},
			track.Frames, 1e-9, "chunk=%d", chunk)
		assert.InDeltaSlice(t,
			[]float32{1000.0 / 32767, -1000.0 / 32767, 1000.0 / 32767, -1000.0 / 32767,
				2000.0 / 32767, 0, 2000.0 / 32767, 0},
			track.Values, 1e-6)
		assert.InDelta(t, 0.0, stats.maxError, 1e-6)
	}
}

func TestSimplifyWAV_QuaternionModeNeedsFourChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 16, 2, plateauSamples())

	cfg := &settings{mode: animresample.ModeSpherical, modeSet: true, chunk: 64}
	_, _, err := simplifyWAV(path, cfg, zerolog.Nop())
	require.ErrorIs(t, err, animresample.ErrInvalidConfig)
}

func TestProgressTracker(t *testing.T) {
	p := &progressTracker{logger: zerolog.Nop(), totalFrames: 100}
	p.reportIfNeeded(5)
	assert.Zero(t, p.lastProgress)
	p.reportIfNeeded(25)
	assert.Equal(t, 25, p.lastProgress)

	idle := &progressTracker{logger: zerolog.Nop()}
	idle.reportIfNeeded(50)
	assert.Zero(t, idle.lastProgress)
}
