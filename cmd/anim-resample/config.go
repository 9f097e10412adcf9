package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	animresample "github.com/tphakala/go-anim-resampler"
	"github.com/tphakala/go-anim-resampler/trackfile"
)

// fileConfig holds flag defaults loaded with -config. Flags given on the
// command line take precedence.
type fileConfig struct {
	Mode      string   `yaml:"mode"`
	Tolerance *float64 `yaml:"tolerance"`
	Chunk     int      `yaml:"chunk"`
	Quantize  string   `yaml:"quantize"`
	Compress  string   `yaml:"compress"`
	Verify    *bool    `yaml:"verify"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// apply copies every value that was not set explicitly on the command line.
func (fc *fileConfig) apply(opts *options, set map[string]bool) {
	if fc.Mode != "" && !set["mode"] {
		opts.mode = fc.Mode
	}
	if fc.Tolerance != nil && !set["tolerance"] {
		opts.tolerance = *fc.Tolerance
	}
	if fc.Chunk != 0 && !set["chunk"] {
		opts.chunk = fc.Chunk
	}
	if fc.Quantize != "" && !set["quantize"] {
		opts.quantize = fc.Quantize
	}
	if fc.Compress != "" && !set["compress"] {
		opts.compress = fc.Compress
	}
	if fc.Verify != nil && !set["verify"] {
		opts.verify = *fc.Verify
	}
}

// parseMode maps a mode name to a Mode. An empty name reports ok=false.
func parseMode(name string) (mode animresample.Mode, ok bool, err error) {
	switch strings.ToLower(name) {
	case "":
		return 0, false, nil
	case "step":
		return animresample.ModeStep, true, nil
	case "lerp", "linear":
		return animresample.ModeLinear, true, nil
	case "slerp", "spherical":
		return animresample.ModeSpherical, true, nil
	case "nlerp":
		return animresample.ModeNlerp, true, nil
	default:
		return 0, false, fmt.Errorf("unknown mode %q (want step, lerp, slerp or nlerp)", name)
	}
}

func parseQuantize(name string) (animresample.ComponentType, error) {
	switch strings.ToLower(name) {
	case "", "none", "float":
		return animresample.ComponentFloat, nil
	case "byte":
		return animresample.ComponentByte, nil
	case "ubyte":
		return animresample.ComponentUnsignedByte, nil
	case "short":
		return animresample.ComponentShort, nil
	case "ushort":
		return animresample.ComponentUnsignedShort, nil
	default:
		return 0, fmt.Errorf("unknown quantization %q (want none, byte, ubyte, short or ushort)", name)
	}
}

// settings are the parsed, validated options.
type settings struct {
	mode        animresample.Mode
	modeSet     bool
	tolerance   float64
	chunk       int
	component   animresample.ComponentType
	compression trackfile.Compression
	verify      bool
}

func (o *options) resolve() (*settings, error) {
	mode, modeSet, err := parseMode(o.mode)
	if err != nil {
		return nil, err
	}
	component, err := parseQuantize(o.quantize)
	if err != nil {
		return nil, err
	}
	compression, err := trackfile.ParseCompression(o.compress)
	if err != nil {
		return nil, err
	}
	if o.tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be non-negative, got %g", o.tolerance)
	}
	return &settings{
		mode:        mode,
		modeSet:     modeSet,
		tolerance:   o.tolerance,
		chunk:       o.chunk,
		component:   component,
		compression: compression,
		verify:      o.verify,
	}, nil
}
