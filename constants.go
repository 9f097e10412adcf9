package animresample

// Tolerance defaults
const (
	// DefaultTolerance is the float32 machine epsilon. At this tolerance only
	// keyframes that are redundant up to float32 rounding are removed.
	DefaultTolerance = 1.1920928955078125e-07
)

// Working memory
const (
	// DefaultChunkFrames is the default Stream working buffer in keyframes.
	DefaultChunkFrames = 8192

	// minChunkFrames leaves room for the two carried keyframes plus at least
	// one new keyframe per chunk.
	minChunkFrames = 3

	// streamCarry is the number of keyframes carried between chunks.
	streamCarry = 2
)

// Value shapes
const (
	quatComponents = 4
	vec2Components = 2
	vec3Components = 3
	vec4Components = 4
)

// Channel optimizer limits
const (
	// maxParallelChannels caps concurrent channel workers when Parallel is set
	// and no explicit limit is given.
	maxParallelChannels = 8
)
