// Package animresample simplifies animation keyframe tracks in pure Go.
//
// A track is a sorted list of keyframe times with one value per keyframe (a
// scalar, a vector or a unit quaternion). Decimation drops every interior
// keyframe whose value the chosen interpolation reconstructs from its
// neighbors within a per-component tolerance, compacting the buffers in place
// in a single pass.
//
// # Features
//
//   - Step, linear, spherical (slerp) and normalized-lerp (nlerp) predicates
//   - Arbitrary value width for step and linear tracks (morph target weights)
//   - Strided and interleaved buffer layouts, float32 and float64
//   - Normalized integer components (BYTE, UNSIGNED_BYTE, SHORT, UNSIGNED_SHORT)
//   - Bounded-memory streaming that matches a single full pass exactly
//   - Parallel multi-channel optimization with structured logging
//   - Optional SIMD acceleration (AVX2/SSE/NEON) via github.com/tphakala/simd
//
// # Quick Start
//
// For one-shot in-place decimation:
//
//	n, err := animresample.LerpVec3(frames, 1, values, 3, len(frames), 1e-5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frames, values = frames[:n], values[:n*3]
//
// For long tracks with bounded working memory:
//
//	cfg := animresample.DefaultConfig(animresample.ModeLinear, 3)
//	s, err := animresample.NewStream[float32](cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for batch := range batches {
//	    f, v, err := s.Process(batch.Frames, batch.Values)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    emit(f, v)
//	}
//
//	// Flush the carried keyframes
//	f, v, _ := s.Flush()
//
// # Modes
//
//   - [ModeStep]: a keyframe is kept when its value differs from the held
//     value or when the next value differs from it.
//   - [ModeLinear]: a keyframe is kept when linear interpolation between the
//     last kept keyframe and the next one misses it.
//   - [ModeSpherical]: as linear, with slerp over unit quaternions (x, y, z, w).
//     Keyframes more than half a turn away from their neighbors are always kept.
//   - [ModeNlerp]: as spherical, approximated with a corrected normalized lerp.
//
// # Time Ties
//
// When two consecutive keyframes share a time, the earlier one is dropped.
// The first two keyframes are the exception: if they share a time the second
// one is dropped. Streaming applies the same rules, so chunked output equals
// a single pass over the whole track with or without ties.
//
// # Thread Safety
//
// Decimation has no shared state; calls on disjoint buffers are safe to run
// concurrently. A [Stream] must not be used from multiple goroutines.
// [Optimize] processes distinct channels concurrently when asked to.
package animresample
