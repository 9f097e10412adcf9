package animresample

// The per-shape entry points below decimate one track in place and return the
// new keyframe count. frameStride and valueStride are element distances
// between consecutive times and values; valueStride must be at least the
// value size. They are thin wrappers over Decimate with the size fixed.

// StepScalar decimates a scalar track with step (hold) interpolation.
func StepScalar[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, 1, valueStride, count, ModeStep, tolerance)
}

// StepVec2 decimates a two-component track with step interpolation.
func StepVec2[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec2Components, valueStride, count, ModeStep, tolerance)
}

// StepVec3 decimates a three-component track with step interpolation.
func StepVec3[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec3Components, valueStride, count, ModeStep, tolerance)
}

// StepVec4 decimates a four-component track with step interpolation.
func StepVec4[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec4Components, valueStride, count, ModeStep, tolerance)
}

// StepN decimates a track of any value size with step interpolation,
// e.g. morph target weights.
func StepN[F Float](frames []F, frameStride int, values []F, size, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, size, valueStride, count, ModeStep, tolerance)
}

// LerpScalar decimates a scalar track with linear interpolation.
func LerpScalar[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, 1, valueStride, count, ModeLinear, tolerance)
}

// LerpVec2 decimates a two-component track with linear interpolation.
func LerpVec2[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec2Components, valueStride, count, ModeLinear, tolerance)
}

// LerpVec3 decimates a three-component track with linear interpolation,
// e.g. translation or scale.
func LerpVec3[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec3Components, valueStride, count, ModeLinear, tolerance)
}

// LerpVec4 decimates a four-component track with per-component linear
// interpolation.
func LerpVec4[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, vec4Components, valueStride, count, ModeLinear, tolerance)
}

// LerpN decimates a track of any value size with linear interpolation.
// Components are compared in blocks of four; every block must match.
func LerpN[F Float](frames []F, frameStride int, values []F, size, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, size, valueStride, count, ModeLinear, tolerance)
}

// SlerpQuat decimates a unit quaternion (x, y, z, w) track with spherical
// interpolation. Keyframes whose neighborhood spans a half turn or more are
// always kept.
func SlerpQuat[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, quatComponents, valueStride, count, ModeSpherical, tolerance)
}

// NlerpQuat is like SlerpQuat but reconstructs with a corrected normalized
// lerp, which is faster and within about 1e-3 of slerp.
func NlerpQuat[F Float](frames []F, frameStride int, values []F, valueStride, count int, tolerance F) (int, error) {
	return Decimate(frames, frameStride, values, quatComponents, valueStride, count, ModeNlerp, tolerance)
}
