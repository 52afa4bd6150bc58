package vector_math

import "math"

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 {
	return deg / 180 * math.Pi
}

// Apply multiplies the homogeneous point (v, w) with the 4x4 matrix m and drops the resulting w.
// With w = 1 the translation of m applies, with w = 0 v is treated as a direction.
func Apply(v Vec3, w float32, m Mat) Vec3 {
	in := v.array()
	in[3] = w
	var out [3]float32
	for r := range out {
		for c, x := range in {
			out[r] += m[r][c] * x
		}
	}
	return Vec3{out[0], out[1], out[2]}
}
