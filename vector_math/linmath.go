package vector_math

import "github.com/xlab/linmath"

// ToLinmath converts a row major 4x4 Mat to linmath's column major layout, which is also what std140 and
// push constant blocks expect for a GLSL mat4.
func ToLinmath(m Mat) linmath.Mat4x4 {
	var out linmath.Mat4x4
	for r, row := range m[:4] {
		for c, x := range row[:4] {
			out[c][r] = x
		}
	}
	return out
}

// Vec4 extends v with the homogeneous coordinate w.
func (v Vec3) Vec4(w float32) linmath.Vec4 {
	return linmath.Vec4{v.X, v.Y, v.Z, w}
}
