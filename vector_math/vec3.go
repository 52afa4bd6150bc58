package vector_math

import "math"

type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return v.Add(w.ScalarMul(-1))
}

func (v Vec3) ScalarMul(f float32) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross follows the right hand rule, x cross y = z.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Norm scales v to unit length. The zero vector has no direction, callers have to rule it out.
func (v Vec3) Norm() Vec3 {
	return v.ScalarMul(1 / v.Len())
}

func (v Vec3) array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, 0}
}
