package vector_math

import "math"

// Constructors for 4x4 homogeneous transforms.

func NewUnitMat(s uint) Mat {
	m, _ := NewMat(s, s)
	for i := range m {
		m[i][i] = 1
	}
	return m
}

func NewScale(s Vec3) Mat {
	m := NewUnitMat(4)
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	return m
}

func NewTranslation(t Vec3) Mat {
	m := NewUnitMat(4)
	m[0][3], m[1][3], m[2][3] = t.X, t.Y, t.Z
	return m
}

// planeRotation rotates by rad inside the plane spanned by the axes a and b, turning a towards b.
func planeRotation(rad float64, a int, b int) Mat {
	sin, cos := math.Sincos(rad)
	m := NewUnitMat(4)
	m[a][a], m[a][b] = float32(cos), -float32(sin)
	m[b][a], m[b][b] = float32(sin), float32(cos)
	return m
}

func rotX(rad float64) Mat { return planeRotation(rad, 1, 2) }
func rotY(rad float64) Mat { return planeRotation(rad, 2, 0) }
func rotZ(rad float64) Mat { return planeRotation(rad, 0, 1) }

// NewTransformYXZ composes translation * Ry * Rx * Rz * scale, i.e. the object is scaled first, then rotated
// around z, x and y (Tait-Bryan angles in radians) and finally moved to t.
func NewTransformYXZ(t Vec3, rot Vec3, scale Vec3) Mat {
	m := NewTranslation(t)
	for _, f := range []Mat{rotY(float64(rot.Y)), rotX(float64(rot.X)), rotZ(float64(rot.Z)), NewScale(scale)} {
		m = m.MustMult(&f)
	}
	return m
}

// NewRotation rotates by rad around axis (Rodrigues' formula). axis does not need to be normalized.
func NewRotation(rad float64, axis Vec3) Mat {
	u := axis.Norm().array()
	sin, cos := math.Sincos(rad)
	s, c := float32(sin), float32(cos)
	// cross product matrix of u, indexed [row][col]
	k := [3][3]float32{
		{0, -u[2], u[1]},
		{u[2], 0, -u[0]},
		{-u[1], u[0], 0},
	}
	m := NewUnitMat(4)
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			m[r][col] = u[r]*u[col]*(1-c) + s*k[r][col]
		}
		m[r][r] += c
	}
	return m
}
