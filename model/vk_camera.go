package model

import (
	"log"
	"math"

	vm "vulkan_engine/vector_math"
)

const (
	CAM_PERSPECTIVE_PROJECTION  = iota
	CAM_ORTHOGRAPHIC_PROJECTION = iota
)

// Camera holds the projection parameters and the current view transform. The view is set explicitly by one
// of the SetView* methods, usually once per frame from the viewer object's transform.
type Camera struct {
	ProjectionType int

	// Projection matrix precursors, Fov in degree
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32

	// Up is the world up direction. Vulkan's y-axis points down.
	Up vm.Vec3

	view        vm.Mat
	inverseView vm.Mat
}

func NewCamera(fov float32, near float32, far float32) *Camera {
	return &Camera{
		Fov:         fov,
		Aspect:      1,
		Near:        near,
		Far:         far,
		Up:          vm.Vec3{Y: -1},
		view:        vm.NewUnitMat(4),
		inverseView: vm.NewUnitMat(4),
	}
}

func (c *Camera) GetProjection() vm.Mat {
	switch c.ProjectionType {
	case CAM_PERSPECTIVE_PROJECTION:
		return newPerspectiveProjection(
			vm.ToRad(float64(c.Fov)), float64(c.Aspect), c.Near, c.Far,
		)
	case CAM_ORTHOGRAPHIC_PROJECTION:
		return newOrthographicProjection(
			vm.Vec3{X: -c.Aspect, Y: 1, Z: c.Near}, vm.Vec3{X: c.Aspect, Y: -1, Z: c.Far},
		)
	default:
		log.Printf("Failed to select projection type, returning identity.")
		return vm.NewUnitMat(4)
	}
}

func (c *Camera) GetView() vm.Mat {
	return c.view
}

// GetInverseView is the camera's own transform, its last column is the camera position in world space.
func (c *Camera) GetInverseView() vm.Mat {
	return c.inverseView
}

func (c *Camera) Position() vm.Vec3 {
	return vm.Vec3{X: c.inverseView[0][3], Y: c.inverseView[1][3], Z: c.inverseView[2][3]}
}

func (c *Camera) SetViewDirection(pos vm.Vec3, dir vm.Vec3) {
	// construct orthonormal basis vectors
	w := dir.Norm()
	u := w.Cross(c.Up).Norm()
	v := w.Cross(u)
	c.setBasis(pos, u, v, w)
}

func (c *Camera) SetViewTarget(pos vm.Vec3, target vm.Vec3) {
	d := target.Sub(pos)
	if d.Len() == 0 {
		log.Printf("Failed to calculate view direction, target - position = [0,0,0]. Setting d to z-axis.")
		d = vm.Vec3{Z: 1}
	}
	c.SetViewDirection(pos, d)
}

// SetViewYXZ orients the camera like an object rotated by rot (radians, applied in y, x, z order) placed at
// pos, which is how the keyboard controlled viewer object is stored.
func (c *Camera) SetViewYXZ(pos vm.Vec3, rot vm.Vec3) {
	c3 := float32(math.Cos(float64(rot.Z)))
	s3 := float32(math.Sin(float64(rot.Z)))
	c2 := float32(math.Cos(float64(rot.X)))
	s2 := float32(math.Sin(float64(rot.X)))
	c1 := float32(math.Cos(float64(rot.Y)))
	s1 := float32(math.Sin(float64(rot.Y)))
	u := vm.Vec3{
		X: (c1 * c3) + (s1 * s2 * s3),
		Y: c2 * s3,
		Z: (c1 * s2 * s3) - (c3 * s1),
	}
	v := vm.Vec3{
		X: (c3 * s1 * s2) - (c1 * s3),
		Y: c2 * c3,
		Z: (c1 * c3 * s2) + (s1 * s3),
	}
	w := vm.Vec3{
		X: c2 * s1,
		Y: -s2,
		Z: c1 * c2,
	}
	c.setBasis(pos, u, v, w)
}

// setBasis writes the view (rows u, v, w) and its inverse (columns u, v, w, pos).
func (c *Camera) setBasis(pos vm.Vec3, u vm.Vec3, v vm.Vec3, w vm.Vec3) {
	m := vm.NewUnitMat(4)
	inv := vm.NewUnitMat(4)
	for i, axis := range []vm.Vec3{u, v, w} {
		m[i][0] = axis.X
		m[i][1] = axis.Y
		m[i][2] = axis.Z
		m[i][3] = -axis.Dot(pos)

		inv[0][i] = axis.X
		inv[1][i] = axis.Y
		inv[2][i] = axis.Z
	}
	inv[0][3] = pos.X
	inv[1][3] = pos.Y
	inv[2][3] = pos.Z
	c.view = m
	c.inverseView = inv
}

// newPerspectiveProjection implemented after: https://www.youtube.com/watch?v=U0_ONQQ5ZNM
func newPerspectiveProjection(fovy float64, aspect float64, near float32, far float32) vm.Mat {
	focalLen := 1 / math.Tan(fovy/2)
	m, _ := vm.NewMat(4, 4)
	m[0][0] = float32(focalLen / aspect)
	m[1][1] = float32(focalLen)
	m[2][2] = far / (far - near)
	m[2][3] = -(far * near) / (far - near)
	m[3][2] = 1
	return m
}

// newOrthographicProjection constructs a new matrix representing an orthographic projection from
// a cuboid on to Vulkan's canonical view volume (CVV), which spans from (-1, -1, 0) to (1, 1, 1). The
// returned projection takes any cuboid spanning from lbn (Left-Bottom-Near) to rtf (Right-Top-Far)
// and moves its values into the CVV, which is in turn displayed.
// -------------------------------------------------------------
// Setting the orthographic view volume to have the same aspect ratio as the viewport will avoid stretching
// any points. To do this, let the following term be true: "right - left = aspect * (bottom - top)". The
// current aspect ratio of the viewport can be retrieved via the swap chain's width and height.
func newOrthographicProjection(lbn vm.Vec3, rtf vm.Vec3) vm.Mat {
	l, b, n := lbn.X, lbn.Y, lbn.Z
	r, t, f := rtf.X, rtf.Y, rtf.Z
	m := vm.NewUnitMat(4)
	m[0][0] = 2 / (r - l)
	m[1][1] = 2 / (b - t)
	m[2][2] = 1 / (f - n)
	m[0][3] = -(r + l) / (r - l)
	m[1][3] = -(b + t) / (b - t)
	m[2][3] = -n / (f - n)
	return m
}
