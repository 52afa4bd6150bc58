package model

import (
	"math"
	"testing"
	"unsafe"

	com "vulkan_engine/common"
	vm "vulkan_engine/vector_math"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vk "github.com/goki/vulkan"
)

const eps = 1e-5

func assertMatInDelta(t *testing.T, want vm.Mat, got vm.Mat) {
	t.Helper()
	require.Len(t, got, len(want))
	for r := range want {
		assert.InDeltaSlice(t, want[r], got[r], eps, "row %d", r)
	}
}

func assertVec3InDelta(t *testing.T, want vm.Vec3, got vm.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
	assert.InDelta(t, want.Z, got.Z, eps, "z")
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, uintptr(44), unsafe.Sizeof(Vertex{}))

	bindings := GetVertexBindingDescription()
	require.Len(t, bindings, 1)
	assert.Equal(t, uint32(44), bindings[0].Stride)

	attrs := GetVertexAttributeDescriptions()
	require.Len(t, attrs, 4)
	for i, offset := range []uint32{0, 12, 24, 36} {
		assert.Equal(t, uint32(i), attrs[i].Location)
		assert.Equal(t, offset, attrs[i].Offset)
	}
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[3].Format)
}

func TestCubeMesh(t *testing.T) {
	m := NewCubeMesh()
	require.Len(t, m.Vertices, 24)
	require.Len(t, m.VIndices, 36)
	for _, idx := range m.VIndices {
		assert.Less(t, idx, uint32(24))
	}
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), eps)
		// every corner of a face lies on the face's plane
		assert.InDelta(t, 0.5, v.Position.Dot(v.Normal), eps)
	}
	assert.Len(t, m.VertexBytes(), 24*44)
	assert.Len(t, m.IndexBytes(), 36*4)
}

func TestGridPlaneMesh(t *testing.T) {
	m := NewGridPlaneMesh(4, 8)
	require.Len(t, m.Vertices, 4*4*4)
	require.Len(t, m.VIndices, 4*4*6)
	for _, v := range m.Vertices {
		assert.Equal(t, float32(0), v.Position.Y)
		assert.LessOrEqual(t, float32(math.Abs(float64(v.Position.X))), float32(4))
		assert.LessOrEqual(t, float32(math.Abs(float64(v.Position.Z))), float32(4))
	}
	assert.Len(t, NewGridPlaneMesh(0, 1).Vertices, 4, "at least one quad")
}

func TestMeshWithoutIndices(t *testing.T) {
	m := NewMesh(make([]Vertex, 3), nil)
	assert.Nil(t, m.IndexBytes())
}

func TestBufferLayouts(t *testing.T) {
	assert.Equal(t, vk.DeviceSize(544), SizeOfGlobalUbo())
	assert.Len(t, NewGlobalUbo().Bytes(), 544)

	var spc SimplePushConstantData
	assert.Equal(t, uint32(128), spc.Size())
	assert.Len(t, spc.Bytes(), 128)

	var plc PointLightPushConstants
	assert.Equal(t, uint32(48), plc.Size())
	assert.Len(t, plc.Bytes(), 48)
}

func TestGlobalUboSetCamera(t *testing.T) {
	cam := NewCamera(50, 0.1, 100)
	cam.SetViewYXZ(vm.Vec3{X: 1, Y: 2, Z: 3}, vm.Vec3{})
	ubo := NewGlobalUbo()
	ubo.SetCamera(cam)

	// column major: translation is the fourth column
	assert.InDelta(t, -1, ubo.View[3][0], eps)
	assert.InDelta(t, -2, ubo.View[3][1], eps)
	assert.InDelta(t, -3, ubo.View[3][2], eps)
	assert.InDelta(t, 1, ubo.InverseView[3][0], eps)
	// perspective divides by z, stored as row 3 column 2
	assert.Equal(t, float32(1), ubo.Projection[2][3])
}

func TestTransformMat4(t *testing.T) {
	tr := NewTransform()
	tr.Translation = vm.Vec3{X: 1, Y: 2, Z: 3}
	m := tr.Mat4()
	identity := vm.NewUnitMat(4)
	identity[0][3], identity[1][3], identity[2][3] = 1, 2, 3
	assertMatInDelta(t, identity, m)

	tr = NewTransform()
	tr.Rotation.Y = math.Pi / 2
	assertVec3InDelta(t, vm.Vec3{Z: -1}, vm.Apply(vm.Vec3{X: 1}, 1, tr.Mat4()))

	tr = NewTransform()
	tr.Scale = vm.Vec3{X: 2, Y: 4, Z: 8}
	n := tr.NormalMatrix()
	assert.InDelta(t, 0.5, n[0][0], eps)
	assert.InDelta(t, 0.25, n[1][1], eps)
	assert.InDelta(t, 0.125, n[2][2], eps)
}

func TestCameraViewYXZ(t *testing.T) {
	cam := NewCamera(50, 0.1, 100)
	pos := vm.Vec3{X: 1, Y: -2, Z: 3}
	cam.SetViewYXZ(pos, vm.Vec3{X: 0.3, Y: 1.1, Z: -0.4})

	assertVec3InDelta(t, vm.Vec3{}, vm.Apply(pos, 1, cam.GetView()))
	assertVec3InDelta(t, pos, cam.Position())

	view := cam.GetView()
	inv := cam.GetInverseView()
	prod := inv.MustMult(&view)
	identity := vm.NewUnitMat(4)
	assertMatInDelta(t, identity, prod)
}

func TestCameraViewTarget(t *testing.T) {
	cam := NewCamera(50, 0.1, 100)
	cam.SetViewTarget(vm.Vec3{Z: -5}, vm.Vec3{})
	// looking down +z from z = -5, the origin ends up 5 units in front of the camera
	assertVec3InDelta(t, vm.Vec3{Z: 5}, vm.Apply(vm.Vec3{}, 1, cam.GetView()))

	cam.SetViewTarget(vm.Vec3{X: 1}, vm.Vec3{X: 1})
	v := cam.GetView()
	assertVec3InDelta(t, vm.Vec3{Z: 1}, vm.Vec3{X: v[2][0], Y: v[2][1], Z: v[2][2]})
}

func TestPerspectiveDepthRange(t *testing.T) {
	cam := NewCamera(60, 0.5, 50)
	cam.Aspect = 16.0 / 9.0
	p := cam.GetProjection()
	depth := func(z float32) float32 {
		return (p[2][2]*z + p[2][3]) / (p[3][2] * z)
	}
	assert.InDelta(t, 0, depth(0.5), eps)
	assert.InDelta(t, 1, depth(50), eps)
	assert.InDelta(t, p[1][1]/cam.Aspect, p[0][0], eps)
}

func TestOrthographicProjection(t *testing.T) {
	cam := NewCamera(60, 1, 11)
	cam.ProjectionType = CAM_ORTHOGRAPHIC_PROJECTION
	cam.Aspect = 2
	p := cam.GetProjection()
	assertVec3InDelta(t, vm.Vec3{X: 1, Y: 1, Z: 0}, vm.Apply(vm.Vec3{X: 2, Y: 1, Z: 1}, 1, p))
	assertVec3InDelta(t, vm.Vec3{X: -1, Y: -1, Z: 1}, vm.Apply(vm.Vec3{X: -2, Y: -1, Z: 11}, 1, p))
}

func TestIDAllocator(t *testing.T) {
	var ids IDAllocator
	objs := GameObjectMap{}
	for i := 0; i < 5; i++ {
		objs.Add(ids.NewGameObject())
	}
	assert.Len(t, objs, 5)

	light := ids.MakePointLight(0.2, 0.1, vm.Vec3{X: 1})
	require.NotNil(t, light.PointLight)
	assert.Equal(t, GameObjectID(5), light.ID)
	assert.Equal(t, float32(0.1), light.Transform.Scale.X)
	assert.Equal(t, float32(0.2), light.PointLight.LightIntensity)

	// separate allocators do not share state
	var other IDAllocator
	assert.Equal(t, GameObjectID(0), other.NewGameObject().ID)
}

type fakeAllocator struct {
	uploads   []vk.BufferUsageFlags
	destroyed int
	failAt    int
}

func (f *fakeAllocator) UploadBuffer(payload []byte, usage vk.BufferUsageFlags) (*com.Buffer, error) {
	f.uploads = append(f.uploads, usage)
	if len(f.uploads) == f.failAt {
		return nil, errors.New("out of device memory")
	}
	return &com.Buffer{Size: vk.DeviceSize(len(payload)), Usage: usage}, nil
}

func (f *fakeAllocator) DestroyBuffer(buffer *com.Buffer) {
	if buffer != nil {
		f.destroyed++
	}
}

func TestNewModel(t *testing.T) {
	alloc := &fakeAllocator{}
	mdl, err := NewModel(alloc, NewCubeMesh(), "cube")
	require.NoError(t, err)
	assert.True(t, mdl.HasIndexBuffer())
	assert.Equal(t, []vk.BufferUsageFlags{
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
	}, alloc.uploads)
	mdl.Destroy()
	assert.Equal(t, 2, alloc.destroyed)

	_, err = NewModel(alloc, NewMesh(make([]Vertex, 2), nil), "line")
	assert.Error(t, err)

	noIdx, err := NewModel(&fakeAllocator{}, NewMesh(make([]Vertex, 3), nil), "triangle")
	require.NoError(t, err)
	assert.False(t, noIdx.HasIndexBuffer())
}

func TestNewModelIndexUploadFailure(t *testing.T) {
	alloc := &fakeAllocator{failAt: 2}
	_, err := NewModel(alloc, NewCubeMesh(), "cube")
	require.Error(t, err)
	assert.Equal(t, 1, alloc.destroyed, "vertex buffer released")
}
