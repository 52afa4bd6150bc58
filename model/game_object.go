package model

import (
	vm "vulkan_engine/vector_math"
)

// Transform places an object in world space. Rotation holds Tait-Bryan angles in radians applied in y, x, z
// order.
type Transform struct {
	Translation vm.Vec3
	Scale       vm.Vec3
	Rotation    vm.Vec3
}

func NewTransform() Transform {
	return Transform{Scale: vm.Vec3{X: 1, Y: 1, Z: 1}}
}

// Mat4 is translate * Ry * Rx * Rz * scale.
func (t Transform) Mat4() vm.Mat {
	return vm.NewTransformYXZ(t.Translation, t.Rotation, t.Scale)
}

// NormalMatrix is the rotation with inverted scale, i.e. the inverse transpose of the upper 3x3 of Mat4.
func (t Transform) NormalMatrix() vm.Mat {
	invScale := vm.Vec3{X: 1 / t.Scale.X, Y: 1 / t.Scale.Y, Z: 1 / t.Scale.Z}
	return vm.NewTransformYXZ(vm.Vec3{}, t.Rotation, invScale)
}

type PointLight struct {
	LightIntensity float32
}

type GameObjectID uint32

// GameObject is anything placed in the scene. Objects with a Model are drawn, objects with a PointLight are
// rendered as light billboards and feed the global light array.
type GameObject struct {
	ID         GameObjectID
	Transform  Transform
	Color      vm.Vec3
	Model      *Model
	PointLight *PointLight
}

type GameObjectMap map[GameObjectID]*GameObject

func (m GameObjectMap) Add(obj *GameObject) {
	m[obj.ID] = obj
}

// IDAllocator hands out unique game object ids. Every scene owns one.
type IDAllocator struct {
	next GameObjectID
}

func (a *IDAllocator) NewGameObject() *GameObject {
	obj := &GameObject{
		ID:        a.next,
		Transform: NewTransform(),
	}
	a.next++
	return obj
}

// MakePointLight creates a light object. The radius is stored as the transform's x scale.
func (a *IDAllocator) MakePointLight(intensity float32, radius float32, color vm.Vec3) *GameObject {
	obj := a.NewGameObject()
	obj.Color = color
	obj.Transform.Scale.X = radius
	obj.PointLight = &PointLight{LightIntensity: intensity}
	return obj
}
