package model

import (
	"unsafe"

	com "vulkan_engine/common"
	vm "vulkan_engine/vector_math"

	"github.com/xlab/linmath"
)

// SimplePushConstantData is pushed once per drawn game object.
type SimplePushConstantData struct {
	ModelMatrix  linmath.Mat4x4
	NormalMatrix linmath.Mat4x4
}

func (p *SimplePushConstantData) Size() uint32 {
	return uint32(unsafe.Sizeof(*p))
}

func (p *SimplePushConstantData) Bytes() []byte {
	return com.RawBytes(p)
}

// PointLightPushConstants is pushed once per point light billboard. Radius is padded out to a vec4.
type PointLightPushConstants struct {
	Position linmath.Vec4
	Color    linmath.Vec4
	Radius   float32
	_        [3]float32
}

func (p *PointLightPushConstants) Size() uint32 {
	return uint32(unsafe.Sizeof(*p))
}

func (p *PointLightPushConstants) Bytes() []byte {
	return com.RawBytes(p)
}

func toLinmath(m vm.Mat) linmath.Mat4x4 {
	return vm.ToLinmath(m)
}
