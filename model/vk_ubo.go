package model

import (
	com "vulkan_engine/common"

	vk "github.com/goki/vulkan"
	"github.com/xlab/linmath"
)

// MaxLights is the length of the point light array in the global uniform block.
const MaxLights = 10

// PointLightUbo is one entry of the light array, position and color as vec4 (color.w is the intensity).
type PointLightUbo struct {
	Position linmath.Vec4
	Color    linmath.Vec4
}

// GlobalUbo mirrors the std140 global uniform block shared by all render systems:
// 3 mat4 (192 Byte) + vec4 (16 Byte) + 10 lights (320 Byte) + int padded to 16 Byte = 544 Byte.
type GlobalUbo struct {
	Projection        linmath.Mat4x4
	View              linmath.Mat4x4
	InverseView       linmath.Mat4x4
	AmbientLightColor linmath.Vec4
	PointLights       [MaxLights]PointLightUbo
	NumLights         int32
	_                 [3]int32
}

func NewGlobalUbo() *GlobalUbo {
	u := &GlobalUbo{
		AmbientLightColor: linmath.Vec4{1, 1, 1, .02},
	}
	u.Projection.Identity()
	u.View.Identity()
	u.InverseView.Identity()
	return u
}

// SizeOfGlobalUbo returns the size of the GlobalUbo as laid out in device memory.
func SizeOfGlobalUbo() vk.DeviceSize {
	return vk.DeviceSize(len(com.RawBytes(GlobalUbo{})))
}

// SetCamera copies projection, view and inverse view of c into the ubo.
func (u *GlobalUbo) SetCamera(c *Camera) {
	u.Projection = toLinmath(c.GetProjection())
	u.View = toLinmath(c.GetView())
	u.InverseView = toLinmath(c.GetInverseView())
}

func (u *GlobalUbo) Bytes() []byte {
	return com.RawBytes(u)
}
