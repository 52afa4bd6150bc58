package model

import (
	"unsafe"

	vm "vulkan_engine/vector_math"

	vk "github.com/goki/vulkan"
)

// TexCoord is a texture coordinate in [0, 1], origin at the top left of the image.
type TexCoord struct {
	U, V float32
}

// Vertex is tightly packed, 44 bytes: no member needs more than 4 byte alignment.
type Vertex struct {
	Position vm.Vec3  // 12 Byte
	Color    vm.Vec3  // 12 Byte
	Normal   vm.Vec3  // 12 Byte
	UV       TexCoord // 8 Byte
}

func GetVertexBindingDescription() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    uint32(unsafe.Sizeof(Vertex{})),
			InputRate: vk.VertexInputRateVertex,
		},
	}
}

func GetVertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Location: 0,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Position)),
		},
		{
			Location: 1,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
		{
			Location: 2,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Normal)),
		},
		{
			Location: 3,
			Binding:  0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.UV)),
		},
	}
}
