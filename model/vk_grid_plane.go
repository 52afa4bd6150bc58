package model

import vm "vulkan_engine/vector_math"

// NewGridPlaneMesh builds a flat floor in the xz-plane at y = 0, centered on the origin, size wide and
// split into divisions x divisions quads. Neighbouring quads alternate between two shades of grey.
func NewGridPlaneMesh(divisions int, size float32) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	step := size / float32(divisions)
	half := size / 2
	light := vm.Vec3{X: .6, Y: .6, Z: .6}
	dark := vm.Vec3{X: .3, Y: .3, Z: .3}
	up := vm.Vec3{Y: -1}

	v := make([]Vertex, 0, divisions*divisions*4)
	id := make([]uint32, 0, divisions*divisions*6)
	for row := 0; row < divisions; row++ {
		for col := 0; col < divisions; col++ {
			x0 := -half + float32(col)*step
			z0 := -half + float32(row)*step
			color := light
			if (row+col)%2 == 1 {
				color = dark
			}
			base := uint32(len(v))
			v = append(v,
				Vertex{Position: vm.Vec3{X: x0, Z: z0}, Color: color, Normal: up, UV: TexCoord{0, 0}},
				Vertex{Position: vm.Vec3{X: x0, Z: z0 + step}, Color: color, Normal: up, UV: TexCoord{0, 1}},
				Vertex{Position: vm.Vec3{X: x0 + step, Z: z0 + step}, Color: color, Normal: up, UV: TexCoord{1, 1}},
				Vertex{Position: vm.Vec3{X: x0 + step, Z: z0}, Color: color, Normal: up, UV: TexCoord{1, 0}},
			)
			id = append(id, base, base+1, base+2, base+2, base+3, base)
		}
	}
	return NewMesh(v, id)
}
