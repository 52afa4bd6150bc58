package model

import vm "vulkan_engine/vector_math"

type cubeFace struct {
	normal  vm.Vec3
	color   vm.Vec3
	corners [4]vm.Vec3
}

// NewCubeMesh builds a unit cube centered on the origin. Every face has its own 4 vertices so normals and
// colors stay flat per face: 24 vertices, 36 indices.
func NewCubeMesh() *Mesh {
	faces := []cubeFace{
		{ // left (-x)
			normal: vm.Vec3{X: -1}, color: vm.Vec3{X: .9, Y: .9, Z: .9},
			corners: [4]vm.Vec3{{X: -.5, Y: -.5, Z: -.5}, {X: -.5, Y: .5, Z: -.5}, {X: -.5, Y: .5, Z: .5}, {X: -.5, Y: -.5, Z: .5}},
		},
		{ // right (+x)
			normal: vm.Vec3{X: 1}, color: vm.Vec3{X: .8, Y: .8, Z: .1},
			corners: [4]vm.Vec3{{X: .5, Y: -.5, Z: -.5}, {X: .5, Y: -.5, Z: .5}, {X: .5, Y: .5, Z: .5}, {X: .5, Y: .5, Z: -.5}},
		},
		{ // top (-y, vulkan's y points down)
			normal: vm.Vec3{Y: -1}, color: vm.Vec3{X: .9, Y: .6, Z: .1},
			corners: [4]vm.Vec3{{X: -.5, Y: -.5, Z: -.5}, {X: -.5, Y: -.5, Z: .5}, {X: .5, Y: -.5, Z: .5}, {X: .5, Y: -.5, Z: -.5}},
		},
		{ // bottom (+y)
			normal: vm.Vec3{Y: 1}, color: vm.Vec3{X: .8, Y: .1, Z: .1},
			corners: [4]vm.Vec3{{X: -.5, Y: .5, Z: -.5}, {X: .5, Y: .5, Z: -.5}, {X: .5, Y: .5, Z: .5}, {X: -.5, Y: .5, Z: .5}},
		},
		{ // front (+z)
			normal: vm.Vec3{Z: 1}, color: vm.Vec3{X: .1, Y: .1, Z: .8},
			corners: [4]vm.Vec3{{X: -.5, Y: -.5, Z: .5}, {X: -.5, Y: .5, Z: .5}, {X: .5, Y: .5, Z: .5}, {X: .5, Y: -.5, Z: .5}},
		},
		{ // back (-z)
			normal: vm.Vec3{Z: -1}, color: vm.Vec3{X: .1, Y: .8, Z: .1},
			corners: [4]vm.Vec3{{X: -.5, Y: -.5, Z: -.5}, {X: .5, Y: -.5, Z: -.5}, {X: .5, Y: .5, Z: -.5}, {X: -.5, Y: .5, Z: -.5}},
		},
	}
	uvs := [4]TexCoord{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	v := make([]Vertex, 0, 24)
	id := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(v))
		for i, c := range f.corners {
			v = append(v, Vertex{
				Position: c,
				Color:    f.color,
				Normal:   f.normal,
				UV:       uvs[i],
			})
		}
		id = append(id, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(v, id)
}
