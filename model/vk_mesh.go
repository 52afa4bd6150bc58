package model

import (
	com "vulkan_engine/common"
)

// Mesh is the CPU side geometry of a Model. VIndices may be empty, the mesh is then drawn non-indexed.
type Mesh struct {
	Vertices []Vertex
	VIndices []uint32
}

func NewMesh(v []Vertex, id []uint32) *Mesh {
	return &Mesh{
		Vertices: v,
		VIndices: id,
	}
}

// VertexBytes returns the raw bytes representing all vertices, ready to be copied into a vertex buffer.
func (m *Mesh) VertexBytes() []byte {
	return com.RawBytes(m.Vertices)
}

// IndexBytes returns the raw bytes representing the indices used to address vertex data.
func (m *Mesh) IndexBytes() []byte {
	if len(m.VIndices) == 0 {
		return nil
	}
	return com.RawBytes(m.VIndices)
}
