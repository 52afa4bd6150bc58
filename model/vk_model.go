package model

import (
	com "vulkan_engine/common"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// BufferAllocator uploads payloads into device local buffers. *common.Device implements it.
type BufferAllocator interface {
	UploadBuffer(payload []byte, usage vk.BufferUsageFlags) (*com.Buffer, error)
	DestroyBuffer(buffer *com.Buffer)
}

// Model is a Mesh together with the device buffers it was uploaded to.
type Model struct {
	Mesh *Mesh
	Name string

	alloc        BufferAllocator
	vertexBuffer *com.Buffer
	indexBuffer  *com.Buffer
	vertexCount  uint32
	indexCount   uint32
}

// NewModel uploads the mesh to device local memory. A mesh needs at least 3 vertices.
func NewModel(alloc BufferAllocator, m *Mesh, n string) (*Model, error) {
	if len(m.Vertices) < 3 {
		return nil, errors.Errorf("model %q: vertex count must be at least 3, got %d", n, len(m.Vertices))
	}
	mdl := &Model{
		Mesh:        m,
		Name:        n,
		alloc:       alloc,
		vertexCount: uint32(len(m.Vertices)),
		indexCount:  uint32(len(m.VIndices)),
	}
	vb, err := alloc.UploadBuffer(m.VertexBytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, errors.Wrapf(err, "upload vertex buffer of model %q", n)
	}
	mdl.vertexBuffer = vb
	if mdl.indexCount > 0 {
		ib, err := alloc.UploadBuffer(m.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
		if err != nil {
			alloc.DestroyBuffer(vb)
			return nil, errors.Wrapf(err, "upload index buffer of model %q", n)
		}
		mdl.indexBuffer = ib
	}
	return mdl, nil
}

func (m *Model) HasIndexBuffer() bool {
	return m.indexBuffer != nil
}

func (m *Model) Bind(cb vk.CommandBuffer) {
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{m.vertexBuffer.Handle}, []vk.DeviceSize{0})
	if m.HasIndexBuffer() {
		vk.CmdBindIndexBuffer(cb, m.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	}
}

func (m *Model) Draw(cb vk.CommandBuffer) {
	if m.HasIndexBuffer() {
		vk.CmdDrawIndexed(cb, m.indexCount, 1, 0, 0, 0)
	} else {
		vk.CmdDraw(cb, m.vertexCount, 1, 0, 0)
	}
}

func (m *Model) Destroy() {
	m.alloc.DestroyBuffer(m.indexBuffer)
	m.alloc.DestroyBuffer(m.vertexBuffer)
	m.indexBuffer, m.vertexBuffer = nil, nil
}
