package renderer

import (
	"vulkan_engine/model"

	vk "github.com/goki/vulkan"
)

// FrameInfo is what render systems get to see of the frame being recorded. It is built by the Renderer for
// a single frame and must not be kept beyond the Render call.
type FrameInfo struct {
	FrameIndex          int
	FrameTime           float32
	CommandBuffer       vk.CommandBuffer
	Camera              *model.Camera
	GlobalDescriptorSet vk.DescriptorSet
	GameObjects         model.GameObjectMap
}

// RenderSystem binds its pipeline and records draws for one kind of object. Render is only called while the
// swap chain render pass is active.
type RenderSystem interface {
	Render(frame *FrameInfo)
}

// FrameParams are the caller owned inputs of RenderFrame. GlobalDescriptorSets is indexed by frame index.
type FrameParams struct {
	FrameTime            float32
	Camera               *model.Camera
	GlobalDescriptorSets []vk.DescriptorSet
	GameObjects          model.GameObjectMap
	// Prepare runs after the command buffer was begun and before the render pass, e.g. to update the
	// uniform buffer of the frame index.
	Prepare func(frame *FrameInfo) error
}
