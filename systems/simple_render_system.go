package systems

import (
	"unsafe"

	com "vulkan_engine/common"
	"vulkan_engine/model"
	"vulkan_engine/renderer"
	vm "vulkan_engine/vector_math"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

const pushConstantStages = vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)

// SimpleRenderSystem draws every game object that carries a model, lit by the global uniform block.
type SimpleRenderSystem struct {
	device         vk.Device
	pipelineLayout vk.PipelineLayout
	pipeline       *Pipeline
}

func NewSimpleRenderSystem(dev vk.Device, renderPass vk.RenderPass, globalSetLayout vk.DescriptorSetLayout, vertPath string, fragPath string) (*SimpleRenderSystem, error) {
	s := &SimpleRenderSystem{device: dev}
	layout, err := createPipelineLayout(dev, globalSetLayout, (&model.SimplePushConstantData{}).Size())
	if err != nil {
		return nil, err
	}
	s.pipelineLayout = layout

	cfg := DefaultPipelineConfig()
	cfg.BindingDescriptions = model.GetVertexBindingDescription()
	cfg.AttributeDescriptions = model.GetVertexAttributeDescriptions()
	cfg.RenderPass = renderPass
	cfg.PipelineLayout = layout
	pipeline, err := NewPipeline(dev, vertPath, fragPath, cfg)
	if err != nil {
		s.Destroy()
		return nil, err
	}
	s.pipeline = pipeline
	return s, nil
}

// createPipelineLayout makes a layout with the global set at set 0 and a single push constant range of the
// given size, visible to the vertex and fragment stage.
func createPipelineLayout(dev vk.Device, globalSetLayout vk.DescriptorSetLayout, pushSize uint32) (vk.PipelineLayout, error) {
	pushConstantRange := vk.PushConstantRange{
		StageFlags: pushConstantStages,
		Offset:     0,
		Size:       pushSize,
	}
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{globalSetLayout},
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{pushConstantRange},
	}
	layout, err := com.VkCreatePipelineLayout(dev, &pipelineLayoutInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline layout")
	}
	return layout, nil
}

func simplePushConstants(obj *model.GameObject) model.SimplePushConstantData {
	return model.SimplePushConstantData{
		ModelMatrix:  vm.ToLinmath(obj.Transform.Mat4()),
		NormalMatrix: vm.ToLinmath(obj.Transform.NormalMatrix()),
	}
}

func (s *SimpleRenderSystem) Render(frame *renderer.FrameInfo) {
	cb := frame.CommandBuffer
	s.pipeline.Bind(cb)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, s.pipelineLayout, 0, 1, []vk.DescriptorSet{frame.GlobalDescriptorSet}, 0, nil)

	for _, obj := range frame.GameObjects {
		if obj.Model == nil {
			continue
		}
		push := simplePushConstants(obj)
		vk.CmdPushConstants(cb, s.pipelineLayout, pushConstantStages, 0, push.Size(), unsafe.Pointer(&push))
		obj.Model.Bind(cb)
		obj.Model.Draw(cb)
	}
}

func (s *SimpleRenderSystem) Destroy() {
	if s.pipeline != nil {
		s.pipeline.Destroy()
		s.pipeline = nil
	}
	if s.pipelineLayout != nil {
		vk.DestroyPipelineLayout(s.device, s.pipelineLayout, nil)
		s.pipelineLayout = nil
	}
}
