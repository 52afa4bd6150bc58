package systems

import (
	"log"

	com "vulkan_engine/common"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// PipelineConfig holds the fixed function state of a graphics pipeline. Viewport and scissor are dynamic, so a
// pipeline survives swap chain recreation as long as the render pass stays compatible.
type PipelineConfig struct {
	BindingDescriptions   []vk.VertexInputBindingDescription
	AttributeDescriptions []vk.VertexInputAttributeDescription

	ViewportInfo         vk.PipelineViewportStateCreateInfo
	InputAssemblyInfo    vk.PipelineInputAssemblyStateCreateInfo
	RasterizationInfo    vk.PipelineRasterizationStateCreateInfo
	MultisampleInfo      vk.PipelineMultisampleStateCreateInfo
	ColorBlendAttachment vk.PipelineColorBlendAttachmentState
	DepthStencilInfo     vk.PipelineDepthStencilStateCreateInfo
	DynamicStates        []vk.DynamicState

	PipelineLayout vk.PipelineLayout
	RenderPass     vk.RenderPass
	Subpass        uint32
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ViewportInfo: vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    nil,
			ScissorCount:  1,
			PScissors:     nil,
		},
		InputAssemblyInfo: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		RasterizationInfo: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                vk.CullModeFlags(vk.CullModeNone),
			FrontFace:               vk.FrontFaceClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		MultisampleInfo: vk.PipelineMultisampleStateCreateInfo{
			SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples:  vk.SampleCount1Bit,
			SampleShadingEnable:   vk.False,
			MinSampleShading:      1.0,
			AlphaToCoverageEnable: vk.False,
			AlphaToOneEnable:      vk.False,
		},
		ColorBlendAttachment: vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vk.False,
			SrcColorBlendFactor: vk.BlendFactorOne,
			DstColorBlendFactor: vk.BlendFactorZero,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorOne,
			DstAlphaBlendFactor: vk.BlendFactorZero,
			AlphaBlendOp:        vk.BlendOpAdd,
			ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		},
		DepthStencilInfo: vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vk.True,
			DepthWriteEnable:      vk.True,
			DepthCompareOp:        vk.CompareOpLess,
			DepthBoundsTestEnable: vk.False,
			StencilTestEnable:     vk.False,
			MinDepthBounds:        0,
			MaxDepthBounds:        1,
		},
		DynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}
}

// EnableAlphaBlending switches the color attachment to straight alpha blending.
func (cfg *PipelineConfig) EnableAlphaBlending() {
	cfg.ColorBlendAttachment.BlendEnable = vk.True
	cfg.ColorBlendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
	cfg.ColorBlendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
	cfg.ColorBlendAttachment.SrcAlphaBlendFactor = vk.BlendFactorOne
	cfg.ColorBlendAttachment.DstAlphaBlendFactor = vk.BlendFactorZero
}

func (cfg *PipelineConfig) validate() error {
	if cfg.PipelineLayout == nil {
		return errors.New("cannot create graphics pipeline: no pipeline layout provided in config")
	}
	if cfg.RenderPass == nil {
		return errors.New("cannot create graphics pipeline: no render pass provided in config")
	}
	return nil
}

// createInfo assembles the vk.GraphicsPipelineCreateInfo for the given shader stages.
func (cfg *PipelineConfig) createInfo(stages []vk.PipelineShaderStageCreateInfo) vk.GraphicsPipelineCreateInfo {
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(cfg.BindingDescriptions)),
		PVertexBindingDescriptions:      cfg.BindingDescriptions,
		VertexAttributeDescriptionCount: uint32(len(cfg.AttributeDescriptions)),
		PVertexAttributeDescriptions:    cfg.AttributeDescriptions,
	}
	colorBlendingInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{cfg.ColorBlendAttachment},
		BlendConstants:  [4]float32{0, 0, 0, 0},
	}
	dynamicStateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(cfg.DynamicStates)),
		PDynamicStates:    cfg.DynamicStates,
	}
	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               nil,
		Flags:               0,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &cfg.InputAssemblyInfo,
		PTessellationState:  nil,
		PViewportState:      &cfg.ViewportInfo,
		PRasterizationState: &cfg.RasterizationInfo,
		PMultisampleState:   &cfg.MultisampleInfo,
		PDepthStencilState:  &cfg.DepthStencilInfo,
		PColorBlendState:    &colorBlendingInfo,
		PDynamicState:       &dynamicStateInfo,
		Layout:              cfg.PipelineLayout,
		RenderPass:          cfg.RenderPass,
		Subpass:             cfg.Subpass,
		BasePipelineHandle:  nil,
		BasePipelineIndex:   -1,
	}
}

// Pipeline is a graphics pipeline built from a vertex and a fragment shader.
type Pipeline struct {
	device vk.Device
	handle vk.Pipeline
}

func NewPipeline(dev vk.Device, vertPath string, fragPath string, cfg PipelineConfig) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// Shader module deletion can be done right after pipeline creation
	vertMod, vertStage, err := LoadShader(dev, vertPath, vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	defer DeleteShaderMod(dev, vertMod)
	fragMod, fragStage, err := LoadShader(dev, fragPath, vk.ShaderStageFragmentBit)
	if err != nil {
		return nil, err
	}
	defer DeleteShaderMod(dev, fragMod)

	info := cfg.createInfo([]vk.PipelineShaderStageCreateInfo{vertStage, fragStage})
	pipelines, err := com.VkCreateGraphicsPipelines(dev, nil, 1, []vk.GraphicsPipelineCreateInfo{info}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create graphics pipeline (%s, %s)", vertPath, fragPath)
	}
	log.Printf("Successfully created graphics pipeline (%s, %s)", vertPath, fragPath)
	return &Pipeline{device: dev, handle: pipelines[0]}, nil
}

func (p *Pipeline) Bind(cb vk.CommandBuffer) {
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, p.handle)
}

func (p *Pipeline) Destroy() {
	if p.handle == nil {
		return
	}
	vk.DestroyPipeline(p.device, p.handle, nil)
	p.handle = nil
}
