package systems

import (
	"log"
	"sort"
	"unsafe"

	"vulkan_engine/model"
	"vulkan_engine/renderer"
	vm "vulkan_engine/vector_math"

	vk "github.com/goki/vulkan"
)

// lightOrbitSpeed is the angular speed (rad/s) of the point lights around the world y-axis.
const lightOrbitSpeed = 0.5

// PointLightSystem renders point lights as camera facing billboards and feeds them into the global uniform
// block. The billboard quad is generated in the vertex shader, so there is no vertex input.
type PointLightSystem struct {
	device         vk.Device
	pipelineLayout vk.PipelineLayout
	pipeline       *Pipeline
	warnedOverflow bool
}

func NewPointLightSystem(dev vk.Device, renderPass vk.RenderPass, globalSetLayout vk.DescriptorSetLayout, vertPath string, fragPath string) (*PointLightSystem, error) {
	p := &PointLightSystem{device: dev}
	layout, err := createPipelineLayout(dev, globalSetLayout, (&model.PointLightPushConstants{}).Size())
	if err != nil {
		return nil, err
	}
	p.pipelineLayout = layout

	cfg := DefaultPipelineConfig()
	cfg.EnableAlphaBlending()
	cfg.BindingDescriptions = nil
	cfg.AttributeDescriptions = nil
	cfg.RenderPass = renderPass
	cfg.PipelineLayout = layout
	pipeline, err := NewPipeline(dev, vertPath, fragPath, cfg)
	if err != nil {
		p.Destroy()
		return nil, err
	}
	p.pipeline = pipeline
	return p, nil
}

// Update orbits every point light around the y-axis by the frame time and writes the lights, ordered by
// object id, into the ubo. Lights beyond model.MaxLights keep moving but are left out of the ubo.
func (p *PointLightSystem) Update(frame *renderer.FrameInfo, ubo *model.GlobalUbo) {
	rotation := vm.NewRotation(lightOrbitSpeed*float64(frame.FrameTime), vm.Vec3{Y: -1})
	lightIndex := 0
	for _, obj := range sortedLights(frame.GameObjects) {
		obj.Transform.Translation = vm.Apply(obj.Transform.Translation, 1, rotation)
		if lightIndex >= model.MaxLights {
			if !p.warnedOverflow {
				log.Printf("More than %d point lights in the scene, the rest are not lighting anything", model.MaxLights)
				p.warnedOverflow = true
			}
			continue
		}
		ubo.PointLights[lightIndex] = model.PointLightUbo{
			Position: obj.Transform.Translation.Vec4(1),
			Color:    obj.Color.Vec4(obj.PointLight.LightIntensity),
		}
		lightIndex++
	}
	ubo.NumLights = int32(lightIndex)
}

func sortedLights(objs model.GameObjectMap) []*model.GameObject {
	var lights []*model.GameObject
	for _, obj := range objs {
		if obj.PointLight != nil {
			lights = append(lights, obj)
		}
	}
	sort.Slice(lights, func(i, j int) bool { return lights[i].ID < lights[j].ID })
	return lights
}

// backToFront orders the lights by decreasing distance to the camera, so blended billboards composite
// correctly.
func backToFront(objs model.GameObjectMap, camPos vm.Vec3) []*model.GameObject {
	lights := sortedLights(objs)
	dist := make(map[model.GameObjectID]float32, len(lights))
	for _, l := range lights {
		d := l.Transform.Translation.Sub(camPos)
		dist[l.ID] = d.Dot(d)
	}
	sort.SliceStable(lights, func(i, j int) bool { return dist[lights[i].ID] > dist[lights[j].ID] })
	return lights
}

func pointLightPushConstants(obj *model.GameObject) model.PointLightPushConstants {
	return model.PointLightPushConstants{
		Position: obj.Transform.Translation.Vec4(1),
		Color:    obj.Color.Vec4(obj.PointLight.LightIntensity),
		Radius:   obj.Transform.Scale.X,
	}
}

func (p *PointLightSystem) Render(frame *renderer.FrameInfo) {
	cb := frame.CommandBuffer
	p.pipeline.Bind(cb)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, p.pipelineLayout, 0, 1, []vk.DescriptorSet{frame.GlobalDescriptorSet}, 0, nil)

	var camPos vm.Vec3
	if frame.Camera != nil {
		camPos = frame.Camera.Position()
	}
	for _, obj := range backToFront(frame.GameObjects, camPos) {
		push := pointLightPushConstants(obj)
		vk.CmdPushConstants(cb, p.pipelineLayout, pushConstantStages, 0, push.Size(), unsafe.Pointer(&push))
		vk.CmdDraw(cb, 6, 1, 0, 0)
	}
}

func (p *PointLightSystem) Destroy() {
	if p.pipeline != nil {
		p.pipeline.Destroy()
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		vk.DestroyPipelineLayout(p.device, p.pipelineLayout, nil)
		p.pipelineLayout = nil
	}
}
