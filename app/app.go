package app

import (
	"log"
	"math"
	"time"

	com "vulkan_engine/common"
	"vulkan_engine/config"
	"vulkan_engine/model"
	"vulkan_engine/renderer"
	"vulkan_engine/stl"
	"vulkan_engine/systems"
	vm "vulkan_engine/vector_math"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// App owns the whole stack, from the SDL window down to the render systems, plus the scene it renders.
type App struct {
	cfg config.Config

	window   *com.Window
	device   *com.Device
	renderer *renderer.Renderer

	uboBuffers        []*com.Buffer
	ubo               *model.GlobalUbo
	globalDescriptors *systems.GlobalDescriptors
	simpleSystem      *systems.SimpleRenderSystem
	pointLightSystem  *systems.PointLightSystem

	ids         model.IDAllocator
	gameObjects model.GameObjectMap
	models      []*model.Model

	camera     *model.Camera
	viewer     *model.GameObject
	controller *KeyboardMovementController
}

func New(cfg config.Config) (*App, error) {
	a := &App{
		cfg:         cfg,
		ubo:         model.NewGlobalUbo(),
		gameObjects: model.GameObjectMap{},
		camera:      model.NewCamera(cfg.Camera.Fov, cfg.Camera.Near, cfg.Camera.Far),
		controller:  NewKeyboardMovementController(),
	}
	if err := a.init(); err != nil {
		a.Destroy()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	var err error
	a.window, err = com.NewWindow(a.cfg.Window.Title, a.cfg.Window.Width, a.cfg.Window.Height, a.cfg.ValidationLayers())
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	a.device, err = com.NewDevice(a.window, a.cfg.ValidationLayers())
	if err != nil {
		return errors.Wrap(err, "create device")
	}
	a.renderer, err = renderer.NewRenderer(a.window, a.device)
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}
	if err = a.createUniformBuffers(); err != nil {
		return err
	}
	a.globalDescriptors, err = systems.NewGlobalDescriptors(a.device.D, a.uboBuffers)
	if err != nil {
		return err
	}
	shaders := a.cfg.Shaders
	a.simpleSystem, err = systems.NewSimpleRenderSystem(a.device.D, a.renderer.SwapChainRenderPass(), a.globalDescriptors.Layout, shaders.SimpleVert, shaders.SimpleFrag)
	if err != nil {
		return errors.Wrap(err, "create simple render system")
	}
	a.pointLightSystem, err = systems.NewPointLightSystem(a.device.D, a.renderer.SwapChainRenderPass(), a.globalDescriptors.Layout, shaders.PointLightVert, shaders.PointLightFrag)
	if err != nil {
		return errors.Wrap(err, "create point light system")
	}
	// lights are drawn last, they are blended over the scene
	a.renderer.AddSystem(a.simpleSystem)
	a.renderer.AddSystem(a.pointLightSystem)

	return a.loadGameObjects()
}

// createUniformBuffers makes one persistently mapped, host coherent buffer per frame in flight.
func (a *App) createUniformBuffers() error {
	for i := 0; i < renderer.MaxFramesInFlight; i++ {
		buf, err := a.device.CreateBuffer(
			model.SizeOfGlobalUbo(),
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		)
		if err != nil {
			return errors.Wrap(err, "create global uniform buffer")
		}
		a.uboBuffers = append(a.uboBuffers, buf)
		if err = a.device.MapBuffer(buf); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) addModel(mesh *model.Mesh, name string, t model.Transform) error {
	mdl, err := model.NewModel(a.device, mesh, name)
	if err != nil {
		return err
	}
	a.models = append(a.models, mdl)
	obj := a.ids.NewGameObject()
	obj.Model = mdl
	obj.Transform = t
	a.gameObjects.Add(obj)
	return nil
}

var lightColors = []vm.Vec3{
	{X: 1, Y: .1, Z: .1},
	{X: .1, Y: .1, Z: 1},
	{X: .1, Y: 1, Z: .1},
	{X: 1, Y: 1, Z: .1},
	{X: .1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: 1},
}

func (a *App) loadGameObjects() error {
	cube := model.NewTransform()
	cube.Translation = vm.Vec3{Y: .25}
	cube.Scale = vm.Vec3{X: .5, Y: .5, Z: .5}
	if err := a.addModel(model.NewCubeMesh(), "cube", cube); err != nil {
		return err
	}

	floor := model.NewTransform()
	floor.Translation = vm.Vec3{Y: .5}
	floor.Scale = vm.Vec3{X: 3, Y: 1, Z: 3}
	if err := a.addModel(model.NewGridPlaneMesh(10, 1), "floor", floor); err != nil {
		return err
	}

	if path := a.cfg.Scene.ModelPath; path != "" {
		mesh, err := stl.ReadStlFile(path)
		if err != nil {
			return err
		}
		t := model.NewTransform()
		t.Translation = vm.Vec3{X: 1.5, Y: .5}
		// STL files are usually z-up, vulkan's world here is -y up
		t.Rotation = vm.Vec3{X: math.Pi / 2}
		t.Scale = vm.Vec3{X: .05, Y: .05, Z: .05}
		if err = a.addModel(mesh, path, t); err != nil {
			return err
		}
	}

	for i, color := range lightColors {
		light := a.ids.MakePointLight(.2, .1, color)
		rotation := vm.NewRotation(float64(i)*2*math.Pi/float64(len(lightColors)), vm.Vec3{Y: -1})
		light.Transform.Translation = vm.Apply(vm.Vec3{X: -1, Y: -1, Z: -1}, 1, rotation)
		a.gameObjects.Add(light)
	}

	a.viewer = a.ids.NewGameObject()
	a.viewer.Transform.Translation.Z = -2.5
	log.Printf("Loaded %d game objects (%d models)", len(a.gameObjects), len(a.models))
	return nil
}

// updateGlobalUbo runs before the render pass of every frame: camera, lights, then the copy into the buffer
// of the frame index.
func (a *App) updateGlobalUbo(frame *renderer.FrameInfo) error {
	a.ubo.SetCamera(frame.Camera)
	a.pointLightSystem.Update(frame, a.ubo)
	return a.uboBuffers[frame.FrameIndex].WriteMapped(a.ubo.Bytes())
}

// Run renders frames until the window is closed. Errors are fatal for the application.
func (a *App) Run() error {
	last := time.Now()
	for !a.window.ShouldClose() {
		a.window.PollEvents()

		now := time.Now()
		frameTime := min(float32(now.Sub(last).Seconds()), a.cfg.Scene.MaxFrameTime)
		last = now

		a.controller.MoveInPlaneXZ(KeyState(a.window.KeyboardState()), frameTime, a.viewer)
		a.camera.SetViewYXZ(a.viewer.Transform.Translation, a.viewer.Transform.Rotation)
		a.camera.Aspect = a.renderer.AspectRatio()

		_, err := a.renderer.RenderFrame(renderer.FrameParams{
			FrameTime:            frameTime,
			Camera:               a.camera,
			GlobalDescriptorSets: a.globalDescriptors.Sets,
			GameObjects:          a.gameObjects,
			Prepare:              a.updateGlobalUbo,
		})
		if errors.Is(err, renderer.ErrWindowClosed) {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "render frame %d", a.renderer.FrameCount())
		}
	}
	log.Printf("Window closed after %d frames", a.renderer.FrameCount())
	return a.device.WaitIdle()
}

// Destroy tears everything down in reverse creation order. It copes with a partially initialized App.
func (a *App) Destroy() {
	if a.device != nil && a.device.D != nil {
		if err := a.device.WaitIdle(); err != nil {
			log.Printf("Failed to wait for device idle on teardown: %v", err)
		}
	}
	if a.pointLightSystem != nil {
		a.pointLightSystem.Destroy()
	}
	if a.simpleSystem != nil {
		a.simpleSystem.Destroy()
	}
	if a.globalDescriptors != nil {
		a.globalDescriptors.Destroy()
	}
	for _, mdl := range a.models {
		mdl.Destroy()
	}
	a.models = nil
	for _, buf := range a.uboBuffers {
		a.device.DestroyBuffer(buf)
	}
	a.uboBuffers = nil
	if a.renderer != nil {
		a.renderer.Destroy()
	}
	if a.device != nil {
		a.device.Destroy()
	}
	if a.window != nil {
		a.window.Destroy()
	}
}
