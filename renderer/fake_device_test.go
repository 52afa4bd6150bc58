package renderer

import (
	"fmt"
	"math"
	"unsafe"

	com "vulkan_engine/common"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// fakeDevice stands in for the GPU. It mints opaque handles, tracks which of them are alive and checks the
// rules the validation layers would enforce on fences, semaphores and command buffers. Every rule broken is
// appended to validationErrors instead of failing right away, so tests can assert on the full picture.
type fakeDevice struct {
	live             map[unsafe.Pointer]string
	destroyLog       []string
	validationErrors []string

	details     com.SwapChainDetails
	families    com.QueueFamilyIndices
	depthFormat vk.Format
	// forceImageCount overrides how many images a created swap chain reports, 0 means MinImageCount.
	forceImageCount int
	failCreate      string
	submitErr       error

	swapchainInfos   []vk.SwapchainCreateInfo
	framebufferInfos []vk.FramebufferCreateInfo
	swapchainImages  map[vk.Swapchain][]vk.Image
	nextImage        map[vk.Swapchain]uint32

	fences     map[vk.Fence]*fakeFence
	semaphores map[vk.Semaphore]bool
	lyingWaits bool
	fenceWaits []vk.Fence

	commandBuffers map[vk.CommandBuffer]*fakeCommandBuffer
	allocated      int
	freed          int

	acquireResults []vk.Result
	presentResults []vk.Result
	submits        []fakeSubmit
	presents       []vk.PresentInfo
	// rendered is set by a submit carrying a finished render pass, whose final layout is PRESENT_SRC.
	rendered       bool
	passBegins     []vk.RenderPassBeginInfo
	passEnds       int
	viewports      []vk.Viewport
	scissors       []vk.Rect2D
	waitIdles      int
}

type fakeFence struct {
	signaled bool
	pending  bool
}

type fakeCommandBuffer struct {
	recording bool
	ended     bool
	inPass    bool
	passes    int
	inUseBy   vk.Fence
}

type fakeSubmit struct {
	buffers   []vk.CommandBuffer
	stageMask vk.PipelineStageFlags
	fence     vk.Fence
}

func newFakeDevice() *fakeDevice {
	graphics, present := uint32(0), uint32(0)
	return &fakeDevice{
		live: map[unsafe.Pointer]string{},
		details: com.SwapChainDetails{
			Capabilities: vk.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  8,
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			Formats: []vk.SurfaceFormat{
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		},
		families:        com.QueueFamilyIndices{GraphicsFamily: &graphics, PresentFamily: &present},
		depthFormat:     vk.FormatD32Sfloat,
		swapchainImages: map[vk.Swapchain][]vk.Image{},
		nextImage:       map[vk.Swapchain]uint32{},
		fences:          map[vk.Fence]*fakeFence{},
		semaphores:      map[vk.Semaphore]bool{},
		commandBuffers:  map[vk.CommandBuffer]*fakeCommandBuffer{},
	}
}

func (f *fakeDevice) invalid(format string, args ...interface{}) {
	f.validationErrors = append(f.validationErrors, fmt.Sprintf(format, args...))
}

func (f *fakeDevice) mint(kind string) (unsafe.Pointer, error) {
	if kind == f.failCreate {
		return nil, errors.Errorf("injected failure creating %s", kind)
	}
	p := unsafe.Pointer(new(uint64))
	f.live[p] = kind
	return p, nil
}

// mintUntracked returns a handle for objects the device does not own in these tests, e.g. descriptor sets.
func (f *fakeDevice) mintUntracked() unsafe.Pointer {
	return unsafe.Pointer(new(uint64))
}

func (f *fakeDevice) release(p unsafe.Pointer, kind string) {
	if p == nil {
		f.invalid("destroy of null %s", kind)
		return
	}
	got, ok := f.live[p]
	if !ok {
		f.invalid("destroy of unknown or already destroyed %s", kind)
		return
	}
	if got != kind {
		f.invalid("destroy of %s as %s", got, kind)
	}
	delete(f.live, p)
	f.destroyLog = append(f.destroyLog, kind)
}

// liveCount counts alive handles, of the given kind or of any kind for "".
func (f *fakeDevice) liveCount(kind string) int {
	n := 0
	for _, k := range f.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

func (f *fakeDevice) completeFence(fence vk.Fence) {
	state := f.fences[fence]
	state.signaled, state.pending = true, false
	for _, cb := range f.commandBuffers {
		if cb.inUseBy == fence {
			cb.inUseBy = nil
		}
	}
}

// SwapChainDevice

func (f *fakeDevice) SwapChainSupport() (com.SwapChainDetails, error) {
	return f.details, nil
}

func (f *fakeDevice) QueueFamilies() com.QueueFamilyIndices {
	return f.families
}

func (f *fakeDevice) FindSupportedFormat(candidates []vk.Format, _ vk.ImageTiling, _ vk.FormatFeatureFlags) (vk.Format, error) {
	for _, c := range candidates {
		if c == f.depthFormat {
			return c, nil
		}
	}
	return vk.FormatUndefined, com.ErrNoSupportedFormat
}

func (f *fakeDevice) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	if info.OldSwapchain != nil {
		if _, ok := f.live[unsafe.Pointer(info.OldSwapchain)]; !ok {
			f.invalid("old swap chain handed over after it was destroyed")
		}
	}
	p, err := f.mint("swapchain")
	if err != nil {
		return nil, err
	}
	f.swapchainInfos = append(f.swapchainInfos, *info)
	sc := vk.Swapchain(p)
	n := int(info.MinImageCount)
	if f.forceImageCount > 0 {
		n = f.forceImageCount
	}
	images := make([]vk.Image, n)
	for i := range images {
		// owned by the swap chain, not tracked as live objects
		images[i] = vk.Image(unsafe.Pointer(new(uint64)))
	}
	f.swapchainImages[sc] = images
	return sc, nil
}

func (f *fakeDevice) SwapchainImages(sc vk.Swapchain) ([]vk.Image, error) {
	return f.swapchainImages[sc], nil
}

func (f *fakeDevice) DestroySwapchain(sc vk.Swapchain) {
	f.release(unsafe.Pointer(sc), "swapchain")
	delete(f.swapchainImages, sc)
}

func (f *fakeDevice) CreateImageView(_ vk.Image, _ vk.Format, _ vk.ImageAspectFlags) (vk.ImageView, error) {
	p, err := f.mint("image view")
	return vk.ImageView(p), err
}

func (f *fakeDevice) DestroyImageView(view vk.ImageView) {
	f.release(unsafe.Pointer(view), "image view")
}

func (f *fakeDevice) CreateImage(_, _ uint32, _ vk.Format, _ vk.ImageTiling, _ vk.ImageUsageFlags, _ vk.MemoryPropertyFlags) (vk.Image, vk.DeviceMemory, error) {
	img, err := f.mint("image")
	if err != nil {
		return nil, nil, err
	}
	mem, err := f.mint("memory")
	if err != nil {
		f.release(img, "image")
		return nil, nil, err
	}
	return vk.Image(img), vk.DeviceMemory(mem), nil
}

func (f *fakeDevice) DestroyImage(img vk.Image, mem vk.DeviceMemory) {
	f.release(unsafe.Pointer(img), "image")
	f.release(unsafe.Pointer(mem), "memory")
}

func (f *fakeDevice) CreateRenderPass(_ *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	p, err := f.mint("render pass")
	return vk.RenderPass(p), err
}

func (f *fakeDevice) DestroyRenderPass(rp vk.RenderPass) {
	f.release(unsafe.Pointer(rp), "render pass")
}

func (f *fakeDevice) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	p, err := f.mint("framebuffer")
	if err != nil {
		return nil, err
	}
	f.framebufferInfos = append(f.framebufferInfos, *info)
	return vk.Framebuffer(p), nil
}

func (f *fakeDevice) DestroyFramebuffer(fb vk.Framebuffer) {
	f.release(unsafe.Pointer(fb), "framebuffer")
}

func (f *fakeDevice) CreateSemaphore() (vk.Semaphore, error) {
	p, err := f.mint("semaphore")
	if err != nil {
		return nil, err
	}
	sem := vk.Semaphore(p)
	f.semaphores[sem] = false
	return sem, nil
}

func (f *fakeDevice) DestroySemaphore(sem vk.Semaphore) {
	f.release(unsafe.Pointer(sem), "semaphore")
	delete(f.semaphores, sem)
}

func (f *fakeDevice) CreateFence(signaled bool) (vk.Fence, error) {
	p, err := f.mint("fence")
	if err != nil {
		return nil, err
	}
	fence := vk.Fence(p)
	f.fences[fence] = &fakeFence{signaled: signaled}
	return fence, nil
}

func (f *fakeDevice) DestroyFence(fence vk.Fence) {
	if state, ok := f.fences[fence]; ok && state.pending {
		f.invalid("fence destroyed while still in use")
	}
	f.release(unsafe.Pointer(fence), "fence")
	delete(f.fences, fence)
}

func (f *fakeDevice) WaitForFences(fences []vk.Fence, _ uint64) error {
	for _, fence := range fences {
		f.fenceWaits = append(f.fenceWaits, fence)
		state, ok := f.fences[fence]
		if !ok {
			f.invalid("wait on unknown fence")
			return errors.New("unknown fence")
		}
		switch {
		case state.pending && !f.lyingWaits:
			f.completeFence(fence)
		case !state.pending && !state.signaled:
			// nothing will ever signal this fence
			return errors.New("wait on unsignaled fence without pending work")
		}
	}
	return nil
}

func (f *fakeDevice) ResetFences(fences []vk.Fence) error {
	for _, fence := range fences {
		state := f.fences[fence]
		if state.pending {
			f.invalid("reset of fence still in use")
		}
		state.signaled = false
	}
	return nil
}

func (f *fakeDevice) AcquireNextImage(sc vk.Swapchain, _ uint64, sem vk.Semaphore) (uint32, vk.Result) {
	res := vk.Success
	if len(f.acquireResults) > 0 {
		res, f.acquireResults = f.acquireResults[0], f.acquireResults[1:]
	}
	if res != vk.Success && res != vk.Suboptimal {
		return 0, res
	}
	if f.semaphores[sem] {
		f.invalid("acquire signals a semaphore that is already signaled")
	}
	f.semaphores[sem] = true
	idx := f.nextImage[sc]
	f.nextImage[sc] = (idx + 1) % uint32(len(f.swapchainImages[sc]))
	return idx, res
}

func (f *fakeDevice) QueueSubmit(submits []vk.SubmitInfo, fence vk.Fence) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	if state := f.fences[fence]; state.pending || state.signaled {
		f.invalid("submit with a fence that is not in the unsignaled state")
	}
	for _, s := range submits {
		for _, sem := range s.PWaitSemaphores {
			if !f.semaphores[sem] {
				f.invalid("submit waits on a semaphore nothing signals")
			}
			f.semaphores[sem] = false
		}
		for _, cb := range s.PCommandBuffers {
			state, ok := f.commandBuffers[cb]
			switch {
			case !ok:
				f.invalid("submit of unknown command buffer")
			case !state.ended:
				f.invalid("submit of command buffer that was not ended")
			default:
				state.inUseBy = fence
				f.rendered = f.rendered || state.passes > 0
			}
		}
		for _, sem := range s.PSignalSemaphores {
			f.semaphores[sem] = true
		}
		var mask vk.PipelineStageFlags
		if len(s.PWaitDstStageMask) > 0 {
			mask = s.PWaitDstStageMask[0]
		}
		f.submits = append(f.submits, fakeSubmit{buffers: s.PCommandBuffers, stageMask: mask, fence: fence})
	}
	f.fences[fence].pending = true
	return nil
}

func (f *fakeDevice) QueuePresent(info *vk.PresentInfo) vk.Result {
	for _, sem := range info.PWaitSemaphores {
		if !f.semaphores[sem] {
			f.invalid("present waits on a semaphore nothing signals")
		}
		f.semaphores[sem] = false
	}
	if !f.rendered {
		f.invalid("presented image never transitioned to the present layout")
	}
	f.rendered = false
	f.presents = append(f.presents, *info)
	if len(f.presentResults) > 0 {
		var res vk.Result
		res, f.presentResults = f.presentResults[0], f.presentResults[1:]
		return res
	}
	return vk.Success
}

// Device

func (f *fakeDevice) WaitIdle() error {
	f.waitIdles++
	for fence, state := range f.fences {
		if state.pending {
			f.completeFence(fence)
		}
	}
	return nil
}

func (f *fakeDevice) AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := f.mint("command buffer")
		if err != nil {
			return nil, err
		}
		cb := vk.CommandBuffer(p)
		f.commandBuffers[cb] = &fakeCommandBuffer{}
		buffers = append(buffers, cb)
	}
	f.allocated += int(count)
	return buffers, nil
}

func (f *fakeDevice) FreeCommandBuffers(buffers []vk.CommandBuffer) {
	for _, cb := range buffers {
		if state, ok := f.commandBuffers[cb]; ok && state.inUseBy != nil {
			f.invalid("command buffer freed while still in use")
		}
		f.release(unsafe.Pointer(cb), "command buffer")
		delete(f.commandBuffers, cb)
	}
	f.freed += len(buffers)
}

func (f *fakeDevice) BeginCommandBuffer(cb vk.CommandBuffer) error {
	state, ok := f.commandBuffers[cb]
	if !ok {
		f.invalid("begin of unknown command buffer")
		return errors.New("unknown command buffer")
	}
	if state.inUseBy != nil {
		f.invalid("command buffer re-recorded while still in use")
	}
	state.recording, state.ended = true, false
	state.inPass, state.passes = false, 0
	return nil
}

func (f *fakeDevice) EndCommandBuffer(cb vk.CommandBuffer) error {
	state, ok := f.commandBuffers[cb]
	if !ok || !state.recording {
		f.invalid("end of command buffer that is not recording")
		return errors.New("command buffer not recording")
	}
	if state.inPass {
		f.invalid("command buffer ended inside a render pass")
	}
	state.recording, state.ended = false, true
	return nil
}

func (f *fakeDevice) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	state, ok := f.commandBuffers[cb]
	switch {
	case !ok || !state.recording:
		f.invalid("render pass begun outside of recording")
	case state.inPass:
		f.invalid("render pass begun inside another render pass")
	default:
		state.inPass = true
	}
	f.passBegins = append(f.passBegins, *info)
}

func (f *fakeDevice) CmdSetViewport(_ vk.CommandBuffer, viewports []vk.Viewport) {
	f.viewports = append(f.viewports, viewports...)
}

func (f *fakeDevice) CmdSetScissor(_ vk.CommandBuffer, scissors []vk.Rect2D) {
	f.scissors = append(f.scissors, scissors...)
}

func (f *fakeDevice) CmdEndRenderPass(cb vk.CommandBuffer) {
	if state, ok := f.commandBuffers[cb]; ok && state.inPass {
		state.inPass = false
		state.passes++
	} else {
		f.invalid("render pass ended that was never begun")
	}
	f.passEnds++
}

// fakeWindow reports the extents queued in extents, moving on to the next one with every WaitEvents call.
// onWait runs after each WaitEvents, standing in for whatever the delivered event changes.
type fakeWindow struct {
	extents []vk.Extent2D
	waits   int
	resized bool
	closed  bool
	onWait  func()
}

func newFakeWindow(w, h uint32) *fakeWindow {
	return &fakeWindow{extents: []vk.Extent2D{{Width: w, Height: h}}}
}

func (w *fakeWindow) Extent() vk.Extent2D {
	return w.extents[0]
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if len(w.extents) > 1 {
		w.extents = w.extents[1:]
	}
	if w.onWait != nil {
		w.onWait()
	}
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closed
}

func (w *fakeWindow) WasResized() bool {
	return w.resized
}

func (w *fakeWindow) ResetResizedFlag() {
	w.resized = false
}
