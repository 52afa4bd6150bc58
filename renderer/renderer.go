package renderer

import (
	"log"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// Renderer drives the per frame cycle on top of a SwapChain: acquire, record, submit and present. It owns
// the swap chain, recreates it whenever the surface changes and keeps one primary command buffer per swap
// chain image. The buffer recorded in a frame is picked by the frame index, which cycles through
// MaxFramesInFlight.
type Renderer struct {
	win Window
	dev Device

	swapChain      *SwapChain
	commandBuffers []vk.CommandBuffer
	systems        []RenderSystem

	currentImageIndex uint32
	currentFrameIndex int
	frameCount        uint64
	frameStarted      bool
	destroyed         bool
}

// NewRenderer creates the first swap chain for the window's current extent, waiting for the window to
// become visible if it is minimized, and allocates the command buffers.
func NewRenderer(win Window, dev Device) (*Renderer, error) {
	r := &Renderer{
		win: win,
		dev: dev,
	}
	if err := r.recreateSwapChain(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// waitForExtent blocks on window events while the window has no drawable area, e.g. while minimized.
func (r *Renderer) waitForExtent() (vk.Extent2D, error) {
	extent := r.win.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		if r.win.ShouldClose() {
			return extent, ErrWindowClosed
		}
		r.win.WaitEvents()
		extent = r.win.Extent()
	}
	return extent, nil
}

func (r *Renderer) recreateSwapChain() error {
	old := r.swapChain
	var sc *SwapChain
	for sc == nil {
		extent, err := r.waitForExtent()
		if err != nil {
			return err
		}
		if err = r.dev.WaitIdle(); err != nil {
			return errors.Wrap(err, "wait for device idle before swap chain recreation")
		}
		sc, err = NewSwapChain(r.dev, extent, old)
		if errors.Is(err, ErrZeroExtent) {
			// the surface may still report 0x0 while the window already has a drawable size
			if r.win.ShouldClose() {
				return ErrWindowClosed
			}
			r.win.WaitEvents()
			continue
		}
		if err != nil {
			return errors.Wrap(err, "recreate swap chain")
		}
	}
	r.swapChain = sc
	if old != nil {
		formatsMatch := old.CompareSwapFormats(sc)
		old.Destroy()
		if !formatsMatch {
			return ErrFormatChanged
		}
	}
	if sc.ImageCount() < MaxFramesInFlight {
		return errors.Wrapf(ErrTooFewImages, "got %d images, need %d", sc.ImageCount(), MaxFramesInFlight)
	}

	if len(r.commandBuffers) != sc.ImageCount() {
		r.dev.FreeCommandBuffers(r.commandBuffers)
		r.commandBuffers = nil
		buffers, err := r.dev.AllocateCommandBuffers(uint32(sc.ImageCount()))
		if err != nil {
			return errors.Wrap(err, "allocate command buffers")
		}
		r.commandBuffers = buffers
		log.Printf("Successfully allocated %d command buffers", len(buffers))
	}
	return nil
}

// BeginFrame acquires the next swap chain image and begins recording the frame's command buffer. A nil
// buffer without error means the swap chain was out of date and has been recreated; the caller skips
// drawing for this tick.
func (r *Renderer) BeginFrame() (vk.CommandBuffer, error) {
	if r.frameStarted {
		return nil, ErrFrameInProgress
	}
	imageIndex, status, err := r.swapChain.AcquireNextImage()
	if err != nil {
		return nil, err
	}
	if status == StatusOutOfDate {
		return nil, r.recreateSwapChain()
	}

	cb := r.commandBuffers[r.currentFrameIndex]
	if err = r.dev.BeginCommandBuffer(cb); err != nil {
		return nil, errors.Wrapf(err, "begin recording command buffer of frame %d", r.currentFrameIndex)
	}
	r.currentImageIndex = imageIndex
	r.frameStarted = true
	return cb, nil
}

// EndFrame finishes recording, submits and presents. Whatever the outcome, the frame is over afterwards and
// the frame index has moved on; a returned error is fatal to the render loop.
func (r *Renderer) EndFrame() error {
	if !r.frameStarted {
		return ErrFrameNotInProgress
	}
	defer func() {
		r.frameStarted = false
		r.currentFrameIndex = (r.currentFrameIndex + 1) % MaxFramesInFlight
		r.frameCount++
	}()

	cb := r.commandBuffers[r.currentFrameIndex]
	if err := r.dev.EndCommandBuffer(cb); err != nil {
		return errors.Wrapf(err, "record command buffer of frame %d", r.currentFrameIndex)
	}
	status, err := r.swapChain.SubmitCommandBuffers([]vk.CommandBuffer{cb}, r.currentImageIndex)
	if err != nil {
		return err
	}
	if status == StatusOutOfDate || status == StatusSuboptimal || r.win.WasResized() {
		r.win.ResetResizedFlag()
		return r.recreateSwapChain()
	}
	return nil
}

// BeginSwapChainRenderPass starts the render pass on the acquired image, clearing color and depth, and sets
// viewport and scissor to the full swap chain extent.
func (r *Renderer) BeginSwapChainRenderPass(cb vk.CommandBuffer) error {
	if err := r.checkFrameBuffer(cb); err != nil {
		return err
	}
	extent := r.swapChain.Extent()
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0.01, 0.01, 0.01, 1}), // color
		vk.NewClearDepthStencil(1, 0),                    // depth, stencil
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		PNext:       nil,
		RenderPass:  r.swapChain.RenderPass(),
		Framebuffer: r.swapChain.FrameBuffer(int(r.currentImageIndex)),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	r.dev.CmdBeginRenderPass(cb, &renderPassInfo)

	viewport := []vk.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1.0,
		},
	}
	r.dev.CmdSetViewport(cb, viewport)
	scissor := []vk.Rect2D{
		{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
	}
	r.dev.CmdSetScissor(cb, scissor)
	return nil
}

func (r *Renderer) EndSwapChainRenderPass(cb vk.CommandBuffer) error {
	if err := r.checkFrameBuffer(cb); err != nil {
		return err
	}
	r.dev.CmdEndRenderPass(cb)
	return nil
}

func (r *Renderer) checkFrameBuffer(cb vk.CommandBuffer) error {
	if !r.frameStarted {
		return ErrFrameNotInProgress
	}
	if cb != r.commandBuffers[r.currentFrameIndex] {
		return ErrForeignCommandBuffer
	}
	return nil
}

// AddSystem registers a system RenderFrame calls inside the render pass, in order of registration.
func (r *Renderer) AddSystem(s RenderSystem) {
	r.systems = append(r.systems, s)
}

// RenderFrame runs one complete frame with the registered systems. It reports false if the frame was
// skipped because the swap chain had to be recreated first.
func (r *Renderer) RenderFrame(params FrameParams) (bool, error) {
	cb, err := r.BeginFrame()
	if err != nil {
		return false, err
	}
	if cb == nil {
		return false, nil
	}
	frame := &FrameInfo{
		FrameIndex:    r.currentFrameIndex,
		FrameTime:     params.FrameTime,
		CommandBuffer: cb,
		Camera:        params.Camera,
		GameObjects:   params.GameObjects,
	}
	if r.currentFrameIndex < len(params.GlobalDescriptorSets) {
		frame.GlobalDescriptorSet = params.GlobalDescriptorSets[r.currentFrameIndex]
	}
	if err = r.recordFrame(frame, params.Prepare); err != nil {
		// the frame still has to be closed so the next BeginFrame starts clean
		if endErr := r.EndFrame(); endErr != nil {
			log.Printf("Failed to end abandoned frame: %v", endErr)
		}
		return false, err
	}
	if err = r.EndFrame(); err != nil {
		return false, err
	}
	return true, nil
}

// recordFrame runs prepare and the systems. If prepare fails the systems are skipped, but the render pass
// is still recorded: clearing the image is what moves it into the layout it gets presented in.
func (r *Renderer) recordFrame(frame *FrameInfo, prepare func(*FrameInfo) error) error {
	var prepareErr error
	if prepare != nil {
		if err := prepare(frame); err != nil {
			prepareErr = errors.Wrap(err, "prepare frame")
		}
	}
	if err := r.BeginSwapChainRenderPass(frame.CommandBuffer); err != nil {
		return err
	}
	if prepareErr == nil {
		for _, s := range r.systems {
			s.Render(frame)
		}
	}
	if err := r.EndSwapChainRenderPass(frame.CommandBuffer); err != nil {
		return err
	}
	return prepareErr
}

func (r *Renderer) SwapChainRenderPass() vk.RenderPass {
	return r.swapChain.RenderPass()
}

func (r *Renderer) AspectRatio() float32 {
	return r.swapChain.ExtentAspectRatio()
}

func (r *Renderer) IsFrameInProgress() bool {
	return r.frameStarted
}

func (r *Renderer) CurrentCommandBuffer() (vk.CommandBuffer, error) {
	if !r.frameStarted {
		return nil, ErrFrameNotInProgress
	}
	return r.commandBuffers[r.currentFrameIndex], nil
}

// FrameIndex is the frame in flight slot, in [0, MaxFramesInFlight), of the frame being recorded.
func (r *Renderer) FrameIndex() (int, error) {
	if !r.frameStarted {
		return 0, ErrFrameNotInProgress
	}
	return r.currentFrameIndex, nil
}

func (r *Renderer) ImageCount() int {
	return r.swapChain.ImageCount()
}

func (r *Renderer) CommandBufferCount() int {
	return len(r.commandBuffers)
}

// FrameCount is the number of frames ended so far, including frames that ended in a recreation.
func (r *Renderer) FrameCount() uint64 {
	return r.frameCount
}

// Destroy waits for the device to become idle and releases command buffers and swap chain. Calling it again
// is a no-op.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if err := r.dev.WaitIdle(); err != nil {
		log.Printf("Failed to wait for device idle on renderer teardown: %v", err)
	}
	r.dev.FreeCommandBuffers(r.commandBuffers)
	r.commandBuffers = nil
	if r.swapChain != nil {
		r.swapChain.Destroy()
		r.swapChain = nil
	}
}
