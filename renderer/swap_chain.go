package renderer

import (
	"log"
	"math"

	com "vulkan_engine/common"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// SwapChain owns the presentable images of a surface and everything derived from them: color views,
// one depth attachment per image, the render pass, one framebuffer per image and the frame slot
// synchronization. A SwapChain is only ever handled by pointer and released exactly once via Destroy.
type SwapChain struct {
	dev          SwapChainDevice
	handle       vk.Swapchain
	windowExtent vk.Extent2D

	imageFormat vk.Format
	depthFormat vk.Format
	presentMode vk.PresentMode
	extent      vk.Extent2D

	images          []vk.Image
	imageViews      []vk.ImageView
	depthImages     []vk.Image
	depthImageMems  []vk.DeviceMemory
	depthImageViews []vk.ImageView
	renderPass      vk.RenderPass
	frameBuffers    []vk.Framebuffer

	sync      *frameSync
	destroyed bool
}

// NewSwapChain negotiates and builds a swap chain for windowExtent, which must be non-zero. When previous
// is given its handle is passed on to the driver so in-flight presentation can hand over smoothly. The
// reference to previous is not kept; its owner still has to destroy it.
func NewSwapChain(dev SwapChainDevice, windowExtent vk.Extent2D, previous *SwapChain) (*SwapChain, error) {
	if windowExtent.Width == 0 || windowExtent.Height == 0 {
		return nil, errors.Wrapf(ErrZeroExtent, "requested %dx%d", windowExtent.Width, windowExtent.Height)
	}
	var oldHandle vk.Swapchain
	if previous != nil {
		oldHandle = previous.handle
	}

	sc := &SwapChain{
		dev:          dev,
		windowExtent: windowExtent,
	}
	steps := []func() error{
		func() error { return sc.createSwapChainHandle(oldHandle) },
		sc.createImageViews,
		sc.createDepthResources,
		sc.createRenderPass,
		sc.createFrameBuffers,
		sc.createSyncObjects,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			sc.Destroy()
			return nil, err
		}
	}
	log.Printf("Successfully created swap chain (%dx%d, %d images, present mode: %s, color format: %d, depth format: %d)",
		sc.extent.Width, sc.extent.Height, len(sc.images), com.PresentModeName(sc.presentMode), sc.imageFormat, sc.depthFormat)
	return sc, nil
}

func (sc *SwapChain) createSwapChainHandle(oldHandle vk.Swapchain) error {
	details, err := sc.dev.SwapChainSupport()
	if err != nil {
		return errors.Wrap(err, "read swap chain support details")
	}
	surfaceFormat, err := details.SelectSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	if err != nil {
		return err
	}
	sc.presentMode = details.SelectPresentMode(vk.PresentModeMailbox)
	sc.extent = details.SelectExtent(sc.windowExtent)
	if sc.extent.Width == 0 || sc.extent.Height == 0 {
		return errors.Wrapf(ErrZeroExtent, "surface reports %dx%d", sc.extent.Width, sc.extent.Height)
	}
	imgCount := details.ImageCount()

	// Depending on whether our queue families are the same for graphics and presentation, we need to choose different
	// swap chain configurations: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
	indices := sc.dev.QueueFamilies()
	graphics, present, err := indices.Indices()
	if err != nil {
		return err
	}
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if graphics != present {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = []uint32{graphics, present}
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               details.Surface,
		MinImageCount:         imgCount,
		ImageFormat:           surfaceFormat.Format,
		ImageColorSpace:       surfaceFormat.ColorSpace,
		ImageExtent:           sc.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          details.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.presentMode,
		Clipped:               vk.True,
		OldSwapchain:          oldHandle,
	}
	sc.handle, err = sc.dev.CreateSwapchain(createInfo)
	if err != nil {
		return errors.Wrap(err, "create swap chain")
	}
	sc.images, err = sc.dev.SwapchainImages(sc.handle)
	if err != nil {
		return errors.Wrap(err, "read swap chain images")
	}
	sc.imageFormat = surfaceFormat.Format
	return nil
}

func (sc *SwapChain) createImageViews() error {
	sc.imageViews = make([]vk.ImageView, 0, len(sc.images))
	for i := range sc.images {
		view, err := sc.dev.CreateImageView(sc.images[i], sc.imageFormat, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return errors.Wrapf(err, "create swap chain image view [%d]", i)
		}
		sc.imageViews = append(sc.imageViews, view)
	}
	return nil
}

func (sc *SwapChain) createDepthResources() error {
	format, err := sc.dev.FindSupportedFormat(
		depthFormatCandidates,
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
	if err != nil {
		return errors.Wrap(err, "find depth format")
	}
	sc.depthFormat = format

	n := len(sc.images)
	sc.depthImages = make([]vk.Image, 0, n)
	sc.depthImageMems = make([]vk.DeviceMemory, 0, n)
	sc.depthImageViews = make([]vk.ImageView, 0, n)
	for i := 0; i < n; i++ {
		img, mem, err := sc.dev.CreateImage(
			sc.extent.Width,
			sc.extent.Height,
			format,
			vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		)
		if err != nil {
			return errors.Wrapf(err, "create depth image [%d]", i)
		}
		sc.depthImages = append(sc.depthImages, img)
		sc.depthImageMems = append(sc.depthImageMems, mem)

		view, err := sc.dev.CreateImageView(img, format, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
		if err != nil {
			return errors.Wrapf(err, "create depth image view [%d]", i)
		}
		sc.depthImageViews = append(sc.depthImageViews, view)
	}
	return nil
}

func (sc *SwapChain) createRenderPass() error {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         sc.imageFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         sc.depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PDepthStencilAttachment: &depthAttachmentRef,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		DependencyFlags: 0,
	}
	renderPassInfo := &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	rp, err := sc.dev.CreateRenderPass(renderPassInfo)
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}
	sc.renderPass = rp
	return nil
}

func (sc *SwapChain) createFrameBuffers() error {
	sc.frameBuffers = make([]vk.Framebuffer, 0, len(sc.imageViews))
	for i := range sc.imageViews {
		attachments := []vk.ImageView{sc.imageViews[i], sc.depthImageViews[i]}
		framebufferInfo := &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      sc.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}
		fb, err := sc.dev.CreateFramebuffer(framebufferInfo)
		if err != nil {
			return errors.Wrapf(err, "create frame buffer [%d]", i)
		}
		sc.frameBuffers = append(sc.frameBuffers, fb)
	}
	return nil
}

func (sc *SwapChain) createSyncObjects() error {
	fs, err := newFrameSync(sc.dev, len(sc.images))
	if err != nil {
		return err
	}
	sc.sync = fs
	return nil
}

// AcquireNextImage waits until the current frame slot may be reused and acquires the next presentable
// image. An out-of-date status means no image was acquired.
func (sc *SwapChain) AcquireNextImage() (uint32, Status, error) {
	if err := sc.sync.waitForSlot(); err != nil {
		return 0, StatusSuccess, err
	}
	imgIdx, res := sc.dev.AcquireNextImage(sc.handle, math.MaxUint64, sc.sync.imageAvailable[sc.sync.current])
	status, err := statusFromResult(res)
	if err != nil {
		return 0, status, errors.Wrap(err, "acquire next swap chain image")
	}
	return imgIdx, status, nil
}

// SubmitCommandBuffers submits the recorded buffers for imageIndex and queues the image for presentation.
// The returned status is the one reported by the presentation engine.
func (sc *SwapChain) SubmitCommandBuffers(buffers []vk.CommandBuffer, imageIndex uint32) (Status, error) {
	if int(imageIndex) >= len(sc.images) {
		return StatusSuccess, errors.Errorf("image index %d out of range, swap chain has %d images", imageIndex, len(sc.images))
	}
	if err := sc.sync.claimImage(imageIndex); err != nil {
		return StatusSuccess, err
	}

	slot := sc.sync.current
	fence := sc.sync.inFlight[slot]
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sc.sync.imageAvailable[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sc.sync.renderFinished[slot]},
	}
	// Reset the fence only if we are actually going to execute work that will put the fence into the signalled state
	if err := sc.dev.ResetFences([]vk.Fence{fence}); err != nil {
		return StatusSuccess, errors.Wrapf(err, "reset in flight fence of frame slot %d", slot)
	}
	if err := sc.dev.QueueSubmit([]vk.SubmitInfo{submitInfo}, fence); err != nil {
		return StatusSuccess, errors.Wrap(err, "submit draw command buffer")
	}

	presentInfo := &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sc.sync.renderFinished[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.handle},
		PImageIndices:      []uint32{imageIndex},
		PResults:           nil,
	}
	res := sc.dev.QueuePresent(presentInfo)
	sc.sync.advance()

	status, err := statusFromResult(res)
	if err != nil {
		return status, errors.Wrap(err, "present swap chain image")
	}
	return status, nil
}

// CompareSwapFormats reports whether both swap chains share color and depth formats, i.e. whether
// pipelines built against one render pass stay compatible with the other.
func (sc *SwapChain) CompareSwapFormats(other *SwapChain) bool {
	return sc.imageFormat == other.imageFormat && sc.depthFormat == other.depthFormat
}

// Destroy releases all owned handles in reverse order of creation. Calling it again is a no-op. The
// device must be idle, or at least done with this swap chain, before calling.
func (sc *SwapChain) Destroy() {
	if sc.destroyed {
		return
	}
	sc.destroyed = true

	for _, fb := range sc.frameBuffers {
		sc.dev.DestroyFramebuffer(fb)
	}
	if sc.renderPass != nil {
		sc.dev.DestroyRenderPass(sc.renderPass)
	}
	for _, view := range sc.depthImageViews {
		sc.dev.DestroyImageView(view)
	}
	for i := range sc.depthImages {
		sc.dev.DestroyImage(sc.depthImages[i], sc.depthImageMems[i])
	}
	for _, view := range sc.imageViews {
		sc.dev.DestroyImageView(view)
	}
	// Swap chain images are owned by the swap chain handle itself
	if sc.handle != nil {
		sc.dev.DestroySwapchain(sc.handle)
	}
	if sc.sync != nil {
		sc.sync.destroy()
	}

	sc.frameBuffers, sc.depthImageViews, sc.depthImages, sc.depthImageMems = nil, nil, nil, nil
	sc.imageViews, sc.images = nil, nil
	sc.renderPass, sc.handle, sc.sync = nil, nil, nil
}

func (sc *SwapChain) Handle() vk.Swapchain {
	return sc.handle
}

func (sc *SwapChain) ImageCount() int {
	return len(sc.images)
}

func (sc *SwapChain) FrameBuffer(i int) vk.Framebuffer {
	return sc.frameBuffers[i]
}

func (sc *SwapChain) ImageView(i int) vk.ImageView {
	return sc.imageViews[i]
}

func (sc *SwapChain) RenderPass() vk.RenderPass {
	return sc.renderPass
}

func (sc *SwapChain) ImageFormat() vk.Format {
	return sc.imageFormat
}

func (sc *SwapChain) DepthFormat() vk.Format {
	return sc.depthFormat
}

func (sc *SwapChain) PresentMode() vk.PresentMode {
	return sc.presentMode
}

func (sc *SwapChain) Extent() vk.Extent2D {
	return sc.extent
}

func (sc *SwapChain) Width() uint32 {
	return sc.extent.Width
}

func (sc *SwapChain) Height() uint32 {
	return sc.extent.Height
}

func (sc *SwapChain) ExtentAspectRatio() float32 {
	return float32(sc.extent.Width) / float32(sc.extent.Height)
}

// CurrentFrame is the frame slot whose semaphores and fence the next acquire/submit pair uses.
func (sc *SwapChain) CurrentFrame() int {
	return sc.sync.current
}
