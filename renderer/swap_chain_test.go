package renderer

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vk "github.com/goki/vulkan"
)

var testExtent = vk.Extent2D{Width: 800, Height: 600}

func TestNewSwapChainRejectsZeroExtent(t *testing.T) {
	dev := newFakeDevice()
	for _, extent := range []vk.Extent2D{{}, {Width: 800}, {Height: 600}} {
		_, err := NewSwapChain(dev, extent, nil)
		assert.True(t, errors.Is(err, ErrZeroExtent), "extent %v", extent)
	}
	assert.Empty(t, dev.swapchainInfos)
	assert.Zero(t, dev.liveCount(""))

	// the window has a size but the surface does not
	dev.details.Capabilities.CurrentExtent = vk.Extent2D{Height: 600}
	_, err := NewSwapChain(dev, testExtent, nil)
	assert.True(t, errors.Is(err, ErrZeroExtent))
	assert.Empty(t, dev.swapchainInfos)
	assert.Zero(t, dev.liveCount(""))
	assert.Empty(t, dev.validationErrors)
}

func TestNewSwapChainNegotiation(t *testing.T) {
	dev := newFakeDevice()
	dev.details.Formats = []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	sc, err := NewSwapChain(dev, vk.Extent2D{Width: 5000, Height: 300}, nil)
	require.NoError(t, err)
	defer sc.Destroy()

	assert.Equal(t, vk.FormatB8g8r8a8Srgb, sc.ImageFormat())
	assert.Equal(t, vk.FormatD32Sfloat, sc.DepthFormat())
	assert.Equal(t, vk.PresentModeMailbox, sc.PresentMode())
	// undefined current extent: the requested one is clamped to the surface limits
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 300}, sc.Extent())
	assert.Equal(t, 3, sc.ImageCount(), "min image count + 1")

	require.Len(t, dev.swapchainInfos, 1)
	info := dev.swapchainInfos[0]
	assert.Equal(t, uint32(3), info.MinImageCount)
	assert.Equal(t, vk.SharingModeExclusive, info.ImageSharingMode)
	assert.Nil(t, info.OldSwapchain)
}

func TestNewSwapChainFallbacks(t *testing.T) {
	dev := newFakeDevice()
	dev.details.Formats = []vk.SurfaceFormat{{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}}
	dev.details.PresentModes = []vk.PresentMode{vk.PresentModeImmediate}
	dev.details.Capabilities.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	dev.details.Capabilities.MinImageCount = 3
	dev.details.Capabilities.MaxImageCount = 3
	dev.depthFormat = vk.FormatD24UnormS8Uint

	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	defer sc.Destroy()

	assert.Equal(t, vk.FormatR8g8b8a8Unorm, sc.ImageFormat())
	assert.Equal(t, vk.PresentModeFifo, sc.PresentMode())
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, sc.Extent(), "surface extent wins when defined")
	assert.Equal(t, 3, sc.ImageCount(), "capped by max image count")
	assert.Equal(t, vk.FormatD24UnormS8Uint, sc.DepthFormat())
	assert.InDelta(t, 1024.0/768.0, sc.ExtentAspectRatio(), 1e-6)
}

func TestNewSwapChainNoSurfaceFormats(t *testing.T) {
	dev := newFakeDevice()
	dev.details.Formats = nil
	_, err := NewSwapChain(dev, testExtent, nil)
	assert.Error(t, err)
	assert.Zero(t, dev.liveCount(""))
}

func TestNewSwapChainConcurrentSharing(t *testing.T) {
	dev := newFakeDevice()
	present := uint32(1)
	dev.families.PresentFamily = &present

	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	defer sc.Destroy()

	info := dev.swapchainInfos[0]
	assert.Equal(t, vk.SharingModeConcurrent, info.ImageSharingMode)
	assert.Equal(t, []uint32{0, 1}, info.PQueueFamilyIndices)
}

func TestNewSwapChainPerImageResources(t *testing.T) {
	dev := newFakeDevice()
	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)

	n := sc.ImageCount()
	assert.Equal(t, 2*n, dev.liveCount("image view"), "color and depth view per image")
	assert.Equal(t, n, dev.liveCount("image"))
	assert.Equal(t, n, dev.liveCount("memory"))
	assert.Equal(t, n, dev.liveCount("framebuffer"))
	assert.Equal(t, 1, dev.liveCount("render pass"))
	assert.Equal(t, 2*MaxFramesInFlight, dev.liveCount("semaphore"))
	assert.Equal(t, MaxFramesInFlight, dev.liveCount("fence"))
	for fence, state := range dev.fences {
		assert.True(t, state.signaled, "fence %v created signaled", fence)
	}

	require.Len(t, dev.framebufferInfos, n)
	for i, info := range dev.framebufferInfos {
		require.Len(t, info.PAttachments, 2)
		assert.Equal(t, sc.ImageView(i), info.PAttachments[0])
		assert.Equal(t, sc.depthImageViews[i], info.PAttachments[1])
		assert.Equal(t, sc.RenderPass(), info.RenderPass)
		assert.Equal(t, testExtent.Width, info.Width)
		assert.Equal(t, sc.FrameBuffer(i), sc.frameBuffers[i])
	}
	assert.Len(t, sc.sync.imagesInFlight, n)
	for _, fence := range sc.sync.imagesInFlight {
		assert.Nil(t, fence)
	}

	sc.Destroy()
	assert.Zero(t, dev.liveCount(""))
	assert.Empty(t, dev.validationErrors)
}

func TestNewSwapChainCleansUpOnFailure(t *testing.T) {
	for _, kind := range []string{"swapchain", "image view", "image", "memory", "render pass", "framebuffer", "semaphore", "fence"} {
		t.Run(kind, func(t *testing.T) {
			dev := newFakeDevice()
			dev.failCreate = kind
			sc, err := NewSwapChain(dev, testExtent, nil)
			assert.Error(t, err)
			assert.Nil(t, sc)
			assert.Zero(t, dev.liveCount(""), "leaked: %v", dev.live)
			assert.Empty(t, dev.validationErrors)
		})
	}
}

func TestSwapChainDestroyOrderAndIdempotence(t *testing.T) {
	dev := newFakeDevice()
	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)

	sc.Destroy()
	destroyed := len(dev.destroyLog)
	sc.Destroy()
	assert.Len(t, dev.destroyLog, destroyed, "second Destroy is a no-op")
	assert.Empty(t, dev.validationErrors)

	first := func(kind string) int {
		for i, k := range dev.destroyLog {
			if k == kind {
				return i
			}
		}
		return -1
	}
	last := func(kind string) int {
		idx := -1
		for i, k := range dev.destroyLog {
			if k == kind {
				idx = i
			}
		}
		return idx
	}
	assert.Less(t, last("framebuffer"), first("render pass"))
	assert.Less(t, last("framebuffer"), first("image view"))
	assert.Less(t, last("image view"), first("swapchain"))
	assert.Less(t, first("swapchain"), first("fence"))
}

func TestSwapChainChainsOldHandle(t *testing.T) {
	dev := newFakeDevice()
	first, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	second, err := NewSwapChain(dev, vk.Extent2D{Width: 1024, Height: 768}, first)
	require.NoError(t, err)

	require.Len(t, dev.swapchainInfos, 2)
	assert.Equal(t, first.Handle(), dev.swapchainInfos[1].OldSwapchain)
	assert.True(t, first.CompareSwapFormats(second))

	first.Destroy()
	assert.Equal(t, 1, dev.liveCount("swapchain"))
	second.Destroy()
	assert.Zero(t, dev.liveCount(""))
	assert.Empty(t, dev.validationErrors)
}

func TestCompareSwapFormats(t *testing.T) {
	a := &SwapChain{imageFormat: vk.FormatB8g8r8a8Srgb, depthFormat: vk.FormatD32Sfloat}
	b := &SwapChain{imageFormat: vk.FormatB8g8r8a8Srgb, depthFormat: vk.FormatD32Sfloat}
	assert.True(t, a.CompareSwapFormats(b))
	b.depthFormat = vk.FormatD24UnormS8Uint
	assert.False(t, a.CompareSwapFormats(b))
	b.depthFormat, b.imageFormat = vk.FormatD32Sfloat, vk.FormatR8g8b8a8Unorm
	assert.False(t, a.CompareSwapFormats(b))
}

func TestSwapChainAcquireSubmitCycle(t *testing.T) {
	dev := newFakeDevice()
	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	defer sc.Destroy()
	buffers, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)

	for frame := 0; frame < 5; frame++ {
		assert.Equal(t, frame%MaxFramesInFlight, sc.CurrentFrame())
		idx, status, err := sc.AcquireNextImage()
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, status)
		assert.Equal(t, uint32(frame%sc.ImageCount()), idx)

		require.NoError(t, dev.BeginCommandBuffer(buffers[0]))
		dev.CmdBeginRenderPass(buffers[0], &vk.RenderPassBeginInfo{RenderPass: sc.RenderPass()})
		dev.CmdEndRenderPass(buffers[0])
		require.NoError(t, dev.EndCommandBuffer(buffers[0]))
		status, err = sc.SubmitCommandBuffers(buffers, idx)
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, status)
		// a single buffer is re-recorded every frame here, so wait the way the Renderer's slots would
		require.NoError(t, dev.WaitIdle())
	}
	require.Len(t, dev.submits, 5)
	for _, s := range dev.submits {
		assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), s.stageMask)
	}
	require.Len(t, dev.presents, 5)
	assert.Equal(t, []vk.Swapchain{sc.Handle()}, dev.presents[0].PSwapchains)
	dev.FreeCommandBuffers(buffers)
	assert.Empty(t, dev.validationErrors)
}

func TestSwapChainStatusMapping(t *testing.T) {
	dev := newFakeDevice()
	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	defer sc.Destroy()

	dev.acquireResults = []vk.Result{vk.ErrorOutOfDate, vk.Suboptimal, vk.ErrorDeviceLost}
	_, status, err := sc.AcquireNextImage()
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfDate, status)

	_, status, err = sc.AcquireNextImage()
	require.NoError(t, err)
	assert.Equal(t, StatusSuboptimal, status)

	_, _, err = sc.AcquireNextImage()
	assert.True(t, errors.Is(err, ErrUnexpectedResult))
}

func TestSubmitRejectsImageIndexOutOfRange(t *testing.T) {
	dev := newFakeDevice()
	sc, err := NewSwapChain(dev, testExtent, nil)
	require.NoError(t, err)
	defer sc.Destroy()

	_, err = sc.SubmitCommandBuffers(nil, uint32(sc.ImageCount()))
	assert.Error(t, err)
	assert.Empty(t, dev.submits)
	assert.Equal(t, 0, sc.CurrentFrame())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "suboptimal", StatusSuboptimal.String())
	assert.Equal(t, "out of date", StatusOutOfDate.String())
	assert.Equal(t, "unknown", Status(42).String())
}
