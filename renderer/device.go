package renderer

import (
	com "vulkan_engine/common"

	vk "github.com/goki/vulkan"
)

// SwapChainDevice is the part of the GPU context a SwapChain builds on. It covers surface queries, the
// resources owned by a swap chain, the synchronization primitives and the graphics/present queues.
// *common.Device is the production implementation.
type SwapChainDevice interface {
	SwapChainSupport() (com.SwapChainDetails, error)
	QueueFamilies() com.QueueFamilyIndices
	FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error)

	CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(sc vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(sc vk.Swapchain)
	CreateImageView(img vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error)
	DestroyImageView(view vk.ImageView)
	CreateImage(w, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (vk.Image, vk.DeviceMemory, error)
	DestroyImage(img vk.Image, mem vk.DeviceMemory)
	CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(rp vk.RenderPass)
	CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(fb vk.Framebuffer)
	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(sem vk.Semaphore)
	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(fence vk.Fence)

	WaitForFences(fences []vk.Fence, timeout uint64) error
	ResetFences(fences []vk.Fence) error
	AcquireNextImage(sc vk.Swapchain, timeout uint64, sem vk.Semaphore) (uint32, vk.Result)
	QueueSubmit(submits []vk.SubmitInfo, fence vk.Fence) error
	QueuePresent(info *vk.PresentInfo) vk.Result
}

// Device extends SwapChainDevice with what the Renderer needs on top: the command pool and the handful
// of commands it records itself.
type Device interface {
	SwapChainDevice

	WaitIdle() error
	AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(buffers []vk.CommandBuffer)
	BeginCommandBuffer(cb vk.CommandBuffer) error
	EndCommandBuffer(cb vk.CommandBuffer) error
	CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo)
	CmdSetViewport(cb vk.CommandBuffer, viewports []vk.Viewport)
	CmdSetScissor(cb vk.CommandBuffer, scissors []vk.Rect2D)
	CmdEndRenderPass(cb vk.CommandBuffer)
}

// Window is the presentation side the Renderer polls: the drawable size, the resize latch and whether the
// user asked to close it.
type Window interface {
	Extent() vk.Extent2D
	// WaitEvents blocks until at least one platform event has been handled.
	WaitEvents()
	WasResized() bool
	ResetResizedFlag()
	ShouldClose() bool
}
