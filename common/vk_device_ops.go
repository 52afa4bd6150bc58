package common

import (
	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// The operations in this file are the thin, error returning surface the renderer drives the GPU through. They
// only forward to the raw bindings with the handles kept by the Device filled in.

func (dc *Device) SwapChainSupport() (SwapChainDetails, error) {
	return ReadSwapChainSupportDetails(dc.PhysicalDevice, dc.surface)
}

func (dc *Device) QueueFamilies() QueueFamilyIndices {
	return dc.QFamilies
}

// FindSupportedFormat returns the first candidate whose features for the given tiling contain all requested ones.
func (dc *Device) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	return selectSupportedFormat(candidates, tiling, features, func(f vk.Format) vk.FormatProperties {
		return ReadFormatProperties(dc.PhysicalDevice, f)
	})
}

func selectSupportedFormat(
	candidates []vk.Format,
	tiling vk.ImageTiling,
	features vk.FormatFeatureFlags,
	props func(vk.Format) vk.FormatProperties,
) (vk.Format, error) {
	for _, format := range candidates {
		fProps := props(format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.Wrapf(ErrNoSupportedFormat, "none of %d candidates", len(candidates))
}

func (dc *Device) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	return VkCreateSwapChain(dc.D, info, nil)
}

func (dc *Device) SwapchainImages(sc vk.Swapchain) ([]vk.Image, error) {
	return ReadSwapChainImages(dc.D, sc)
}

func (dc *Device) DestroySwapchain(sc vk.Swapchain) {
	vk.DestroySwapchain(dc.D, sc, nil)
}

func (dc *Device) CreateImageView(img vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	return VKSCreate2DFullSizeImageView(dc.D, img, format, aspect)
}

func (dc *Device) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(dc.D, view, nil)
}

func (dc *Device) DestroyImage(img vk.Image, mem vk.DeviceMemory) {
	vk.DestroyImage(dc.D, img, nil)
	vk.FreeMemory(dc.D, mem, nil)
}

func (dc *Device) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	return VkCreateRenderPass(dc.D, info, nil)
}

func (dc *Device) DestroyRenderPass(rp vk.RenderPass) {
	vk.DestroyRenderPass(dc.D, rp, nil)
}

func (dc *Device) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	return VkCreateFrameBuffer(dc.D, info, nil)
}

func (dc *Device) DestroyFramebuffer(fb vk.Framebuffer) {
	vk.DestroyFramebuffer(dc.D, fb, nil)
}

func (dc *Device) CreateSemaphore() (vk.Semaphore, error) {
	return VkCreateSemaphore(dc.D, VKSemaphoreCreateInfo(), nil)
}

func (dc *Device) DestroySemaphore(sem vk.Semaphore) {
	vk.DestroySemaphore(dc.D, sem, nil)
}

func (dc *Device) CreateFence(signaled bool) (vk.Fence, error) {
	return VkCreateFence(dc.D, VKFenceCreateInfo(signaled), nil)
}

func (dc *Device) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(dc.D, fence, nil)
}

func (dc *Device) WaitForFences(fences []vk.Fence, timeout uint64) error {
	return vk.Error(vk.WaitForFences(dc.D, uint32(len(fences)), fences, vk.True, timeout))
}

func (dc *Device) ResetFences(fences []vk.Fence) error {
	return vk.Error(vk.ResetFences(dc.D, uint32(len(fences)), fences))
}

// AcquireNextImage returns the raw result so the caller can tell out-of-date and suboptimal apart from failures.
func (dc *Device) AcquireNextImage(sc vk.Swapchain, timeout uint64, sem vk.Semaphore) (uint32, vk.Result) {
	var imgIdx uint32
	res := vk.AcquireNextImage(dc.D, sc, timeout, sem, nil, &imgIdx)
	return imgIdx, res
}

func (dc *Device) QueueSubmit(submits []vk.SubmitInfo, fence vk.Fence) error {
	return vk.Error(vk.QueueSubmit(dc.GraphicsQ, uint32(len(submits)), submits, fence))
}

func (dc *Device) QueuePresent(info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(dc.PresentQ, info)
}

func (dc *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(dc.D))
}

func (dc *Device) AllocateCommandBuffers(count uint32) ([]vk.CommandBuffer, error) {
	return VKAllocateCommandBuffersPrimary(dc.D, dc.CommandPool, count)
}

func (dc *Device) FreeCommandBuffers(buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(dc.D, dc.CommandPool, uint32(len(buffers)), buffers)
}

func (dc *Device) BeginCommandBuffer(cb vk.CommandBuffer) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	return vk.Error(vk.BeginCommandBuffer(cb, &beginInfo))
}

func (dc *Device) EndCommandBuffer(cb vk.CommandBuffer) error {
	return vk.Error(vk.EndCommandBuffer(cb))
}

func (dc *Device) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cb, info, vk.SubpassContentsInline)
}

func (dc *Device) CmdSetViewport(cb vk.CommandBuffer, viewports []vk.Viewport) {
	vk.CmdSetViewport(cb, 0, uint32(len(viewports)), viewports)
}

func (dc *Device) CmdSetScissor(cb vk.CommandBuffer, scissors []vk.Rect2D) {
	vk.CmdSetScissor(cb, 0, uint32(len(scissors)), scissors)
}

func (dc *Device) CmdEndRenderPass(cb vk.CommandBuffer) {
	vk.CmdEndRenderPass(cb)
}
