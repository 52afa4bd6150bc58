package common

import (
	"log"
	"math"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// SwapChainDetails holds what a surface supports on the selected physical device. The Select* methods negotiate
// a concrete swap chain configuration against it and do not talk to the driver.
type SwapChainDetails struct {
	Surface      vk.Surface
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// IsAdequate reports whether at least one format and one present mode are supported.
func (s *SwapChainDetails) IsAdequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

func (s *SwapChainDetails) SelectSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) (vk.SurfaceFormat, error) {
	if len(s.Formats) == 0 {
		return vk.SurfaceFormat{}, errors.Wrap(ErrNoSupportedFormat, "surface reports no formats")
	}
	for _, af := range s.Formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af, nil
		}
	}
	fallbackFormat := s.Formats[0]
	log.Printf("Did not find prefered SurfaceFormat, selecting first one available. (%v)", fallbackFormat)
	return fallbackFormat, nil
}

// SelectPresentMode falls back to FIFO, which every implementation has to support.
func (s *SwapChainDetails) SelectPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.PresentModes {
		if pm == desiredMode {
			return pm
		}
	}
	return vk.PresentModeFifo
}

// SelectExtent uses the surface's current extent unless the surface leaves it to the swap chain (width of
// 0xFFFFFFFF). In that case the requested window extent is clamped to the supported range.
// See: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
func (s *SwapChainDetails) SelectExtent(window vk.Extent2D) vk.Extent2D {
	caps := s.Capabilities
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ImageCount asks for one image more than the minimum so acquiring never has to wait on the driver. A maximum of
// 0 means there is no limit.
func (s *SwapChainDetails) ImageCount() uint32 {
	imgCount := s.Capabilities.MinImageCount + 1
	imgMaxCount := s.Capabilities.MaxImageCount
	if imgMaxCount > 0 && imgCount > imgMaxCount {
		imgCount = imgMaxCount
	}
	return imgCount
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	scDetails, err := ReadSwapChainSupportDetails(pd, surface)
	if err != nil {
		log.Printf("Failed to read swap chain details: %v", err)
		return false
	}
	log.Printf("Read swap chain details: %d formats, %d present modes", len(scDetails.Formats), len(scDetails.PresentModes))
	return scDetails.IsAdequate()
}
