package common

import (
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vk "github.com/goki/vulkan"
)

func TestFindMemoryType(t *testing.T) {
	var memProps vk.PhysicalDeviceMemoryProperties
	memProps.MemoryTypeCount = 3
	memProps.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	memProps.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	memProps.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	idx, err := findMemoryType(memProps, 0b111, hostCoherent)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)

	idx, err = findMemoryType(memProps, 0b111, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	_, err = findMemoryType(memProps, 0b011, hostCoherent)
	assert.Error(t, err, "type 2 is filtered out")
}

func TestSelectSupportedFormat(t *testing.T) {
	depth := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	props := map[vk.Format]vk.FormatProperties{
		vk.FormatD32Sfloat:       {LinearTilingFeatures: depth},
		vk.FormatD32SfloatS8Uint: {OptimalTilingFeatures: depth},
	}
	lookup := func(f vk.Format) vk.FormatProperties { return props[f] }
	candidates := []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}

	f, err := selectSupportedFormat(candidates, vk.ImageTilingOptimal, depth, lookup)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32SfloatS8Uint, f)

	f, err = selectSupportedFormat(candidates, vk.ImageTilingLinear, depth, lookup)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32Sfloat, f)

	_, err = selectSupportedFormat([]vk.Format{vk.FormatD24UnormS8Uint}, vk.ImageTilingOptimal, depth, lookup)
	assert.True(t, errors.Is(err, ErrNoSupportedFormat))
}

func TestPickPreferredDevice(t *testing.T) {
	// Handles are opaque pointers, distinct allocations are enough to tell them apart.
	integrated := vk.PhysicalDevice(unsafe.Pointer(new(uint64)))
	discrete := vk.PhysicalDevice(unsafe.Pointer(new(uint64)))
	typeOf := func(pd vk.PhysicalDevice) vk.PhysicalDeviceType {
		if pd == discrete {
			return vk.PhysicalDeviceTypeDiscreteGpu
		}
		return vk.PhysicalDeviceTypeIntegratedGpu
	}

	assert.Equal(t, discrete, pickPreferredDevice([]vk.PhysicalDevice{integrated, discrete}, typeOf))
	assert.Equal(t, integrated, pickPreferredDevice([]vk.PhysicalDevice{integrated}, typeOf))
	assert.Nil(t, pickPreferredDevice(nil, typeOf))
}
