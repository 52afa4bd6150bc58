package common

import (
	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{
		GraphicsFamily: nil,
		PresentFamily:  nil,
	}
	qFamilies := ReadQueueFamilies(pd)

	// Find first family supporting VK_QUEUE_GRAPHICS_BIT
	for i := range qFamilies {
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = new(uint32)
			*indices.GraphicsFamily = uint32(i)
		}
		if indices.PresentFamily == nil {
			var presentSupport vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surf, &presentSupport)
			if presentSupport > 0 {
				indices.PresentFamily = new(uint32)
				*indices.PresentFamily = uint32(i)
			}
		}
		if indices.IsComplete() {
			break
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// Indices returns the graphics and present family index, failing if either one is unknown.
func (q QueueFamilyIndices) Indices() (graphics uint32, present uint32, err error) {
	if q.GraphicsFamily == nil {
		return 0, 0, errors.New("graphics capable queue family index not set")
	}
	if q.PresentFamily == nil {
		return 0, 0, errors.New("present capable queue family index not set")
	}
	return *q.GraphicsFamily, *q.PresentFamily, nil
}

// UniqueIndices lists each distinct family index once, graphics first.
func (q QueueFamilyIndices) UniqueIndices() ([]uint32, error) {
	graphics, present, err := q.Indices()
	if err != nil {
		return nil, err
	}
	uniqIndices := []uint32{graphics}
	if !inList(present, uniqIndices) {
		uniqIndices = append(uniqIndices, present)
	}
	return uniqIndices, nil
}

func (q QueueFamilyIndices) toQueueCreateInfos() ([]vk.DeviceQueueCreateInfo, error) {
	uniqIndices, err := q.UniqueIndices()
	if err != nil {
		return nil, err
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos, nil
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}
