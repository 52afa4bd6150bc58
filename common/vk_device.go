package common

import (
	"log"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the SDL window, the Hardware running Vulkan
// and the rest of the rendering engine. Its main purpose is to encapsulate the corresponding objects
// to make the initialization and teardown of a given application neater. Besides the handles it offers
// the operations the renderer issues against the GPU (see vk_device_ops.go).
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	PdMemoryProps  vk.PhysicalDeviceMemoryProperties
	QFamilies      QueueFamilyIndices

	D           vk.Device
	GraphicsQ   vk.Queue
	PresentQ    vk.Queue
	CommandPool vk.CommandPool

	surface vk.Surface
}

// NewDevice selects a physical device able to present to the window's surface and creates the logical device,
// its queues and a command pool on the graphics family. Validation layers are only enabled when given.
func NewDevice(w *Window, validationLayers []string) (*Device, error) {
	dc := &Device{surface: w.Surf}
	if err := dc.selectPhysicalDevice(w.Inst); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(validationLayers); err != nil {
		return nil, err
	}
	if err := dc.createCommandPool(); err != nil {
		vk.DestroyDevice(dc.D, nil)
		return nil, err
	}
	return dc, nil
}

// Destroy all objects created by itself. It does not destroy the sdl.window object provided for instantiation.
func (dc *Device) Destroy() {
	if dc.D == nil {
		return
	}
	vk.DestroyCommandPool(dc.D, dc.CommandPool, nil)
	vk.DestroyDevice(dc.D, nil)
	dc.CommandPool, dc.D = nil, nil
}

func (dc *Device) selectPhysicalDevice(in vk.Instance) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	candidates := make([]vk.PhysicalDevice, 0, len(availableDevices))
	for i := range availableDevices {
		if isDeviceSuitable(availableDevices[i], dc.surface) {
			candidates = append(candidates, availableDevices[i])
		}
	}
	pd := pickPreferredDevice(candidates, func(pd vk.PhysicalDevice) vk.PhysicalDeviceType {
		return ReadPhysicalDeviceProperties(pd).DeviceType
	})
	if pd == nil {
		return ErrNoSuitableDevice
	}
	dc.PhysicalDevice = pd

	// Also set related member variables for dc.PhysicalDevice as they are needed later
	qf, err := findQueueFamilies(dc.PhysicalDevice, dc.surface)
	if err != nil {
		return errors.Wrap(err, "read queue families from selected device")
	}
	dc.QFamilies = *qf
	dc.PdProps = ReadPhysicalDeviceProperties(dc.PhysicalDevice)
	// this is the easiest spot to deref this at the moment
	dc.PdProps.Limits.Deref()
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PhysicalDevice)
	log.Printf("Selected physical device: %s", vk.ToString(dc.PdProps.DeviceName[:]))
	return nil
}

// pickPreferredDevice returns the first discrete GPU among the candidates, else the first candidate.
func pickPreferredDevice(candidates []vk.PhysicalDevice, deviceType func(vk.PhysicalDevice) vk.PhysicalDeviceType) vk.PhysicalDevice {
	for _, pd := range candidates {
		if deviceType(pd) == vk.PhysicalDeviceTypeDiscreteGpu {
			return pd
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

func isDeviceSuitable(pd vk.PhysicalDevice, su vk.Surface) bool {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	pdQueueFams := ReadQueueFamilies(pd)

	log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(pdProps, pdQueueFams))

	indices, err := findQueueFamilies(pd, su)
	if err != nil {
		log.Printf("Failed to get required queue families: %s", err)
		return false
	}

	queuesSupported := indices.IsComplete()
	featuresSupported := pdFeatures.SamplerAnisotropy == vk.True
	extensionsSupported := checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS)

	isSwapChainAdequate := false
	if extensionsSupported {
		isSwapChainAdequate = checkSwapChainAdequacy(pd, su)
	}

	return featuresSupported && queuesSupported && extensionsSupported && isSwapChainAdequate
}

func (dc *Device) createLogicalDevice(validationLayers []string) error {
	queueInfos, err := dc.QFamilies.toQueueCreateInfos()
	if err != nil {
		return err
	}
	deviceFeatures := vk.PhysicalDeviceFeatures{ // We explicitly enable anisotropic sampling, more interesting stuff could be added here
		SamplerAnisotropy: vk.True,
	}
	deviceCreatInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
	}
	if len(validationLayers) > 0 {
		deviceCreatInfo.EnabledLayerCount = uint32(len(validationLayers))
		deviceCreatInfo.PpEnabledLayerNames = TerminatedStrs(validationLayers)
	}

	dc.D, err = VkCreateDevice(dc.PhysicalDevice, deviceCreatInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create logical device")
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		return errors.Wrap(err, "get 'graphics' device queue")
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		return errors.Wrap(err, "get 'present' device queue")
	}
	log.Println("Successfully created logical device")
	return nil
}

func (dc *Device) createCommandPool() error {
	graphics, _, err := dc.QFamilies.Indices()
	if err != nil {
		return err
	}
	commandPool, err := VKSCreateCommandPool(
		dc.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit|vk.CommandPoolCreateTransientBit),
		graphics,
	)
	if err != nil {
		return errors.Wrap(err, "create command pool")
	}
	log.Printf("Successfully created command pool")
	dc.CommandPool = commandPool
	return nil
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExt, err := ReadDeviceExtensionProperties(pd)
	if err != nil {
		log.Printf("Failed to read device extensions: %v", err)
		return false
	}
	log.Printf("Required device extensions: %v", requiredDeviceExt)
	log.Printf("Available device extensions (%d) [...]\n", len(supportedExt))
	supportedExtNames := make([]string, len(supportedExt))
	for i, ext := range supportedExt {
		supportedExtNames[i] = vk.ToString(ext.ExtensionName[:])
	}
	return AllOfAinB(requiredDeviceExt, supportedExtNames)
}
