package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// Human readable renderings of Vulkan properties, used for the start up log.

type namedBit struct {
	bit  uint32
	name string
}

var queueFlagNames = []namedBit{
	{uint32(vk.QueueGraphicsBit), "graphics"},
	{uint32(vk.QueueComputeBit), "compute"},
	{uint32(vk.QueueTransferBit), "transfer"},
	{uint32(vk.QueueSparseBindingBit), "sparse"},
	{uint32(vk.QueueProtectedBit), "protected"},
	{uint32(vk.QueueVideoDecodeBit), "video decode"},
	{uint32(vk.QueueVideoEncodeBit), "video encode"},
}

// There seem to only be a handful of vendors, see:
// https://www.reddit.com/r/vulkan/comments/4ta9nj/is_there_a_comprehensive_list_of_the_names_and/
var vendorNames = map[uint32]string{
	0x1002:  "AMD",
	0x1010:  "ImgTec",
	0x10DE:  "NVIDIA",
	0x13B5:  "ARM",
	0x5143:  "Qualcomm",
	0x8086:  "INTEL",
	0x10005: "Mesa",
}

var deviceTypeNames = map[vk.PhysicalDeviceType]string{
	vk.PhysicalDeviceTypeOther:         "other",
	vk.PhysicalDeviceTypeIntegratedGpu: "integrated gpu",
	vk.PhysicalDeviceTypeDiscreteGpu:   "discrete gpu",
	vk.PhysicalDeviceTypeVirtualGpu:    "virtual gpu",
	vk.PhysicalDeviceTypeCpu:           "cpu",
}

var presentModeNames = map[vk.PresentMode]string{
	vk.PresentModeImmediate:   "immediate",
	vk.PresentModeMailbox:     "mailbox",
	vk.PresentModeFifo:        "fifo",
	vk.PresentModeFifoRelaxed: "fifo relaxed",
}

func bitNames(bits uint32, names []namedBit) []string {
	var set []string
	for _, n := range names {
		if bits&n.bit != 0 {
			set = append(set, n.name)
		}
	}
	return set
}

func nameOr(name string, ok bool) string {
	if !ok {
		return "unknown"
	}
	return name
}

func PresentModeName(m vk.PresentMode) string {
	name, ok := presentModeNames[m]
	return nameOr(name, ok)
}

func vendorName(id uint32) string {
	name, ok := vendorNames[id]
	return nameOr(name, ok)
}

func deviceTypeName(dt vk.PhysicalDeviceType) string {
	name, ok := deviceTypeNames[dt]
	return nameOr(name, ok)
}

// driverVersion decodes the vendor specific driver version. NVIDIA packs 10.8.8.6 bits, everybody else
// follows the Vulkan version layout.
func driverVersion(vendor uint32, raw uint32) string {
	if vendor == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func lines(n int, line func(i int) string) string {
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		b.WriteString(line(i))
		b.WriteByte('\n')
	}
	return b.String()
}

func TableStringExtensionProps(ext []vk.ExtensionProperties) string {
	return lines(len(ext), func(i int) string {
		return fmt.Sprintf(" %-59s%10s", vk.ToString(ext[i].ExtensionName[:]), vk.Version(ext[i].SpecVersion).String())
	})
}

func TableStringLayerProps(lay []vk.LayerProperties) string {
	return lines(len(lay), func(i int) string {
		l := lay[i]
		return fmt.Sprintf(" %-40s spec: %8s impl: %8s  %s",
			vk.ToString(l.LayerName[:]), vk.Version(l.SpecVersion).String(), vk.Version(l.ImplementationVersion).String(), vk.ToString(l.Description[:]))
	})
}

func TableStringQueueFamilyProps(qFamilies []vk.QueueFamilyProperties) string {
	return lines(len(qFamilies), func(i int) string {
		q := qFamilies[i]
		return fmt.Sprintf(" Q[%2d] count: %2d, timestamp bits: %2d, granularity: (%d,%d,%d), flags: %s",
			i, q.QueueCount, q.TimestampValidBits,
			q.MinImageTransferGranularity.Width, q.MinImageTransferGranularity.Height, q.MinImageTransferGranularity.Depth,
			strings.Join(bitNames(uint32(q.QueueFlags), queueFlagNames), "|"))
	})
}

// ToStringPhysicalDeviceTable renders the device name, its properties and its queue families.
func ToStringPhysicalDeviceTable(pdProps vk.PhysicalDeviceProperties, qFamilies []vk.QueueFamilyProperties) string {
	return fmt.Sprintf("%s:\n api: %s, driver: %s, vendor: %#x (%s), device: %#x, type: %s, cache UUID: %s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		vk.Version(pdProps.ApiVersion).String(),
		driverVersion(pdProps.VendorID, pdProps.DriverVersion),
		pdProps.VendorID,
		vendorName(pdProps.VendorID),
		pdProps.DeviceID,
		deviceTypeName(pdProps.DeviceType),
		hex.EncodeToString(pdProps.PipelineCacheUUID[:]),
		TableStringQueueFamilyProps(qFamilies),
	)
}
