package common

import (
	"unsafe"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
	mapped    unsafe.Pointer
}

func (dc *Device) CreateBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	// Buffer Handle of fitting Size
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(dc.D, &bufferInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer of %d bytes", size)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.D, buf)
	memType, err := findMemoryType(dc.PdMemoryProps, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}

	// Allocate device memory
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, errors.Wrap(err, "allocate buffer memory")
	}

	// Associate allocated memory with buffer Handle
	err = VkBindBufferMemory(dc.D, buf, deviceMem, 0)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, errors.Wrap(err, "bind device memory to buffer handle")
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

func (b *Buffer) isHostVisible() bool {
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return b.props&want == want
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to:
// - be: vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit
// - have the same Size as the payload
func (dc *Device) CopyToDeviceBuffer(deviceBuf *Buffer, payload []byte) error {
	if !deviceBuf.isHostVisible() {
		return errors.New("can't copy to device buffer, buffer memory is not host visible and coherent")
	}
	// this function only allows to copy a "full buffer" worth of payload starting at offset = 0
	if deviceBuf.Size != vk.DeviceSize(uint64(len(payload))) {
		return errors.Errorf("can't copy %d bytes to device buffer of size %d", len(payload), deviceBuf.Size)
	}
	// Map -> copy -> Unmap
	pData, err := VkMapMemory(dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return errors.Wrap(err, "map device memory")
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.D, deviceBuf.DeviceMem)
	return nil
}

// MapBuffer keeps the whole buffer mapped until DestroyBuffer, for buffers that are rewritten every frame.
func (dc *Device) MapBuffer(buf *Buffer) error {
	if !buf.isHostVisible() {
		return errors.New("can't map buffer, memory is not host visible and coherent")
	}
	if buf.mapped != nil {
		return nil
	}
	pData, err := VkMapMemory(dc.D, buf.DeviceMem, 0, buf.Size, 0)
	if err != nil {
		return errors.Wrap(err, "map device memory")
	}
	buf.mapped = pData
	return nil
}

// WriteMapped copies payload to the start of a buffer mapped with MapBuffer.
func (b *Buffer) WriteMapped(payload []byte) error {
	if b.mapped == nil {
		return errors.New("buffer is not mapped")
	}
	if vk.DeviceSize(len(payload)) > b.Size {
		return errors.Errorf("payload of %d bytes exceeds buffer size %d", len(payload), b.Size)
	}
	vk.Memcopy(b.mapped, payload)
	return nil
}

// CopyBuffer records and submits a one time transfer of s bytes from src to dst on the graphics queue and waits for
// it to finish.
func (dc *Device) CopyBuffer(src *Buffer, dst *Buffer, s vk.DeviceSize) error {
	cmdBuf, err := VKSBeginSingleTimeCommands(dc.D, dc.CommandPool)
	if err != nil {
		return errors.Wrap(err, "begin single time command buffer")
	}
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      s,
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	err = VKSEndSingleTimeCommands(dc.D, dc.CommandPool, dc.GraphicsQ, cmdBuf)
	if err != nil {
		return errors.Wrap(err, "submit buffer copy")
	}
	return nil
}

// UploadBuffer moves payload into a new device local buffer of the given usage by way of a host visible staging
// buffer.
func (dc *Device) UploadBuffer(payload []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	bufSize := vk.DeviceSize(len(payload))
	stgBuf, err := dc.CreateBuffer(
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create staging buffer")
	}
	defer dc.DestroyBuffer(stgBuf)

	if err = dc.CopyToDeviceBuffer(stgBuf, payload); err != nil {
		return nil, err
	}
	devBuf, err := dc.CreateBuffer(
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}
	if err = dc.CopyBuffer(stgBuf, devBuf, bufSize); err != nil {
		dc.DestroyBuffer(devBuf)
		return nil, err
	}
	return devBuf, nil
}

func (dc *Device) DestroyBuffer(buffer *Buffer) {
	if buffer == nil || buffer.Handle == nil {
		return
	}
	if buffer.mapped != nil {
		vk.UnmapMemory(dc.D, buffer.DeviceMem)
		buffer.mapped = nil
	}
	vk.DestroyBuffer(dc.D, buffer.Handle, nil)
	vk.FreeMemory(dc.D, buffer.DeviceMem, nil)
	buffer.Handle, buffer.DeviceMem = nil, nil
}

func (dc *Device) CreateImage(w uint32, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (vk.Image, vk.DeviceMemory, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                tiling,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.D, imageInfo, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create image")
	}

	memRequirements := ReadImageMemoryRequirements(dc.D, img)
	memType, err := findMemoryType(dc.PdMemoryProps, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.D, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, nil, errors.Wrap(err, "allocate image device memory")
	}
	err = vk.Error(vk.BindImageMemory(dc.D, img, imgMemory, 0))
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, nil, errors.Wrap(err, "bind image device memory")
	}
	return img, imgMemory, nil
}

func findMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, errors.Errorf("no memory type matches filter %032b with properties %d", typeFilter, propFlags)
}
