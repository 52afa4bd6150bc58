package systems

import (
	"log"

	com "vulkan_engine/common"
	"vulkan_engine/model"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// GlobalDescriptors provides the descriptor set layout, pool and sets for the global uniform block. There is one
// set per uniform buffer, i.e. one per frame in flight, each pointing at binding 0 of both shader stages.
type GlobalDescriptors struct {
	device vk.Device

	Layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
	Sets   []vk.DescriptorSet
}

func NewGlobalDescriptors(device vk.Device, ubos []*com.Buffer) (*GlobalDescriptors, error) {
	if len(ubos) == 0 {
		return nil, errors.New("global descriptors need at least one uniform buffer")
	}
	gd := &GlobalDescriptors{device: device}
	if err := gd.createDescriptorSetLayout(); err != nil {
		return nil, err
	}
	if err := gd.createDescriptorPool(uint32(len(ubos))); err != nil {
		gd.Destroy()
		return nil, err
	}
	if err := gd.createDescriptorSets(ubos); err != nil {
		gd.Destroy()
		return nil, err
	}
	log.Printf("Successfully created %d global descriptor sets", len(gd.Sets))
	return gd, nil
}

func globalLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:            0,                              // <- binding index in the shaders
			DescriptorType:     vk.DescriptorTypeUniformBuffer, // <- type of binding in the shaders
			DescriptorCount:    1,
			StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			PImmutableSamplers: nil,
		},
	}
}

func globalPoolSizes(setCount uint32) []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: setCount,
		},
	}
}

func (gd *GlobalDescriptors) createDescriptorSetLayout() error {
	bindings := globalLayoutBindings()
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := com.VkCreateDescriptorSetLayout(gd.device, &layoutInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create global descriptor set layout")
	}
	gd.Layout = dsl
	return nil
}

func (gd *GlobalDescriptors) createDescriptorPool(setCount uint32) error {
	sizes := globalPoolSizes(setCount)
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       setCount,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	pool, err := com.VkCreateDescriptorPool(gd.device, &poolInfo, nil)
	if err != nil {
		return errors.Wrap(err, "create global descriptor pool")
	}
	gd.pool = pool
	return nil
}

// createDescriptorSets allocates one set per buffer from the pool and points each at its buffer.
func (gd *GlobalDescriptors) createDescriptorSets(ubos []*com.Buffer) error {
	cnt := uint32(len(ubos))
	layouts := make([]vk.DescriptorSetLayout, cnt)
	for i := range layouts {
		layouts[i] = gd.Layout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     gd.pool,
		DescriptorSetCount: cnt,
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, cnt)
	if err := vk.Error(vk.AllocateDescriptorSets(gd.device, &allocInfo, &(sets[0]))); err != nil {
		return errors.Wrap(err, "allocate global descriptor sets")
	}
	gd.Sets = sets

	for i, ubo := range ubos {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: ubo.Handle,
			Offset: 0,
			Range:  model.SizeOfGlobalUbo(),
		}
		write := vk.WriteDescriptorSet{
			SType:            vk.StructureTypeWriteDescriptorSet,
			PNext:            nil,
			DstSet:           sets[i],
			DstBinding:       0,
			DstArrayElement:  0,
			DescriptorCount:  1,
			DescriptorType:   vk.DescriptorTypeUniformBuffer,
			PImageInfo:       nil,
			PBufferInfo:      []vk.DescriptorBufferInfo{bufferInfo},
			PTexelBufferView: nil,
		}
		vk.UpdateDescriptorSets(gd.device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	}
	return nil
}

// Destroy releases the pool (and with it the sets) and the layout.
func (gd *GlobalDescriptors) Destroy() {
	if gd.pool != nil {
		vk.DestroyDescriptorPool(gd.device, gd.pool, nil)
		gd.pool = nil
		gd.Sets = nil
	}
	if gd.Layout != nil {
		vk.DestroyDescriptorSetLayout(gd.device, gd.Layout, nil)
		gd.Layout = nil
	}
}
