package systems

import (
	"log"
	"os"

	com "vulkan_engine/common"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// LoadShader reads a '.spv' file and wraps it in a shader module for the given stage. Together with the module
// the vk.PipelineShaderStageCreateInfo is returned, which is required to bind the shader to a pipeline. The
// module is only a container to move the code onto the device and can be destroyed (DeleteShaderMod) right
// after the pipeline was created.
func LoadShader(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	code, err := readShaderCode(path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(code)),
		PCode:    com.AsUint32Arr(code),
	}
	module, err := com.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, errors.Wrapf(err, "create shader module '%s'", path)
	}
	log.Printf("Created shader module from %s: %v", path, module)
	return module, shaderStageInfo(module, stage), nil
}

func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func shaderStageInfo(mod vk.ShaderModule, stage vk.ShaderStageFlagBits) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               "main\x00", // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
}

// readShaderCode loads SPIR-V words. The code size handed to Vulkan has to be a non-zero multiple of 4.
func readShaderCode(shaderFile string) ([]byte, error) {
	code, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader file '%s'", shaderFile)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("shader file '%s' is not SPIR-V: size %d is not a positive multiple of 4", shaderFile, len(code))
	}
	log.Printf("Read shader file (%s) of size: %dByte", shaderFile, len(code))
	return code, nil
}
