package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, cfg.ValidationLayers())

	cfg.Validation.Enabled = false
	assert.Nil(t, cfg.ValidationLayers())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[window]
title = "demo"
width = 640

[scene]
model_path = "models/bunny.stl"

[camera]
far = 250.0
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, int32(640), cfg.Window.Width)
	assert.Equal(t, int32(720), cfg.Window.Height, "untouched key keeps its default")
	assert.Equal(t, "models/bunny.stl", cfg.Scene.ModelPath)
	assert.Equal(t, float32(0.25), cfg.Scene.MaxFrameTime)
	assert.Equal(t, float32(250), cfg.Camera.Far)
	assert.Equal(t, Default().Shaders, cfg.Shaders)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[window]\nfullscreen = true\n"))
	assert.ErrorContains(t, err, "unknown keys")
}

func TestDecodeRejectsInvalidValues(t *testing.T) {
	for name, doc := range map[string]string{
		"zero width":    "[window]\nwidth = 0\n",
		"frame time":    "[scene]\nmax_frame_time = 0.0\n",
		"fov":           "[camera]\nfov = 180.0\n",
		"planes":        "[camera]\nnear = 10.0\nfar = 1.0\n",
		"no layers":     "[validation]\nlayers = []\n",
		"type mismatch": "[window]\nwidth = \"wide\"\n",
		"syntax":        "[window\n",
	} {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}

	// validation off does not need layers
	cfg, err := Decode(strings.NewReader("[validation]\nenabled = false\nlayers = []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ValidationLayers())
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nheight = 480\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, int32(480), cfg.Window.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
