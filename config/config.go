package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config is the application configuration as read from a TOML file. Keys missing from the file keep their
// Default() value, unknown keys are rejected.
type Config struct {
	Window     Window     `toml:"window"`
	Validation Validation `toml:"validation"`
	Shaders    Shaders    `toml:"shaders"`
	Scene      Scene      `toml:"scene"`
	Camera     Camera     `toml:"camera"`
}

type Window struct {
	Title  string `toml:"title"`
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`
}

type Validation struct {
	Enabled bool     `toml:"enabled"`
	Layers  []string `toml:"layers"`
}

type Shaders struct {
	SimpleVert     string `toml:"simple_vert"`
	SimpleFrag     string `toml:"simple_frag"`
	PointLightVert string `toml:"point_light_vert"`
	PointLightFrag string `toml:"point_light_frag"`
}

type Scene struct {
	// ModelPath is an optional binary STL file placed next to the cube.
	ModelPath string `toml:"model_path"`
	// MaxFrameTime caps the frame time (seconds) fed into movement and animation.
	MaxFrameTime float32 `toml:"max_frame_time"`
}

type Camera struct {
	Fov  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "Vulkan Engine",
			Width:  1280,
			Height: 720,
		},
		Validation: Validation{
			Enabled: true,
			Layers:  []string{"VK_LAYER_KHRONOS_validation"},
		},
		Shaders: Shaders{
			SimpleVert:     "shaders_spv/simple_shader.vert.spv",
			SimpleFrag:     "shaders_spv/simple_shader.frag.spv",
			PointLightVert: "shaders_spv/point_light.vert.spv",
			PointLightFrag: "shaders_spv/point_light.frag.spv",
		},
		Scene: Scene{
			MaxFrameTime: 0.25,
		},
		Camera: Camera{
			Fov:  50,
			Near: 0.1,
			Far:  100,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, errors.Wrap(err, "decode toml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidationLayers returns the layers to enable, none if validation is off.
func (c Config) ValidationLayers() []string {
	if !c.Validation.Enabled {
		return nil
	}
	return c.Validation.Layers
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Scene.MaxFrameTime <= 0 {
		return errors.Errorf("max_frame_time must be positive, got %v", c.Scene.MaxFrameTime)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return errors.Errorf("camera fov must be in (0, 180) degree, got %v", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Errorf("camera planes must satisfy 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Validation.Enabled && len(c.Validation.Layers) == 0 {
		return errors.New("validation enabled without any layers")
	}
	return nil
}
