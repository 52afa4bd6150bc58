package main

import (
	"log"
	"os"
	"runtime"

	"vulkan_engine/app"
	"vulkan_engine/config"

	"github.com/spf13/pflag"
)

func init() {
	// SDL and the Vulkan surface have to stay on the main thread
	runtime.LockOSThread()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

// loadConfig reads the config file named by --config and applies the remaining flags on top of it.
func loadConfig(args []string) (config.Config, error) {
	flags := pflag.NewFlagSet("vulkan_engine", pflag.ContinueOnError)
	path := flags.StringP("config", "c", "", "path to a TOML config file")
	width := flags.Int32("width", 0, "window width in pixels")
	height := flags.Int32("height", 0, "window height in pixels")
	validation := flags.Bool("validation", false, "enable the Vulkan validation layers")
	if err := flags.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("width") {
		cfg.Window.Width = *width
	}
	if flags.Changed("height") {
		cfg.Window.Height = *height
	}
	if flags.Changed("validation") {
		cfg.Validation.Enabled = *validation
	}
	return cfg, cfg.Validate()
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(2)
	}
	log.Printf("Starting %s (%dx%d, validation: %v)", cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, cfg.Validation.Enabled)

	a, err := app.New(cfg)
	if err != nil {
		log.Printf("Failed to initialize: %+v", err)
		os.Exit(1)
	}
	err = a.Run()
	a.Destroy()
	if err != nil {
		log.Printf("Stopped on error: %+v", err)
		os.Exit(1)
	}
}
