// Package config holds the immutable settings the triangle renderer is built from.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// Window describes the single window the renderer draws into.
type Window struct {
	Width  int
	Height int
	Title  string
}

// Shaders locates the pre-compiled SPIR-V blobs.
type Shaders struct {
	Vertex   string
	Fragment string
}

// Application is reported to the driver at instance creation.
type Application struct {
	Name    string
	Version common.Version
}

// Config is built once at startup and never modified afterwards.
type Config struct {
	Window      Window
	Application Application
	Shaders     Shaders

	// EnableValidation turns on the validation layers and the debug messenger.
	EnableValidation bool
	ValidationLayers []string
	DeviceExtensions []string

	FramesInFlight int
}

// Default returns the configuration the executable runs with.
func Default() Config {
	return Config{
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "Vulkan",
		},
		Application: Application{
			Name:    "Triangle",
			Version: common.CreateVersion(1, 0, 0),
		},
		Shaders: Shaders{
			Vertex:   "shaders/vert.spv",
			Fragment: "shaders/frag.spv",
		},
		EnableValidation: validationDefault,
		ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions: []string{khr_swapchain.ExtensionName},
		FramesInFlight:   MaxFramesInFlight,
	}
}

// Validate reports the first setting the renderer cannot work with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.FramesInFlight < 1 {
		return errors.Newf("frames in flight must be at least 1, got %d", c.FramesInFlight)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both vertex and fragment shader paths are required")
	}

	hasSwapchain := false
	for _, ext := range c.DeviceExtensions {
		if ext == khr_swapchain.ExtensionName {
			hasSwapchain = true
			break
		}
	}
	if !hasSwapchain {
		return errors.Newf("device extensions must include %s", khr_swapchain.ExtensionName)
	}

	if c.EnableValidation && len(c.ValidationLayers) == 0 {
		return errors.New("validation is enabled but no validation layers are listed")
	}

	return nil
}
