// Package window owns the SDL2 window the renderer presents into.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/triangle/internal/config"
)

type Window struct {
	window      *sdl.Window
	shouldClose bool
}

// Open initializes SDL video and creates a fixed-size window with Vulkan
// support and no OpenGL context.
func Open(cfg config.Window) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "failed to initialize SDL")
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "failed to create window")
	}

	return &Window{window: window}, nil
}

// VkGetInstanceProcAddr exposes the loader entry point SDL found.
func (w *Window) VkGetInstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// InstanceExtensions lists the instance extensions needed to create a surface for this window.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// PollEvents drains the event queue and latches a quit request.
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.shouldClose = true
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_CLOSE {
				w.shouldClose = true
			}
		}
	}
}

func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// DrawableSize is the framebuffer size in pixels.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	surface, err := vkng_sdl2.CreateSurface(instance, surfaceExtension, w.window)
	if err != nil {
		return khr_surface.Surface{}, errors.Wrap(err, "failed to create window surface")
	}
	return surface, nil
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
