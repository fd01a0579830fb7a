package selection

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// MatchWindowExtent is the currentExtent width a surface reports when the
// swapchain extent is decided by the application rather than the surface.
const MatchWindowExtent = -1

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB in the sRGB nonlinear color
// space and otherwise falls back to the first format offered.
func ChooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	if len(availableFormats) == 0 {
		return khr_surface.SurfaceFormat{}
	}
	return availableFormats[0]
}

// ChooseSwapPresentMode prefers mailbox and otherwise uses FIFO, which every
// surface supports.
func ChooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseSwapExtent uses the surface's fixed extent when it has one, and
// otherwise clamps the drawable size reported by the window.
func ChooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != MatchWindowExtent {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(drawableWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(drawableHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// ChooseImageCount asks for one image more than the minimum, capped by the
// maximum when the surface reports one. A maximum of zero means unbounded.
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// ChooseSharingMode uses concurrent sharing across both families when graphics
// and present are served by different families.
func ChooseSharingMode(indices QueueFamilyIndices) (core1_0.SharingMode, []int) {
	families := indices.Unique()
	if len(families) > 1 {
		return core1_0.SharingModeConcurrent, families
	}
	return core1_0.SharingModeExclusive, nil
}
