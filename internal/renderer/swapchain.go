package renderer

import (
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/internal/selection"
)

func (r *Renderer) createSwapchain() error {
	r.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(r.deviceDriver)

	swapchainSupport, err := r.querySwapchainSupport(r.physicalDevice)
	if err != nil {
		return markf(ErrEnvironment, err, "failed to query swapchain support")
	}

	surfaceFormat := selection.ChooseSurfaceFormat(swapchainSupport.Formats)
	presentMode := selection.ChooseSwapPresentMode(swapchainSupport.PresentModes)
	width, height := r.window.DrawableSize()
	extent := selection.ChooseSwapExtent(swapchainSupport.Capabilities, width, height)
	imageCount := selection.ChooseImageCount(swapchainSupport.Capabilities)
	sharingMode, queueFamilyIndices := selection.ChooseSharingMode(r.queueFamilies)

	swapchain, res, err := r.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: r.surface,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return construction(err, res, "swapchain")
	}
	r.swapchain = swapchain
	r.swapchainFormat = surfaceFormat
	r.swapchainExtent = extent
	r.cleanup.push("swapchain", func() {
		r.swapchainExtension.DestroySwapchain(r.swapchain, nil)
	})

	r.logger.WithFields(log.Fields{
		"minImages":   imageCount,
		"format":      surfaceFormat.Format,
		"colorSpace":  surfaceFormat.ColorSpace,
		"presentMode": presentMode,
		"extent":      extent,
	}).Info("Swapchain created")

	return nil
}

func (r *Renderer) createImageViews() error {
	images, res, err := r.swapchainExtension.GetSwapchainImages(r.swapchain)
	if err != nil {
		return markf(ErrConstruction, err, "failed to get swapchain images (%s)", res)
	}
	r.logger.WithField("images", len(images)).Debug("Swapchain images retrieved")

	for _, image := range images {
		view, res, err := r.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   r.swapchainFormat.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return construction(err, res, "image view")
		}

		img := &swapImage{view: view}
		r.images = append(r.images, img)
		r.cleanup.push("image view", func() {
			r.deviceDriver.DestroyImageView(img.view, nil)
		})
	}

	return nil
}
