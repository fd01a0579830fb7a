package renderer

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"

	"github.com/vkngwrapper/triangle/internal/selection"
)

func (r *Renderer) querySwapchainSupport(device core1_0.PhysicalDevice) (*selection.SwapchainSupport, error) {
	var details selection.SwapchainSupport
	var err error

	details.Capabilities, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(r.surface, device)
	if err != nil {
		return nil, err
	}

	details.Formats, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceFormats(r.surface, device)
	if err != nil {
		return nil, err
	}

	details.PresentModes, _, err = r.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(r.surface, device)
	if err != nil {
		return nil, err
	}

	return &details, nil
}

func (r *Renderer) findQueueFamilies(device core1_0.PhysicalDevice) (selection.QueueFamilyIndices, error) {
	queueFamilies := r.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device)

	graphics := make([]bool, len(queueFamilies))
	for i, queueFamily := range queueFamilies {
		graphics[i] = (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0
	}

	return selection.FindQueueFamilies(graphics, func(family int) (bool, error) {
		supported, _, err := r.surfaceExtension.GetPhysicalDeviceSurfaceSupport(r.surface, device, family)
		return supported, err
	})
}

// describe gathers what selection needs to know about one physical device.
// Query failures make the device unsuitable rather than aborting the search.
func (r *Renderer) describe(device core1_0.PhysicalDevice) selection.Candidate {
	var candidate selection.Candidate

	properties, err := r.instanceDriver.GetPhysicalDeviceProperties(device)
	if err == nil {
		candidate.Name = properties.DeviceName
	}

	logger := r.logger.WithField("device", candidate.Name)

	candidate.Indices, err = r.findQueueFamilies(device)
	if err != nil {
		logger.WithError(err).Warn("Failed to query queue families")
	}

	extensions, _, err := r.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		logger.WithError(err).Warn("Failed to enumerate device extensions")
		candidate.MissingExtensions = r.cfg.DeviceExtensions
		return candidate
	}
	candidate.MissingExtensions = selection.Missing(r.cfg.DeviceExtensions, extensions)
	if len(candidate.MissingExtensions) > 0 {
		return candidate
	}
	logger.Debug("All required extensions are supported by physical device")

	candidate.Support, err = r.querySwapchainSupport(device)
	if err != nil {
		logger.WithError(err).Warn("Failed to query swapchain support")
	}

	return candidate
}

func (r *Renderer) pickPhysicalDevice() error {
	physicalDevices, _, err := r.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return markf(ErrEnvironment, err, "failed to enumerate physical devices")
	}

	candidates := make([]selection.Candidate, len(physicalDevices))
	for i, device := range physicalDevices {
		candidates[i] = r.describe(device)
		r.logger.WithFields(log.Fields{
			"device":   candidates[i].Name,
			"suitable": candidates[i].Suitable(),
			"missing":  candidates[i].MissingExtensions,
		}).Debug("Examined physical device")
	}

	chosen, err := selection.PickFirst(candidates)
	if err != nil {
		return errors.Mark(err, ErrEnvironment)
	}

	r.physicalDevice = physicalDevices[chosen]
	r.queueFamilies = candidates[chosen].Indices
	r.logger.WithField("device", candidates[chosen].Name).Info("Physical device selected")

	return nil
}

func (r *Renderer) createLogicalDevice() error {
	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range r.queueFamilies.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, r.cfg.DeviceExtensions...)

	// Portability drivers (MoltenVK) refuse device creation unless the subset
	// extension they advertise is enabled.
	extensions, _, err := r.instanceDriver.EnumerateDeviceExtensionProperties(r.physicalDevice)
	if err != nil {
		return markf(ErrEnvironment, err, "failed to enumerate device extensions")
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	createInfo := core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledExtensionNames: extensionNames,
	}
	if r.cfg.EnableValidation {
		// Ignored by current loaders; kept for older implementations.
		createInfo.EnabledLayerNames = r.cfg.ValidationLayers
	}

	deviceDriver, res, err := r.instanceDriver.CreateDevice(r.physicalDevice, nil, createInfo)
	if err != nil {
		return construction(err, res, "logical device")
	}
	r.deviceDriver = deviceDriver
	r.cleanup.push("logical device", func() {
		r.deviceDriver.DestroyDevice(nil)
	})

	r.graphicsQueue = r.deviceDriver.GetQueue(*r.queueFamilies.GraphicsFamily, 0)
	r.presentQueue = r.deviceDriver.GetQueue(*r.queueFamilies.PresentFamily, 0)

	r.logger.WithFields(log.Fields{
		"graphicsFamily": *r.queueFamilies.GraphicsFamily,
		"presentFamily":  *r.queueFamilies.PresentFamily,
	}).Debug("Logical device created")

	return nil
}
