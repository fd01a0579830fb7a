package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/triangle/internal/diag"
	"github.com/vkngwrapper/triangle/internal/selection"
)

func (r *Renderer) requiredInstanceExtensions() []string {
	extensions := append([]string(nil), r.window.InstanceExtensions()...)
	if r.cfg.EnableValidation {
		extensions = append(extensions, ext_debug_utils.ExtensionName)
	}
	return extensions
}

func (r *Renderer) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    r.cfg.Application.Name,
		ApplicationVersion: r.cfg.Application.Version,
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_0,
	}

	extensions, _, err := r.globalDriver.AvailableExtensions()
	if err != nil {
		return markf(ErrEnvironment, err, "failed to enumerate instance extensions")
	}

	required := r.requiredInstanceExtensions()
	if missing := selection.Missing(required, extensions); len(missing) > 0 {
		return errors.Mark(errors.Newf("Some window extensions are not supported by Vulkan: %v", missing), ErrEnvironment)
	}
	r.logger.WithField("extensions", required).Info("All window extensions are supported by Vulkan")
	instanceOptions.EnabledExtensionNames = required

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if r.cfg.EnableValidation {
		layers, _, err := r.globalDriver.AvailableLayers()
		if err != nil {
			return markf(ErrEnvironment, err, "failed to enumerate instance layers")
		}

		if missing := selection.Missing(r.cfg.ValidationLayers, layers); len(missing) > 0 {
			return errors.Mark(errors.Newf("Some validation layers are not available to Vulkan: %v", missing), ErrEnvironment)
		}
		r.logger.WithField("layers", r.cfg.ValidationLayers).Info("All validation layers available to Vulkan")
		instanceOptions.EnabledLayerNames = r.cfg.ValidationLayers

		// Covers instance creation and destruction, which the messenger
		// created below cannot see.
		instanceOptions.Next = r.debugMessengerOptions()
	}

	instanceDriver, res, err := r.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return construction(err, res, "instance")
	}
	r.instanceDriver = instanceDriver
	r.cleanup.push("instance", func() {
		r.instanceDriver.DestroyInstance(nil)
	})

	return nil
}

func (r *Renderer) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityVerbose | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    r.logDebug,
	}
}

func (r *Renderer) setupDebugMessenger() error {
	if !r.cfg.EnableValidation {
		return nil
	}

	r.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(r.instanceDriver)
	messenger, res, err := r.debugDriver.CreateDebugUtilsMessenger(nil, r.debugMessengerOptions())
	if err != nil {
		return construction(err, res, "debug messenger")
	}
	r.debugMessenger = messenger
	r.cleanup.push("debug messenger", func() {
		r.debugDriver.DestroyDebugUtilsMessenger(r.debugMessenger, nil)
	})

	return nil
}

func (r *Renderer) logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	r.sink.Write(sinkSeverity(severity), msgType.String(), data.Message)
	return false
}

func sinkSeverity(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) diag.Severity {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return diag.SeverityError
	case severity&ext_debug_utils.SeverityWarning != 0:
		return diag.SeverityWarning
	case severity&ext_debug_utils.SeverityInfo != 0:
		return diag.SeverityInfo
	default:
		return diag.SeverityVerbose
	}
}

func (r *Renderer) createSurface() error {
	r.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(r.instanceDriver)
	surface, err := r.window.CreateSurface(r.instanceDriver.Instance(), r.surfaceExtension)
	if err != nil {
		return errors.Mark(err, ErrEnvironment)
	}
	r.surface = surface
	r.cleanup.push("surface", func() {
		r.surfaceExtension.DestroySurface(r.surface, nil)
	})

	return nil
}
