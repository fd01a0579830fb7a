// Package renderer sets up Vulkan for a single window, records a static
// triangle draw per swapchain image and runs the frame loop.
package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/internal/config"
	"github.com/vkngwrapper/triangle/internal/diag"
	"github.com/vkngwrapper/triangle/internal/frame"
	"github.com/vkngwrapper/triangle/internal/selection"
)

// Window is what the renderer needs from the windowing layer.
type Window interface {
	VkGetInstanceProcAddr() unsafe.Pointer
	InstanceExtensions() []string
	PollEvents()
	ShouldClose() bool
	DrawableSize() (int, int)
	CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

// swapImage groups everything that exists once per swapchain image.
type swapImage struct {
	view          core1_0.ImageView
	framebuffer   core1_0.Framebuffer
	commandBuffer core1_0.CommandBuffer
}

type frameEngine = frame.Engine[core1_0.Semaphore, core1_0.Fence, *swapImage]

type Renderer struct {
	cfg     config.Config
	window  Window
	shaders Shaders
	logger  log.FieldLogger
	sink    *diag.Sink

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	queueFamilies  selection.QueueFamilyIndices

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension khr_swapchain.ExtensionDriver
	swapchain          khr_swapchain.Swapchain
	swapchainFormat    khr_surface.SurfaceFormat
	swapchainExtent    core1_0.Extent2D
	images             []*swapImage

	renderPass       core1_0.RenderPass
	pipelineLayout   core1_0.PipelineLayout
	graphicsPipeline core1_0.Pipeline

	commandPool core1_0.CommandPool

	slots  []frame.Slot[core1_0.Semaphore, core1_0.Fence]
	engine *frameEngine
	pacer  *pacer

	cleanup cleanupStack
	closed  bool
}

// New performs the whole setup sequence. On failure everything created so far
// is destroyed again before the error is returned.
func New(cfg config.Config, window Window, shaders Shaders, logger log.FieldLogger) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, markf(ErrEnvironment, err, "invalid configuration")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	r := &Renderer{
		cfg:     cfg,
		window:  window,
		shaders: shaders,
		logger:  logger,
		sink:    diag.NewSink(nil),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"driver", r.loadDriver},
		{"instance", r.createInstance},
		{"debug messenger", r.setupDebugMessenger},
		{"surface", r.createSurface},
		{"physical device", r.pickPhysicalDevice},
		{"logical device", r.createLogicalDevice},
		{"swapchain", r.createSwapchain},
		{"image views", r.createImageViews},
		{"render pass", r.createRenderPass},
		{"graphics pipeline", r.createGraphicsPipeline},
		{"framebuffers", r.createFramebuffers},
		{"command pool", r.createCommandPool},
		{"command buffers", r.createCommandBuffers},
		{"sync objects", r.createSyncObjects},
		{"frame engine", r.createEngine},
	}

	for _, step := range steps {
		logger.WithField("step", step.name).Trace("Initializing")
		if err := step.fn(); err != nil {
			r.unwind()
			return nil, err
		}
	}

	return r, nil
}

func (r *Renderer) loadDriver() error {
	var err error
	r.globalDriver, err = core.CreateDriverFromProcAddr(r.window.VkGetInstanceProcAddr())
	if err != nil {
		return markf(ErrEnvironment, err, "failed to load Vulkan driver")
	}
	return nil
}

// unwind tears down a partially constructed renderer.
func (r *Renderer) unwind() {
	var quiesce func() error
	if r.deviceDriver != nil {
		quiesce = r.waitIdle
	}
	r.teardown(quiesce)
}

// teardown destroys everything after a failed setup. The setup error is what
// the caller reports, so a failed idle wait is only logged.
func (r *Renderer) teardown(quiesce func() error) {
	err := shutdown(quiesce, &r.cleanup, r.logger)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to wait for device idle while unwinding setup")
	}
}

func (r *Renderer) waitIdle() error {
	_, err := r.deviceDriver.DeviceWaitIdle()
	if err != nil {
		return markf(ErrRuntime, err, "failed to wait for device idle")
	}
	return nil
}

// Run pumps window events and draws frames until the window asks to close,
// then waits for the GPU to finish all outstanding work.
func (r *Renderer) Run() error {
	for !r.window.ShouldClose() {
		r.window.PollEvents()
		if r.window.ShouldClose() {
			break
		}

		start := r.pacer.begin()
		err := r.engine.Draw()
		if err != nil {
			return errors.Mark(err, ErrRuntime)
		}
		r.pacer.end(start, r.engine.Stats())
	}

	r.pacer.summary(r.engine.Stats())

	err := r.engine.Quiesce()
	if err != nil {
		return errors.Mark(err, ErrRuntime)
	}
	return nil
}

// Close quiesces the device if Run has not already done so, then destroys
// every resource in reverse creation order. It is safe to call more than once.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var quiesce func() error
	if r.engine != nil {
		quiesce = func() error {
			if err := r.engine.Quiesce(); err != nil {
				return errors.Mark(err, ErrRuntime)
			}
			return nil
		}
	}

	err := shutdown(quiesce, &r.cleanup, r.logger)
	r.logger.Info("Renderer shut down")
	return err
}
