package renderer

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/triangle/internal/frame"
)

func (r *Renderer) createSemaphore() (core1_0.Semaphore, error) {
	semaphore, res, err := r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return semaphore, construction(err, res, "semaphore")
	}
	r.cleanup.push("semaphore", func() {
		r.deviceDriver.DestroySemaphore(semaphore, nil)
	})
	return semaphore, nil
}

// createSyncObjects builds one slot per frame in flight. Fences start
// signaled so the first wait on each slot returns immediately.
func (r *Renderer) createSyncObjects() error {
	for i := 0; i < r.cfg.FramesInFlight; i++ {
		var slot frame.Slot[core1_0.Semaphore, core1_0.Fence]
		var err error

		slot.ImageAvailable, err = r.createSemaphore()
		if err != nil {
			return err
		}

		slot.RenderFinished, err = r.createSemaphore()
		if err != nil {
			return err
		}

		fence, res, err := r.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return construction(err, res, "fence")
		}
		slot.InFlight = fence
		r.cleanup.push("fence", func() {
			r.deviceDriver.DestroyFence(fence, nil)
		})

		r.slots = append(r.slots, slot)
	}

	return nil
}

func (r *Renderer) createEngine() error {
	device := &vkDevice{
		driver:        r.deviceDriver,
		swapchainExt:  r.swapchainExtension,
		swapchain:     r.swapchain,
		graphicsQueue: r.graphicsQueue,
		presentQueue:  r.presentQueue,
	}

	engine, err := frame.New[core1_0.Semaphore, core1_0.Fence, *swapImage](device, r.slots, r.images,
		frame.WithLogger(r.logger.WithField("component", "frame")))
	if err != nil {
		return errors.Mark(err, ErrConstruction)
	}
	r.engine = engine
	r.pacer = newPacer(r.logger)

	r.logger.WithFields(log.Fields{
		"framesInFlight": engine.FramesInFlight(),
		"images":         engine.ImageCount(),
	}).Info("Frame engine ready")

	return nil
}

// vkDevice drives the frame engine with a real device and swapchain.
type vkDevice struct {
	driver        core1_0.CoreDeviceDriver
	swapchainExt  khr_swapchain.ExtensionDriver
	swapchain     khr_swapchain.Swapchain
	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue
}

var _ frame.Device[core1_0.Semaphore, core1_0.Fence, *swapImage] = (*vkDevice)(nil)

func (d *vkDevice) WaitForFence(fence core1_0.Fence) error {
	_, err := d.driver.WaitForFences(true, common.NoTimeout, fence)
	return err
}

func (d *vkDevice) ResetFence(fence core1_0.Fence) error {
	_, err := d.driver.ResetFences(fence)
	return err
}

func (d *vkDevice) AcquireNextImage(signal core1_0.Semaphore) (int, error) {
	imageIndex, res, err := d.swapchainExt.AcquireNextImage(d.swapchain, common.NoTimeout, &signal, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return -1, errors.Mark(errors.Newf("acquire returned %s", res), frame.ErrOutOfDate)
	} else if err != nil {
		return -1, err
	}
	// Suboptimal still hands out a usable image and signals the semaphore.
	return imageIndex, nil
}

func (d *vkDevice) Submit(target *swapImage, wait, signal core1_0.Semaphore, fence core1_0.Fence) error {
	_, err := d.driver.QueueSubmit(d.graphicsQueue, &fence, submitInfo(target.commandBuffer, wait, signal))
	return err
}

func (d *vkDevice) Present(index int, wait core1_0.Semaphore) error {
	res, err := d.swapchainExt.QueuePresent(d.presentQueue, presentInfo(d.swapchain, index, wait))
	switch {
	case res == khr_swapchain.VKErrorOutOfDate:
		return errors.Mark(errors.Newf("present returned %s", res), frame.ErrOutOfDate)
	case res == khr_swapchain.VKSuboptimal:
		return errors.Mark(errors.Newf("present returned %s", res), frame.ErrSuboptimal)
	case err != nil:
		return err
	}
	return nil
}

func (d *vkDevice) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return err
}

// submitInfo makes color output wait for the acquired image and signals
// signal once rendering is done.
func submitInfo(buffer core1_0.CommandBuffer, wait, signal core1_0.Semaphore) core1_0.SubmitInfo {
	return core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{wait},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{buffer},
		SignalSemaphores: []core1_0.Semaphore{signal},
	}
}

func presentInfo(swapchain khr_swapchain.Swapchain, index int, wait core1_0.Semaphore) khr_swapchain.PresentInfo {
	return khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{wait},
		Swapchains:     []khr_swapchain.Swapchain{swapchain},
		ImageIndices:   []int{index},
	}
}
