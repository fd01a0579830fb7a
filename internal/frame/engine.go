// Package frame paces frames through the acquire, render, present cycle.
//
// The engine owns a fixed ring of frame slots, each with an image-available
// semaphore, a render-finished semaphore and a fence. The number of slots
// bounds how far the CPU may run ahead of the GPU. The number of swap images
// is independent of the slot count, and images may be acquired in any order,
// so every image also remembers which slot's fence guards the last work that
// rendered into it.
//
// The engine is generic over the semaphore (S), fence (F) and image target
// (I) types. The renderer drives it with Vulkan handles; tests drive it with a
// simulated GPU.
package frame

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrOutOfDate is returned by a Device when the swapchain no longer
	// matches the surface.
	ErrOutOfDate = errors.New("swapchain out of date")
	// ErrSuboptimal is returned by Device.Present when presentation succeeded
	// but the swapchain no longer matches the surface exactly.
	ErrSuboptimal = errors.New("swapchain suboptimal")
	// ErrClosed is returned by Draw after Quiesce.
	ErrClosed = errors.New("frame engine closed")
)

// Slot is one set of per-frame synchronization primitives.
type Slot[S, F any] struct {
	ImageAvailable S
	RenderFinished S
	InFlight       F
}

// Device is the subset of the graphics API the engine drives. All waits are
// unbounded.
type Device[S, F, I any] interface {
	// WaitForFence blocks until fence is signaled.
	WaitForFence(fence F) error
	ResetFence(fence F) error
	// AcquireNextImage returns the index of the next swap image and arranges
	// for signal to be signaled once that image is free of presentation.
	AcquireNextImage(signal S) (int, error)
	// Submit queues target's recorded commands. Color output waits on wait,
	// signal is signaled when rendering completes, and fence is signaled when
	// the whole submission completes.
	Submit(target I, wait S, signal S, fence F) error
	// Present queues presentation of swap image index once wait is signaled.
	Present(index int, wait S) error
	WaitIdle() error
}

type image[F, I any] struct {
	target I
	// inFlight points at the fence of the slot that last rendered into this
	// image, or is nil if the image has never been used.
	inFlight *F
}

// Stats counts what the engine has done since it was created.
type Stats struct {
	Frames        uint64
	SkippedFrames uint64
	StalePresents uint64
	ImageWaits    uint64
}

type Engine[S, F, I any] struct {
	device Device[S, F, I]
	slots  []Slot[S, F]
	images []image[F, I]

	current int
	closed  bool
	stats   Stats

	logger log.FieldLogger
}

type Option func(*options)

type options struct {
	logger log.FieldLogger
}

// WithLogger routes the engine's diagnostics to logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds an engine over the given slots and one image per target. The
// slot fences must be created signaled.
func New[S, F, I any](device Device[S, F, I], slots []Slot[S, F], targets []I, opts ...Option) (*Engine[S, F, I], error) {
	if device == nil {
		return nil, errors.New("frame engine requires a device")
	}
	if len(slots) == 0 {
		return nil, errors.New("frame engine requires at least one frame slot")
	}
	if len(targets) == 0 {
		return nil, errors.New("frame engine requires at least one image")
	}

	o := options{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	images := make([]image[F, I], len(targets))
	for i, target := range targets {
		images[i].target = target
	}

	return &Engine[S, F, I]{
		device: device,
		slots:  append([]Slot[S, F](nil), slots...),
		images: images,
		logger: o.logger,
	}, nil
}

// Draw runs one frame: gate on the current slot, acquire an image, wait for
// any earlier frame still rendering into that image, submit, present and
// advance the slot cursor.
func (e *Engine[S, F, I]) Draw() error {
	if e.closed {
		return ErrClosed
	}

	slot := &e.slots[e.current]

	err := e.device.WaitForFence(slot.InFlight)
	if err != nil {
		return errors.Wrapf(err, "failed to wait for frame %d", e.current)
	}

	imageIndex, err := e.device.AcquireNextImage(slot.ImageAvailable)
	if errors.Is(err, ErrOutOfDate) {
		// Nothing was signaled and the fence was not reset, so the slot is
		// still usable next time round.
		e.stats.SkippedFrames++
		e.logger.WithField("frame", e.current).Debug("Skipping frame, swapchain out of date")
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to acquire swapchain image")
	}
	if imageIndex < 0 || imageIndex >= len(e.images) {
		return errors.Newf("acquired image index %d out of range [0, %d)", imageIndex, len(e.images))
	}

	img := &e.images[imageIndex]
	if img.inFlight != nil {
		e.stats.ImageWaits++
		err = e.device.WaitForFence(*img.inFlight)
		if err != nil {
			return errors.Wrapf(err, "failed to wait for image %d", imageIndex)
		}
	}
	img.inFlight = &slot.InFlight

	err = e.device.ResetFence(slot.InFlight)
	if err != nil {
		return errors.Wrapf(err, "failed to reset fence for frame %d", e.current)
	}

	err = e.device.Submit(img.target, slot.ImageAvailable, slot.RenderFinished, slot.InFlight)
	if err != nil {
		return errors.Wrap(err, "failed to submit draw command buffer")
	}

	err = e.device.Present(imageIndex, slot.RenderFinished)
	if errors.Is(err, ErrOutOfDate) || errors.Is(err, ErrSuboptimal) {
		e.stats.StalePresents++
		e.logger.WithFields(log.Fields{
			"frame": e.current,
			"image": imageIndex,
		}).WithError(err).Debug("Presented to stale swapchain")
	} else if err != nil {
		return errors.Wrap(err, "failed to present swapchain image")
	}

	e.stats.Frames++
	e.current = (e.current + 1) % len(e.slots)

	return nil
}

// Quiesce waits for all submitted work to finish. After it returns the
// synchronization primitives may be destroyed and Draw will refuse to run.
func (e *Engine[S, F, I]) Quiesce() error {
	e.closed = true

	err := e.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for device idle")
	}
	return nil
}

// Frame returns the slot the next Draw will use.
func (e *Engine[S, F, I]) Frame() int {
	return e.current
}

func (e *Engine[S, F, I]) Stats() Stats {
	return e.stats
}

// FramesInFlight is the number of slots, the most frames the CPU may queue
// ahead of the GPU.
func (e *Engine[S, F, I]) FramesInFlight() int {
	return len(e.slots)
}

func (e *Engine[S, F, I]) ImageCount() int {
	return len(e.images)
}
