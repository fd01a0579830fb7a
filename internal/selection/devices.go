// Package selection holds the decision logic used while assembling the device
// and swapchain. Nothing in here talks to the driver: callers gather the
// properties and these functions choose.
package selection

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

var (
	ErrNoDevices        = errors.New("failed to find physical device with Vulkan support")
	ErrNoSuitableDevice = errors.New("failed to find a suitable physical device")
)

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Unique returns the distinct family indices among graphics and present, graphics first.
func (i *QueueFamilyIndices) Unique() []int {
	if !i.IsComplete() {
		return nil
	}

	families := []int{*i.GraphicsFamily}
	if *i.PresentFamily != *i.GraphicsFamily {
		families = append(families, *i.PresentFamily)
	}
	return families
}

// FindQueueFamilies walks the families in order until both a graphics-capable
// and a present-capable family have been seen. graphics[i] reports whether
// family i has the graphics bit; presentSupport is asked about each family in turn.
func FindQueueFamilies(graphics []bool, presentSupport func(family int) (bool, error)) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}

	for queueFamilyIdx, hasGraphics := range graphics {
		if hasGraphics {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		supported, err := presentSupport(queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

// Missing returns the names in required that are not keys of available, in
// sorted order. A name counts as present only on an exact match.
func Missing[V any](required []string, available map[string]V) []string {
	var missing []string
	for _, name := range required {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

type SwapchainSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Adequate reports whether at least one format and one present mode are offered.
func (s *SwapchainSupport) Adequate() bool {
	return s != nil && len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// Candidate is everything gathered about one physical device.
type Candidate struct {
	Name              string
	Indices           QueueFamilyIndices
	MissingExtensions []string
	// Support is nil when the swapchain extension is missing and was not queried.
	Support *SwapchainSupport
}

func (c *Candidate) Suitable() bool {
	return c.Indices.IsComplete() && len(c.MissingExtensions) == 0 && c.Support.Adequate()
}

// PickFirst returns the index of the first suitable candidate in enumeration order.
func PickFirst(candidates []Candidate) (int, error) {
	if len(candidates) == 0 {
		return -1, ErrNoDevices
	}

	for i := range candidates {
		if candidates[i].Suitable() {
			return i, nil
		}
	}

	return -1, ErrNoSuitableDevice
}
