package selection

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

func intPtr(i int) *int { return &i }

func presentOn(families ...int) func(int) (bool, error) {
	return func(family int) (bool, error) {
		for _, f := range families {
			if f == family {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestFindQueueFamilies(t *testing.T) {
	testCases := []struct {
		name     string
		graphics []bool
		present  func(int) (bool, error)
		complete bool
		graphic  int
		pres     int
	}{
		{"same family", []bool{true}, presentOn(0), true, 0, 0},
		{"distinct families", []bool{true, false}, presentOn(1), true, 0, 1},
		{"graphics later", []bool{false, false, true}, presentOn(0), true, 2, 0},
		{"no present", []bool{true, true}, presentOn(), false, 0, 0},
		{"no graphics", []bool{false}, presentOn(0), false, 0, 0},
		{"no families", nil, presentOn(0), false, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			indices, err := FindQueueFamilies(tc.graphics, tc.present)
			require.NoError(t, err)
			require.Equal(t, tc.complete, indices.IsComplete())
			if tc.complete {
				require.Equal(t, tc.graphic, *indices.GraphicsFamily)
				require.Equal(t, tc.pres, *indices.PresentFamily)
			}
		})
	}
}

func TestFindQueueFamiliesStopsOnceComplete(t *testing.T) {
	var asked []int
	indices, err := FindQueueFamilies([]bool{true, true, true}, func(family int) (bool, error) {
		asked = append(asked, family)
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{0}, asked)
	require.Equal(t, 0, *indices.GraphicsFamily)
}

func TestFindQueueFamiliesPropagatesError(t *testing.T) {
	boom := errors.New("surface lost")
	_, err := FindQueueFamilies([]bool{true}, func(int) (bool, error) { return false, boom })
	require.ErrorIs(t, err, boom)
}

func TestUniqueFamilies(t *testing.T) {
	same := QueueFamilyIndices{GraphicsFamily: intPtr(1), PresentFamily: intPtr(1)}
	require.Equal(t, []int{1}, same.Unique())

	distinct := QueueFamilyIndices{GraphicsFamily: intPtr(0), PresentFamily: intPtr(2)}
	require.Equal(t, []int{0, 2}, distinct.Unique())

	incomplete := QueueFamilyIndices{GraphicsFamily: intPtr(0)}
	require.Nil(t, incomplete.Unique())
}

func TestMissing(t *testing.T) {
	available := map[string]struct{}{
		"VK_KHR_swapchain":            {},
		"VK_LAYER_KHRONOS_validation": {},
	}

	require.Empty(t, Missing([]string{"VK_KHR_swapchain"}, available))
	require.Empty(t, Missing(nil, available))
	require.Equal(t, []string{"VK_EXT_a", "VK_EXT_b"}, Missing([]string{"VK_EXT_b", "VK_KHR_swapchain", "VK_EXT_a"}, available))
	require.Equal(t, []string{"VK_KHR_swapchain"}, Missing([]string{"VK_KHR_swapchain"}, map[string]int{"VK_KHR_swapchain_extra": 1}))
}

func adequateSupport() *SwapchainSupport {
	return &SwapchainSupport{
		Capabilities: &khr_surface.SurfaceCapabilities{MinImageCount: 2},
		Formats:      []khr_surface.SurfaceFormat{{Format: core1_0.FormatB8G8R8A8SRGB}},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
	}
}

func TestPickFirst(t *testing.T) {
	complete := QueueFamilyIndices{GraphicsFamily: intPtr(0), PresentFamily: intPtr(0)}

	noFormats := adequateSupport()
	noFormats.Formats = nil
	noModes := adequateSupport()
	noModes.PresentModes = nil

	candidates := []Candidate{
		{Name: "no queues", Support: adequateSupport()},
		{Name: "no swapchain", Indices: complete, MissingExtensions: []string{"VK_KHR_swapchain"}},
		{Name: "no formats", Indices: complete, Support: noFormats},
		{Name: "no modes", Indices: complete, Support: noModes},
		{Name: "first good", Indices: complete, Support: adequateSupport()},
		{Name: "second good", Indices: complete, Support: adequateSupport()},
	}

	idx, err := PickFirst(candidates)
	require.NoError(t, err)
	require.Equal(t, "first good", candidates[idx].Name)

	_, err = PickFirst(candidates[:4])
	require.ErrorIs(t, err, ErrNoSuitableDevice)

	_, err = PickFirst(nil)
	require.ErrorIs(t, err, ErrNoDevices)
}

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	unorm := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	rgba := khr_surface.SurfaceFormat{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}

	require.Equal(t, preferred, ChooseSurfaceFormat([]khr_surface.SurfaceFormat{unorm, rgba, preferred}))
	require.Equal(t, unorm, ChooseSurfaceFormat([]khr_surface.SurfaceFormat{unorm, rgba}))
	require.Equal(t, khr_surface.SurfaceFormat{}, ChooseSurfaceFormat(nil))
}

func TestChooseSwapPresentMode(t *testing.T) {
	require.Equal(t, khr_surface.PresentModeMailbox, ChooseSwapPresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate, khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox,
	}))
	require.Equal(t, khr_surface.PresentModeFIFO, ChooseSwapPresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
	}))
	require.Equal(t, khr_surface.PresentModeFIFO, ChooseSwapPresentMode(nil))
}

func TestChooseSwapExtent(t *testing.T) {
	fixed := &khr_surface.SurfaceCapabilities{
		CurrentExtent: core1_0.Extent2D{Width: 1024, Height: 768},
	}
	require.Equal(t, core1_0.Extent2D{Width: 1024, Height: 768}, ChooseSwapExtent(fixed, 800, 600))

	flexible := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: MatchWindowExtent, Height: MatchWindowExtent},
		MinImageExtent: core1_0.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: core1_0.Extent2D{Width: 1000, Height: 500},
	}
	require.Equal(t, core1_0.Extent2D{Width: 800, Height: 500}, ChooseSwapExtent(flexible, 800, 600))
	require.Equal(t, core1_0.Extent2D{Width: 100, Height: 100}, ChooseSwapExtent(flexible, 10, 0))
	require.Equal(t, core1_0.Extent2D{Width: 1000, Height: 500}, ChooseSwapExtent(flexible, 4000, 4000))
}

func TestChooseImageCount(t *testing.T) {
	testCases := []struct {
		min, max, want int
	}{
		{2, 0, 3},
		{2, 8, 3},
		{2, 2, 2},
		{3, 3, 3},
		{1, 0, 2},
	}

	for _, tc := range testCases {
		caps := &khr_surface.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
		require.Equal(t, tc.want, ChooseImageCount(caps), "min %d max %d", tc.min, tc.max)
	}
}

func TestChooseSharingMode(t *testing.T) {
	mode, families := ChooseSharingMode(QueueFamilyIndices{GraphicsFamily: intPtr(0), PresentFamily: intPtr(0)})
	require.Equal(t, core1_0.SharingModeExclusive, mode)
	require.Nil(t, families)

	mode, families = ChooseSharingMode(QueueFamilyIndices{GraphicsFamily: intPtr(0), PresentFamily: intPtr(1)})
	require.Equal(t, core1_0.SharingModeConcurrent, mode)
	require.Equal(t, []int{0, 1}, families)
}

func TestSelectionIsIdempotent(t *testing.T) {
	formats := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}
	modes := []khr_surface.PresentMode{khr_surface.PresentModeFIFO, khr_surface.PresentModeMailbox}
	caps := &khr_surface.SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  4,
		CurrentExtent:  core1_0.Extent2D{Width: MatchWindowExtent, Height: MatchWindowExtent},
		MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}

	firstFormat := ChooseSurfaceFormat(formats)
	firstMode := ChooseSwapPresentMode(modes)
	firstExtent := ChooseSwapExtent(caps, 800, 600)
	firstCount := ChooseImageCount(caps)

	for i := 0; i < 10; i++ {
		require.Equal(t, firstFormat, ChooseSurfaceFormat(formats))
		require.Equal(t, firstMode, ChooseSwapPresentMode(modes))
		require.Equal(t, firstExtent, ChooseSwapExtent(caps, 800, 600))
		require.Equal(t, firstCount, ChooseImageCount(caps))
	}
}
