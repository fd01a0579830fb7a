package renderer

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (r *Renderer) createCommandPool() error {
	pool, res, err := r.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: *r.queueFamilies.GraphicsFamily,
	})
	if err != nil {
		return construction(err, res, "command pool")
	}
	r.commandPool = pool
	r.cleanup.push("command pool", func() {
		r.deviceDriver.DestroyCommandPool(r.commandPool, nil)
	})

	return nil
}

// createCommandBuffers records one buffer per swap image. The recorded
// commands never change, so they are submitted again every time that image
// is drawn.
func (r *Renderer) createCommandBuffers() error {
	buffers, res, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(r.images),
	})
	if err != nil {
		return construction(err, res, "command buffers")
	}
	r.cleanup.push("command buffers", func() {
		r.deviceDriver.FreeCommandBuffers(buffers...)
	})

	for i, buffer := range buffers {
		r.images[i].commandBuffer = buffer

		err = r.recordCommandBuffer(r.images[i])
		if err != nil {
			return markf(ErrConstruction, err, "failed to record command buffer %d", i)
		}
	}

	return nil
}

func (r *Renderer) recordCommandBuffer(img *swapImage) error {
	buffer := img.commandBuffer

	_, err := r.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return err
	}

	err = r.deviceDriver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  r.renderPass,
			Framebuffer: img.framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
			},
		})
	if err != nil {
		return err
	}

	r.deviceDriver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, r.graphicsPipeline)
	r.deviceDriver.CmdDraw(buffer, 3, 1, 0, 0)
	r.deviceDriver.CmdEndRenderPass(buffer)

	_, err = r.deviceDriver.EndCommandBuffer(buffer)
	return err
}
