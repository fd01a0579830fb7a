package renderer

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// renderPassCreateInfo describes a single subpass clearing and storing one
// color attachment that ends up ready for presentation. The external
// dependency keeps the layout transition from running before the acquire
// semaphore has been waited on.
func renderPassCreateInfo(format core1_0.Format) core1_0.RenderPassCreateInfo {
	return core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	}
}

func (r *Renderer) createRenderPass() error {
	renderPass, res, err := r.deviceDriver.CreateRenderPass(nil, renderPassCreateInfo(r.swapchainFormat.Format))
	if err != nil {
		return construction(err, res, "render pass")
	}
	r.renderPass = renderPass
	r.cleanup.push("render pass", func() {
		r.deviceDriver.DestroyRenderPass(r.renderPass, nil)
	})

	return nil
}

// viewportState covers the whole swapchain extent. The pipeline bakes it in,
// so the pipeline must be rebuilt whenever the extent changes.
func viewportState(extent core1_0.Extent2D) *core1_0.PipelineViewportStateCreateInfo {
	return &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(extent.Width),
				Height:   float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: extent,
			},
		},
	}
}

func (r *Renderer) createGraphicsPipeline() error {
	vertShader, res, err := r.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: r.shaders.Vertex,
	})
	if err != nil {
		return construction(err, res, "vertex shader module")
	}
	defer r.deviceDriver.DestroyShaderModule(vertShader, nil)

	fragShader, res, err := r.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: r.shaders.Fragment,
	})
	if err != nil {
		return construction(err, res, "fragment shader module")
	}
	defer r.deviceDriver.DestroyShaderModule(fragShader, nil)

	// Vertices are generated in the vertex shader.
	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	pipelineLayout, res, err := r.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return construction(err, res, "pipeline layout")
	}
	r.pipelineLayout = pipelineLayout
	r.cleanup.push("pipeline layout", func() {
		r.deviceDriver.DestroyPipelineLayout(r.pipelineLayout, nil)
	})

	pipelines, res, err := r.deviceDriver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewportState(r.swapchainExtent),
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             r.pipelineLayout,
			RenderPass:         r.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return construction(err, res, "graphics pipeline")
	}
	r.graphicsPipeline = pipelines[0]
	r.cleanup.push("graphics pipeline", func() {
		r.deviceDriver.DestroyPipeline(r.graphicsPipeline, nil)
	})

	return nil
}

func (r *Renderer) createFramebuffers() error {
	for _, img := range r.images {
		framebuffer, res, err := r.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: r.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				img.view,
			},
			Width:  r.swapchainExtent.Width,
			Height: r.swapchainExtent.Height,
		})
		if err != nil {
			return construction(err, res, "framebuffer")
		}

		img := img
		img.framebuffer = framebuffer
		r.cleanup.push("framebuffer", func() {
			r.deviceDriver.DestroyFramebuffer(img.framebuffer, nil)
		})
	}

	return nil
}
