package render

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/text.wgsl
var textShaderSource string

// textVertexStride is the byte size of one quad vertex: position vec2,
// texel coordinate vec2, color vec4.
const textVertexStride = 32

// viewportUniformSize is the byte size of the viewport uniform block.
const viewportUniformSize = 16

// textPipeline owns the GPU objects shared by every text draw: the
// shader module, the bind group layout, and the render pipeline.
type textPipeline struct {
	device     hal.Device
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// newTextPipeline builds the text pipeline for the given target format.
// With spirv set, the WGSL source is precompiled through naga instead
// of being handed to the backend as text.
func newTextPipeline(device hal.Device, format gputypes.TextureFormat, spirv bool) (*textPipeline, error) {
	if textShaderSource == "" {
		return nil, errors.New("render: embedded text shader is empty")
	}

	source := hal.ShaderSource{WGSL: textShaderSource}
	if spirv {
		words, err := compileToSPIRV(textShaderSource)
		if err != nil {
			return nil, fmt.Errorf("render: compile text shader: %w", err)
		}
		source = hal.ShaderSource{SPIRV: words}
	}

	p := &textPipeline{device: device}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "typeset_text_shader",
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create text shader: %w", err)
	}
	p.shader = shader

	// Pages are fetched with textureLoad at texel coordinates, so no
	// sampler binding is needed.
	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "typeset_text_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("render: create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "typeset_text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("render: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "typeset_text_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    textVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("render: create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// destroy releases the pipeline objects in reverse creation order.
func (p *textPipeline) destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// textVertexLayout describes the quad vertex buffer: position at
// location 0, texel coordinate at location 1, color at location 2.
func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: textVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{
					Format:         gputypes.VertexFormatFloat32x2,
					Offset:         0,
					ShaderLocation: 0,
				},
				{
					Format:         gputypes.VertexFormatFloat32x2,
					Offset:         8,
					ShaderLocation: 1,
				},
				{
					Format:         gputypes.VertexFormatFloat32x4,
					Offset:         16,
					ShaderLocation: 2,
				},
			},
		},
	}
}

// compileToSPIRV compiles WGSL source and repacks the byte stream into
// the 32-bit words the HAL expects.
func compileToSPIRV(wgsl string) ([]uint32, error) {
	data, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V byte length %d is not word aligned", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}
