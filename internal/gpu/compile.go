//go:build !nogpu

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"
)

// kernelPipeline holds the per-invocation program objects: the fresh
// fragment module and the render pipeline linking it against the fixed
// vertex stage. Never cached; destroyed before Execute returns.
type kernelPipeline struct {
	fragment   hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// compileKernel validates the assembled source with the naga front end,
// compiles it as the fragment stage, and links the render pipeline.
// body is the caller's original text, used to build CompileError with
// the caller's own line numbering.
func (e *Engine) compileKernel(source, body string) (*kernelPipeline, error) {
	// The front end produces the useful diagnostics; the device compile
	// below sees only already-valid source.
	if _, err := naga.Compile(source); err != nil {
		return nil, compileError(err.Error(), body)
	}

	p := &kernelPipeline{}

	frag, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "turbo_kernel",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, compileError(err.Error(), body)
	}
	p.fragment = frag

	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "turbo_kernel_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.destroy(e.device)
		return nil, fmt.Errorf("%w: create bind group layout: %v", turbo.ErrResourceAllocation, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "turbo_kernel_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(e.device)
		return nil, fmt.Errorf("%w: create pipeline layout: %v", turbo.ErrResourceAllocation, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := e.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "turbo_kernel_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     e.vertexShader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayouts(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA32Float,
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
		p.destroy(e.device)
		return nil, &turbo.LinkError{Log: err.Error()}
	}
	p.pipeline = pipeline

	return p, nil
}

// destroy releases pipeline objects in reverse creation order. Safe on a
// partially constructed pipeline.
func (p *kernelPipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fragment != nil {
		device.DestroyShaderModule(p.fragment)
		p.fragment = nil
	}
}

// compileError builds a CompileError whose line number refers to the
// caller's body text rather than the assembled source.
func compileError(log, body string) *turbo.CompileError {
	line := diagnosticLine(log) - turbo.PreludeLineCount()
	if line < 1 {
		line = 0
	}
	return &turbo.CompileError{
		Line: line,
		Log:  log,
		Body: turbo.AnnotateBody(body),
	}
}

// diagnosticLine extracts the first line number from a front-end
// diagnostic. Recognizes "line N" phrasing and ":N:" position markers.
// Returns 0 when no position is present.
func diagnosticLine(log string) int {
	lower := strings.ToLower(log)
	if i := strings.Index(lower, "line "); i >= 0 {
		if n := leadingInt(lower[i+5:]); n > 0 {
			return n
		}
	}
	for i := 0; i+1 < len(lower); i++ {
		if lower[i] != ':' {
			continue
		}
		rest := lower[i+1:]
		n := leadingInt(rest)
		if n <= 0 {
			continue
		}
		j := 0
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j < len(rest) && rest[j] == ':' {
			return n
		}
	}
	return 0
}

func leadingInt(s string) int {
	n := 0
	seen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		seen = true
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return 0
		}
	}
	if !seen {
		return 0
	}
	return n
}
