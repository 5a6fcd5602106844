//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"
)

// quadVertexShaderSource is the fixed vertex stage every kernel links
// against. It forwards clip-space positions and passes the texture
// coordinate through to the fragment stage.
const quadVertexShaderSource = `struct VSOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) texcoord: vec2<f32>) -> VSOut {
    var out: VSOut;
    out.pos = vec4<f32>(position, 0.0, 1.0);
    out.uv = texcoord;
    return out;
}
`

// quadVertexStride is the byte stride of each quad vertex buffer: one
// vec2<f32> per vertex.
const quadVertexStride = 8

// quadIndexCount is the indices drawn per invocation: two triangles with
// a shared edge covering the full render target.
const quadIndexCount = 6

// quadGeometry holds the fixed fullscreen quad: a clip-space position
// buffer, a texture-coordinate buffer, and a six-entry index buffer.
// Created once per device, shared by every invocation, read-only after
// upload.
type quadGeometry struct {
	positions hal.Buffer
	texcoords hal.Buffer
	indices   hal.Buffer
}

// createQuadGeometry uploads the quad's corner data. Corner order is
// bottom-left, bottom-right, top-right, top-left; triangles 0,1,2 and
// 2,3,0. Texture v runs opposite clip-space y: clip y=+1 is framebuffer
// row 0 and v=0 is the first uploaded texel row, so output row r must
// sample input row r.
func createQuadGeometry(device hal.Device, queue hal.Queue) (*quadGeometry, error) {
	positions := quadVertexData(
		-1, -1,
		1, -1,
		1, 1,
		-1, 1,
	)
	texcoords := quadVertexData(
		0, 1,
		1, 1,
		1, 0,
		0, 0,
	)
	indexData := make([]byte, quadIndexCount*2)
	for i, idx := range [quadIndexCount]uint16{0, 1, 2, 2, 3, 0} {
		binary.LittleEndian.PutUint16(indexData[i*2:], idx)
	}

	g := &quadGeometry{}
	var err error

	g.positions, err = createVertexBuffer(device, queue, "turbo_quad_pos", positions, gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	g.texcoords, err = createVertexBuffer(device, queue, "turbo_quad_uv", texcoords, gputypes.BufferUsageVertex)
	if err != nil {
		g.destroy(device)
		return nil, err
	}
	g.indices, err = createVertexBuffer(device, queue, "turbo_quad_idx", indexData, gputypes.BufferUsageIndex)
	if err != nil {
		g.destroy(device)
		return nil, err
	}
	return g, nil
}

func createVertexBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", turbo.ErrResourceAllocation, label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (g *quadGeometry) destroy(device hal.Device) {
	if g.indices != nil {
		device.DestroyBuffer(g.indices)
		g.indices = nil
	}
	if g.texcoords != nil {
		device.DestroyBuffer(g.texcoords)
		g.texcoords = nil
	}
	if g.positions != nil {
		device.DestroyBuffer(g.positions)
		g.positions = nil
	}
}

// quadVertexData serializes vec2 float pairs little-endian.
func quadVertexData(values ...float32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// quadVertexLayouts returns the two single-attribute vertex buffer
// layouts: position at location 0, texture coordinate at location 1.
func quadVertexLayouts() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // texcoord
			},
		},
	}
}
