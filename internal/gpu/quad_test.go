//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"
)

func TestCreateQuadGeometry(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	cd := &countingDevice{Device: dev}

	g, err := createQuadGeometry(cd, queue)
	if err != nil {
		t.Fatalf("createQuadGeometry: %v", err)
	}
	if g.positions == nil || g.texcoords == nil || g.indices == nil {
		t.Fatal("quad geometry incomplete")
	}
	if got := atomic.LoadInt32(&cd.buffersCreated); got != 3 {
		t.Errorf("buffers created = %d, want 3", got)
	}

	g.destroy(cd)
	if g.positions != nil || g.texcoords != nil || g.indices != nil {
		t.Error("destroy did not clear buffers")
	}
	if got := atomic.LoadInt32(&cd.buffersDestroyed); got != 3 {
		t.Errorf("buffers destroyed = %d, want 3", got)
	}

	// Second destroy is a no-op.
	g.destroy(cd)
	if got := atomic.LoadInt32(&cd.buffersDestroyed); got != 3 {
		t.Errorf("buffers destroyed after double destroy = %d, want 3", got)
	}
}

func TestCreateQuadGeometryPartialFailure(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	cd := &countingDevice{Device: dev, failLabel: "turbo_quad_uv"}

	_, err := createQuadGeometry(cd, queue)
	if !errors.Is(err, turbo.ErrResourceAllocation) {
		t.Fatalf("error = %v, want ErrResourceAllocation", err)
	}
	if c, x := atomic.LoadInt32(&cd.buffersCreated), atomic.LoadInt32(&cd.buffersDestroyed); c != x {
		t.Errorf("buffers created %d, destroyed %d after failure", c, x)
	}
}

// uploadRecorderQueue captures vertex buffer uploads in creation order.
type uploadRecorderQueue struct {
	hal.Queue
	uploads [][]byte
}

func (q *uploadRecorderQueue) WriteBuffer(_ hal.Buffer, _ uint64, data []byte) {
	q.uploads = append(q.uploads, append([]byte(nil), data...))
}

func decodeVec2s(t *testing.T, raw []byte) [][2]float32 {
	t.Helper()
	if len(raw)%8 != 0 {
		t.Fatalf("vertex data is %d bytes, not vec2 aligned", len(raw))
	}
	out := make([][2]float32, len(raw)/8)
	for i := range out {
		out[i][0] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		out[i][1] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
	}
	return out
}

func TestQuadTexcoordOrientation(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	rq := &uploadRecorderQueue{Queue: queue}

	g, err := createQuadGeometry(dev, rq)
	if err != nil {
		t.Fatalf("createQuadGeometry: %v", err)
	}
	defer g.destroy(dev)

	if len(rq.uploads) != 3 {
		t.Fatalf("recorded %d uploads, want 3 (positions, texcoords, indices)", len(rq.uploads))
	}
	positions := decodeVec2s(t, rq.uploads[0])
	texcoords := decodeVec2s(t, rq.uploads[1])
	if len(positions) != 4 || len(texcoords) != 4 {
		t.Fatalf("decoded %d positions and %d texcoords, want 4 each", len(positions), len(texcoords))
	}

	// Clip-space y=+1 lands on framebuffer row 0, and v=0 addresses the
	// first uploaded texel row. For output row r to sample input row r,
	// every corner needs u = (x+1)/2 and v = (1-y)/2. Getting v wrong
	// flips every readback vertically on grids taller than one row.
	for i := range positions {
		x, y := positions[i][0], positions[i][1]
		u, v := texcoords[i][0], texcoords[i][1]
		if want := (x + 1) / 2; u != want {
			t.Errorf("corner %d at clip x=%v: u = %v, want %v", i, x, u, want)
		}
		if want := (1 - y) / 2; v != want {
			t.Errorf("corner %d at clip y=%v: v = %v, want %v (vertical flip)", i, y, v, want)
		}
	}
}

func TestQuadVertexData(t *testing.T) {
	raw := quadVertexData(-1, 1)
	if len(raw) != 8 {
		t.Fatalf("len = %d, want 8", len(raw))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw)); got != -1 {
		t.Errorf("first value = %v, want -1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])); got != 1 {
		t.Errorf("second value = %v, want 1", got)
	}
}

func TestQuadVertexLayouts(t *testing.T) {
	layouts := quadVertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("len(layouts) = %d, want 2", len(layouts))
	}
	for i, l := range layouts {
		if l.ArrayStride != quadVertexStride {
			t.Errorf("layout %d stride = %d, want %d", i, l.ArrayStride, quadVertexStride)
		}
		if len(l.Attributes) != 1 {
			t.Fatalf("layout %d has %d attributes, want 1", i, len(l.Attributes))
		}
		attr := l.Attributes[0]
		if attr.Format != gputypes.VertexFormatFloat32x2 {
			t.Errorf("layout %d format = %v, want Float32x2", i, attr.Format)
		}
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("layout %d shader location = %d, want %d", i, attr.ShaderLocation, i)
		}
	}
}
