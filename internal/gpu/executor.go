//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"
)

// gpuTimeout bounds the fence wait after submit. Kernels with caller
// written loops can run arbitrarily long on the device and cannot be
// cancelled once the draw is issued; the timeout turns a hang into an
// error.
const gpuTimeout = 5 * time.Second

// execute encodes one invocation: bind everything, draw the quad once,
// copy the target into a staging buffer, and read the full pixel grid
// back into buf's storage.
func (e *Engine) execute(buf *turbo.Buffer, p *kernelPipeline, input *inputTexture, target *renderTarget) error {
	dim := target.dim
	pixelBytes := uint64(dim) * uint64(dim) * bytesPerTexel

	bindGroup, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "turbo_kernel_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: input.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: input.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create bind group: %v", turbo.ErrResourceAllocation, err)
	}
	defer e.device.DestroyBindGroup(bindGroup)

	stagingBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "turbo_staging",
		Size:  pixelBytes,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create staging buffer: %v", turbo.ErrResourceAllocation, err)
	}
	defer e.device.DestroyBuffer(stagingBuf)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "turbo_encoder",
	})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %v", turbo.ErrResourceAllocation, err)
	}
	if err := encoder.BeginEncoding("turbo_run"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "turbo_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetViewport(0, 0, float32(dim), float32(dim), 0, 1)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, e.quad.positions, 0)
	rp.SetVertexBuffer(1, e.quad.texcoords, 0)
	rp.SetIndexBuffer(e.quad.indices, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(quadIndexCount, 1, 0, 0, 0)
	rp.End()

	// The draw leaves the target in render attachment layout; the copy
	// below needs transfer source. No-op on backends without explicit
	// layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: target.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(target.texture, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: dim * bytesPerTexel, RowsPerImage: dim},
		TextureBase:  hal.ImageCopyTexture{Texture: target.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %v", turbo.ErrResourceAllocation, err)
	}
	defer e.device.DestroyFence(fence)

	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBytes)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	bytesToFloats(readback, buf.Data())

	e.log().Debug("kernel executed", "dim", dim, "bytes", pixelBytes)
	return nil
}
