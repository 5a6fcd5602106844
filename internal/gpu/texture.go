//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"
)

// bytesPerTexel is the byte size of one RGBA32Float texel, four logical
// float32 elements.
const bytesPerTexel = 16

// inputTexture is the per-invocation upload of a buffer's storage: a
// dim x dim RGBA32Float texture with a nearest, clamp-to-edge sampler so
// each texel maps to exactly one element group without interpolation.
type inputTexture struct {
	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

// uploadInput creates the input texture and writes data into it. data
// holds exactly dim*dim*4 floats by construction.
func (e *Engine) uploadInput(dim uint32, data []float32) (*inputTexture, error) {
	in := &inputTexture{}

	tex, err := e.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "turbo_input",
		Size:          hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA32Float,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create input texture: %v", turbo.ErrResourceAllocation, err)
	}
	in.texture = tex

	view, err := e.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "turbo_input_view",
		Format:        gputypes.TextureFormatRGBA32Float,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		in.destroy(e.device)
		return nil, fmt.Errorf("%w: create input view: %v", turbo.ErrResourceAllocation, err)
	}
	in.view = view

	sampler, err := e.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "turbo_input_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		in.destroy(e.device)
		return nil, fmt.Errorf("%w: create input sampler: %v", turbo.ErrResourceAllocation, err)
	}
	in.sampler = sampler

	e.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		floatsToBytes(data),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  dim * bytesPerTexel,
			RowsPerImage: dim,
		},
		&hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
	)

	return in, nil
}

func (in *inputTexture) destroy(device hal.Device) {
	if in.sampler != nil {
		device.DestroySampler(in.sampler)
		in.sampler = nil
	}
	if in.view != nil {
		device.DestroyTextureView(in.view)
		in.view = nil
	}
	if in.texture != nil {
		device.DestroyTexture(in.texture)
		in.texture = nil
	}
}

// renderTarget is the per-invocation output: a texture the kernel's
// render pass writes and the readback copies from. dim, format, and
// usage record what was created so completeness can be checked.
type renderTarget struct {
	texture hal.Texture
	view    hal.TextureView
	dim     uint32
	format  gputypes.TextureFormat
	usage   gputypes.TextureUsage
}

// createTarget allocates the output texture, attaches a view, and
// verifies the result is usable as a render target.
func (e *Engine) createTarget(dim uint32) (*renderTarget, error) {
	t := &renderTarget{
		dim:    dim,
		format: gputypes.TextureFormatRGBA32Float,
		usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	}

	tex, err := e.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "turbo_output",
		Size:          hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         t.usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create output texture: %v", turbo.ErrResourceAllocation, err)
	}
	t.texture = tex

	view, err := e.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "turbo_output_view",
		Format:        t.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.destroy(e.device)
		return nil, &turbo.FramebufferError{
			Kind:   turbo.FramebufferMissingAttachment,
			Detail: fmt.Sprintf("create output view: %v", err),
		}
	}
	t.view = view

	if err := validateTarget(t, dim); err != nil {
		t.destroy(e.device)
		return nil, err
	}
	return t, nil
}

// validateTarget is the completeness check performed before the target
// is bound. Failures are device faults, never caused by caller input.
func validateTarget(t *renderTarget, dim uint32) error {
	switch {
	case t.texture == nil || t.view == nil:
		return &turbo.FramebufferError{Kind: turbo.FramebufferMissingAttachment}
	case t.dim != dim:
		return &turbo.FramebufferError{
			Kind:   turbo.FramebufferDimensionMismatch,
			Detail: fmt.Sprintf("attachment is %dx%d, render size is %dx%d", t.dim, t.dim, dim, dim),
		}
	case t.format != gputypes.TextureFormatRGBA32Float:
		return &turbo.FramebufferError{
			Kind:   turbo.FramebufferUnsupportedFormat,
			Detail: fmt.Sprintf("attachment format %v", t.format),
		}
	case t.usage&gputypes.TextureUsageRenderAttachment == 0,
		t.usage&gputypes.TextureUsageCopySrc == 0:
		return &turbo.FramebufferError{
			Kind:   turbo.FramebufferUnknown,
			Detail: "attachment not renderable or not readable",
		}
	}
	return nil
}

func (t *renderTarget) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}

// floatsToBytes serializes float32 values little-endian for upload.
func floatsToBytes(values []float32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// bytesToFloats decodes a readback byte slice into dst in place.
func bytesToFloats(data []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
}
