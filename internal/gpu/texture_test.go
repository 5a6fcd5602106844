//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
)

// stubTexture and stubView stand in for hal resources in pure
// validation tests.
type stubTexture struct{}

func (stubTexture) Destroy()              {}
func (stubTexture) NativeHandle() uintptr { return 0 }

type stubView struct{}

func (stubView) Destroy()              {}
func (stubView) NativeHandle() uintptr { return 0 }

func completeTarget(dim uint32) *renderTarget {
	return &renderTarget{
		texture: stubTexture{},
		view:    stubView{},
		dim:     dim,
		format:  gputypes.TextureFormatRGBA32Float,
		usage:   gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	}
}

func TestValidateTargetComplete(t *testing.T) {
	if err := validateTarget(completeTarget(4), 4); err != nil {
		t.Errorf("validateTarget on complete target: %v", err)
	}
}

func TestValidateTargetClassification(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*renderTarget)
		want   turbo.FramebufferKind
	}{
		{"missing view", func(rt *renderTarget) { rt.view = nil }, turbo.FramebufferMissingAttachment},
		{"missing texture", func(rt *renderTarget) { rt.texture = nil }, turbo.FramebufferMissingAttachment},
		{"wrong dimension", func(rt *renderTarget) { rt.dim = 8 }, turbo.FramebufferDimensionMismatch},
		{"wrong format", func(rt *renderTarget) { rt.format = gputypes.TextureFormatRGBA8Unorm }, turbo.FramebufferUnsupportedFormat},
		{"not renderable", func(rt *renderTarget) { rt.usage = gputypes.TextureUsageCopySrc }, turbo.FramebufferUnknown},
		{"not readable", func(rt *renderTarget) { rt.usage = gputypes.TextureUsageRenderAttachment }, turbo.FramebufferUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := completeTarget(4)
			tt.mutate(rt)

			err := validateTarget(rt, 4)
			var fe *turbo.FramebufferError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want FramebufferError", err)
			}
			if fe.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", fe.Kind, tt.want)
			}
			if !errors.Is(err, turbo.ErrFramebuffer) {
				t.Error("error should match ErrFramebuffer")
			}
		})
	}
}

func TestUploadInputLifecycle(t *testing.T) {
	e, cd, cq := newTestEngine(t)

	data := make([]float32, 2*2*4)
	for i := range data {
		data[i] = float32(i) * 0.5
	}

	in, err := e.uploadInput(2, data)
	if err != nil {
		t.Fatalf("uploadInput: %v", err)
	}
	if in.texture == nil || in.view == nil || in.sampler == nil {
		t.Fatal("input texture incomplete")
	}
	if want := floatsToBytes(data); string(cq.uploaded) != string(want) {
		t.Error("uploaded bytes do not match the buffer contents")
	}

	in.destroy(e.device)
	if in.texture != nil || in.view != nil || in.sampler != nil {
		t.Error("destroy did not clear input objects")
	}
	if got := atomic.LoadInt32(&cd.texturesDestroyed); got != 1 {
		t.Errorf("textures destroyed = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&cd.samplersDestroyed); got != 1 {
		t.Errorf("samplers destroyed = %d, want 1", got)
	}

	// Second destroy is a no-op.
	in.destroy(e.device)
	if got := atomic.LoadInt32(&cd.texturesDestroyed); got != 1 {
		t.Errorf("textures destroyed after double destroy = %d, want 1", got)
	}
}

func TestCreateTargetRecordsShape(t *testing.T) {
	e, _, _ := newTestEngine(t)

	target, err := e.createTarget(8)
	if err != nil {
		t.Fatalf("createTarget: %v", err)
	}
	defer target.destroy(e.device)

	if target.texture == nil || target.view == nil {
		t.Fatal("target incomplete")
	}
	if target.dim != 8 {
		t.Errorf("dim = %d, want 8", target.dim)
	}
	if target.format != gputypes.TextureFormatRGBA32Float {
		t.Errorf("format = %v, want RGBA32Float", target.format)
	}
	if err := validateTarget(target, 8); err != nil {
		t.Errorf("fresh target fails validation: %v", err)
	}
}

func TestCreateTargetViewFailure(t *testing.T) {
	e, cd, _ := newTestEngine(t)
	cd.failLabel = "turbo_output_view"

	_, err := e.createTarget(4)
	var fe *turbo.FramebufferError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FramebufferError", err)
	}
	if fe.Kind != turbo.FramebufferMissingAttachment {
		t.Errorf("Kind = %v, want missing attachment", fe.Kind)
	}
	if c, x := atomic.LoadInt32(&cd.texturesCreated), atomic.LoadInt32(&cd.texturesDestroyed); c != x {
		t.Errorf("textures created %d, destroyed %d after view failure", c, x)
	}
}

func TestFloatByteConversion(t *testing.T) {
	vals := []float32{0, 1, -1, 0.5, 3.25e7, -2.5e-3}
	raw := floatsToBytes(vals)
	if len(raw) != len(vals)*4 {
		t.Fatalf("len(raw) = %d, want %d", len(raw), len(vals)*4)
	}
	// float32(1.0) is 0x3F800000 little-endian.
	if raw[4] != 0x00 || raw[5] != 0x00 || raw[6] != 0x80 || raw[7] != 0x3F {
		t.Errorf("1.0 encoded as % x, want 00 00 80 3f", raw[4:8])
	}

	back := make([]float32, len(vals))
	bytesToFloats(raw, back)
	for i := range vals {
		if back[i] != vals[i] {
			t.Errorf("back[%d] = %v, want %v", i, back[i], vals[i])
		}
	}
}
