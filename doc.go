// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package turbo runs small numeric kernels over flat float32 arrays on
// the GPU, using a render pipeline as a parallel compute device.
//
// A kernel is a WGSL fragment-stage body with two primitives in scope:
// read() returns the current element as a vec4<f32>, and commit(v) writes
// the element's result. The engine uploads the buffer as a square RGBA
// float texture, draws a fullscreen quad into an offscreen render target
// so the kernel runs once per texel, and reads the pixels back into the
// buffer.
//
// Usage:
//
//	import (
//	    "github.com/gogpu/turbo"
//	    _ "github.com/gogpu/turbo/gpu" // register the wgpu engine
//	)
//
//	buf, err := turbo.Alloc(1 << 20)
//	if err != nil { ... }
//	for i := range buf.Data() {
//	    buf.Data()[i] = float32(i)
//	}
//
//	ctx, err := turbo.NewContext()
//	if err != nil { ... }
//	defer ctx.Close()
//
//	out, err := ctx.Run(buf, `commit(read() * 2.0);`)
//
// Each Run compiles the kernel fresh, creates its GPU objects for that
// single invocation, and releases them before returning. Nothing device
// side is retained between calls except the context's fixed quad geometry
// and vertex stage.
//
// Buffers are not safe for concurrent use; see Buffer.
package turbo
