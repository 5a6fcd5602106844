//go:build !nogpu

// Package gpu registers the wgpu engine so turbo kernels run on the GPU.
//
// Import this package for its side effect:
//
//	import _ "github.com/gogpu/turbo/gpu"
//
// The engine opens its device lazily: a missing Vulkan backend or absent
// adapters surfaces from turbo.NewContext as ErrEnvironmentUnsupported,
// not at import time.
package gpu

import (
	"github.com/gogpu/turbo"
	gpuimpl "github.com/gogpu/turbo/internal/gpu"
)

func init() {
	if err := turbo.RegisterEngine(gpuimpl.New()); err != nil {
		turbo.Logger().Warn("GPU engine not available", "err", err)
	}
}
