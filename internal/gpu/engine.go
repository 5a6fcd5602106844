//go:build !nogpu

// Package gpu implements the turbo engine on top of wgpu/hal. It owns the
// device handle, the fixed fullscreen quad geometry, and the fixed vertex
// stage; every kernel invocation creates and destroys its own fragment
// module, pipeline, textures, and staging buffer.
package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/turbo"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Engine executes turbo kernels through a render pipeline. It implements
// turbo.Engine and is registered by the turbo/gpu package.
//
// The device is opened lazily on the first Execute (or eagerly through
// EnsureDevice). Between invocations the engine retains only the device,
// the quad geometry, and the compiled vertex stage; everything else is
// per call.
type Engine struct {
	mu sync.Mutex

	logger *slog.Logger

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// True when the device came from an external provider and must not
	// be destroyed on Close.
	externalDevice bool

	vertexShader hal.ShaderModule
	quad         *quadGeometry

	ready bool
}

var _ turbo.Engine = (*Engine)(nil)

// New returns an engine with no device attached yet.
func New() *Engine {
	return &Engine{logger: turbo.Logger()}
}

func (e *Engine) Name() string { return "wgpu" }

// SetLogger installs the logger the engine reports through. Called by
// turbo.SetLogger via the registry.
func (e *Engine) SetLogger(l *slog.Logger) {
	e.mu.Lock()
	e.logger = l
	e.mu.Unlock()
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return turbo.Logger()
}

// EnsureDevice opens the GPU device and creates the fixed per-process
// objects if that has not happened yet. turbo.NewContext calls this so a
// missing environment surfaces at bootstrap rather than on first Run.
func (e *Engine) EnsureDevice() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureLocked()
}

func (e *Engine) ensureLocked() error {
	if e.ready {
		return nil
	}
	if e.device == nil {
		if err := e.openDevice(); err != nil {
			return fmt.Errorf("%w: %v", turbo.ErrEnvironmentUnsupported, err)
		}
	}
	if err := e.createFixedObjects(); err != nil {
		e.releaseDeviceLocked()
		return err
	}
	e.ready = true
	return nil
}

// openDevice enumerates adapters and opens the most capable one.
func (e *Engine) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	e.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		e.instance = nil
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		e.instance = nil
		return fmt.Errorf("open device: %w", err)
	}
	e.device = openDev.Device
	e.queue = openDev.Queue
	e.externalDevice = false
	e.log().Info("GPU adapter selected", "name", selected.Info.Name)
	return nil
}

// createFixedObjects compiles the vertex stage and uploads the quad
// geometry. Called once per device.
func (e *Engine) createFixedObjects() error {
	shader, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "turbo_quad_vertex",
		Source: hal.ShaderSource{WGSL: quadVertexShaderSource},
	})
	if err != nil {
		return fmt.Errorf("%w: compile vertex stage: %v", turbo.ErrResourceAllocation, err)
	}
	e.vertexShader = shader

	quad, err := createQuadGeometry(e.device, e.queue)
	if err != nil {
		e.device.DestroyShaderModule(e.vertexShader)
		e.vertexShader = nil
		return err
	}
	e.quad = quad
	return nil
}

// SetDeviceProvider switches the engine to a GPU device shared with an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (e *Engine) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("turbo-wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("turbo-wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("turbo-wgpu: provider HalQueue is not hal.Queue")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.destroyFixedObjects()
	e.releaseDeviceLocked()

	e.device = device
	e.queue = queue
	e.externalDevice = true

	if err := e.createFixedObjects(); err != nil {
		e.device = nil
		e.queue = nil
		e.externalDevice = false
		return fmt.Errorf("turbo-wgpu: fixed objects on shared device: %w", err)
	}
	e.ready = true
	e.log().Info("using shared GPU device")
	return nil
}

// Execute assembles, compiles, and runs one kernel invocation over buf.
// Per-call GPU objects are released on every path before returning.
func (e *Engine) Execute(buf *turbo.Buffer, kernelBody string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureLocked(); err != nil {
		return err
	}

	dim := uint32(buf.Dim()) //nolint:gosec // dimension is at most 2048

	source := turbo.AssembleKernel(kernelBody)
	pipeline, err := e.compileKernel(source, kernelBody)
	if err != nil {
		return err
	}
	defer pipeline.destroy(e.device)

	input, err := e.uploadInput(dim, buf.Data())
	if err != nil {
		return err
	}
	defer input.destroy(e.device)

	target, err := e.createTarget(dim)
	if err != nil {
		return err
	}
	defer target.destroy(e.device)

	return e.execute(buf, pipeline, input, target)
}

// Close releases all engine resources. Safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyFixedObjects()
	e.releaseDeviceLocked()
	e.ready = false
	return nil
}

func (e *Engine) destroyFixedObjects() {
	if e.device == nil {
		return
	}
	if e.quad != nil {
		e.quad.destroy(e.device)
		e.quad = nil
	}
	if e.vertexShader != nil {
		e.device.DestroyShaderModule(e.vertexShader)
		e.vertexShader = nil
	}
}

func (e *Engine) releaseDeviceLocked() {
	if !e.externalDevice {
		if e.device != nil {
			e.device.Destroy()
		}
		if e.instance != nil {
			e.instance.Destroy()
		}
	}
	e.device = nil
	e.queue = nil
	e.instance = nil
	e.externalDevice = false
	e.ready = false
}
