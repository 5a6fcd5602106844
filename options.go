package turbo

import "github.com/gogpu/gpucontext"

// Option configures a Context during creation.
//
// Example:
//
//	// Default: use the registered engine with its own device.
//	ctx, err := turbo.NewContext()
//
//	// Share the host application's GPU device:
//	ctx, err := turbo.NewContext(turbo.WithDeviceProvider(app))
type Option func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	engine   Engine
	provider gpucontext.DeviceProvider
}

// WithEngine sets a custom engine for the Context instead of the
// registered default. Use this for dependency injection in tests or for
// alternative backends.
func WithEngine(e Engine) Option {
	return func(o *contextOptions) {
		o.engine = e
	}
}

// WithDeviceProvider makes the Context's engine run on a GPU device
// shared with an external provider (e.g., a windowing framework) instead
// of opening its own. The provider must also expose HalDevice() any and
// HalQueue() any returning wgpu/hal types; otherwise NewContext fails
// with ErrEnvironmentUnsupported.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *contextOptions) {
		o.provider = p
	}
}
