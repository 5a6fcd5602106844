package turbo

import (
	"errors"
	"fmt"
	"sync"
)

// Context runs kernels against a single engine. It is the explicit handle
// for everything with device state: create one per process (or per shared
// device), run kernels through it, and Close it when done.
//
// A Context serializes Run calls internally, matching the synchronous
// execution model. Operations on a single Buffer must still be serialized
// by the caller because Run rewrites the buffer's backing storage.
type Context struct {
	mu     sync.Mutex
	engine Engine
	closed bool
}

// NewContext returns a Context bound to the engine chosen by opts, or to
// the registered default engine. Fails with ErrEnvironmentUnsupported when
// no engine is available or a requested shared device cannot be adopted.
func NewContext(opts ...Option) (*Context, error) {
	var o contextOptions
	for _, opt := range opts {
		opt(&o)
	}

	eng := o.engine
	if eng == nil {
		eng = RegisteredEngine()
	}
	if eng == nil {
		return nil, fmt.Errorf("%w: no engine registered (import github.com/gogpu/turbo/gpu)", ErrEnvironmentUnsupported)
	}

	if o.provider != nil {
		dpa, ok := eng.(DeviceProviderAware)
		if !ok {
			return nil, fmt.Errorf("%w: engine %q cannot adopt a shared device", ErrEnvironmentUnsupported, eng.Name())
		}
		if err := dpa.SetDeviceProvider(o.provider); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEnvironmentUnsupported, err)
		}
	}

	// Engines that open their device lazily expose EnsureDevice so a
	// missing environment surfaces here instead of on the first Run.
	if eo, ok := eng.(interface{ EnsureDevice() error }); ok {
		if err := eo.EnsureDevice(); err != nil {
			return nil, err
		}
	}

	return &Context{engine: eng}, nil
}

// Run executes kernelBody once per element group of buf and returns the
// first buf.Len() floats of the transformed storage. The returned slice
// aliases buf.Data(); a subsequent Run on the same buffer overwrites it.
//
// Failures propagate as the error kinds documented in this package:
// CompileError for malformed bodies, LinkError for stage linking,
// FramebufferError for unusable render targets, ErrResourceAllocation for
// device object creation. No partial result is promised on failure; the
// backing storage may be left in an intermediate state.
func (c *Context) Run(buf *Buffer, kernelBody string) ([]float32, error) {
	if buf == nil {
		return nil, errors.New("turbo: buffer must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("turbo: context is closed")
	}

	if buf.Len() == 0 {
		return buf.data[:0], nil
	}

	Logger().Debug("running kernel",
		"engine", c.engine.Name(), "len", buf.Len(), "dim", buf.Dim())

	if err := c.engine.Execute(buf, kernelBody); err != nil {
		return nil, err
	}
	return buf.data[:buf.length], nil
}

// Close releases the engine's device resources. The Context is unusable
// afterwards. Safe to call more than once.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.engine.Close()
}
