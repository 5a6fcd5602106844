package turbo

import (
	"errors"
	"sync"
)

// Engine executes kernels on a GPU device. Implementations live in
// backend packages and register themselves via blank import:
//
//	import _ "github.com/gogpu/turbo/gpu" // wgpu engine
type Engine interface {
	// Name returns the engine name (e.g., "wgpu").
	Name() string

	// Execute assembles and compiles kernelBody, runs it once per texel
	// of the buffer's texture grid, and writes the full grid back into
	// buf.Data(). Called with buf.Len() > 0.
	Execute(buf *Buffer, kernelBody string) error

	// Close releases the engine's device resources.
	Close() error
}

// DeviceProviderAware is an optional interface for engines that can run
// on a GPU device shared with an external provider instead of opening
// their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	engineMu sync.RWMutex
	engine   Engine
)

// RegisterEngine registers the process-wide default engine used by
// NewContext. Only one engine is registered; a later call replaces the
// previous one and closes it.
func RegisterEngine(e Engine) error {
	if e == nil {
		return errors.New("turbo: engine must not be nil")
	}
	engineMu.Lock()
	old := engine
	engine = e
	engineMu.Unlock()
	propagateLogger(e, Logger())
	if old != nil {
		if err := old.Close(); err != nil {
			Logger().Warn("closing replaced engine", "engine", old.Name(), "err", err)
		}
	}
	return nil
}

// RegisteredEngine returns the current default engine, or nil if none.
func RegisteredEngine() Engine {
	engineMu.RLock()
	e := engine
	engineMu.RUnlock()
	return e
}
