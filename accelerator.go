package screentone

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot handle this stage with
// its current program. The dispatcher transparently falls back to the
// sequential path for that stage alone.
var ErrFallbackToCPU = errors.New("screentone: falling back to CPU processing")

// StageOp describes stage types for capability checking.
type StageOp uint32

const (
	// OpToneDither represents tone-mapping and ordered/pattern dithering.
	// Error diffusion is never expressed as a StageOp: it cannot run on
	// the parallel path.
	OpToneDither StageOp = 1 << iota

	// OpHalftone represents rotated-grid halftone screening.
	OpHalftone
)

// StageTarget provides pixel buffer access for accelerated stage output.
// Data is straight RGBA, 4 bytes per pixel, laid out row by row with the
// given Stride.
type StageTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// StageProgram is a self-contained description of one accelerated stage:
// everything the parallel path needs, resolved from the effect's current
// parameters. The accelerated path executes one program per dispatch, so
// the dispatcher reads results back between consecutive programs.
type StageProgram interface {
	// Op returns the stage type for capability checks.
	Op() StageOp
}

// Accelerator is an optional parallel execution provider.
//
// When registered via RegisterAccelerator, the dispatcher offers qualifying
// halftone and dither stages to the accelerator first. If RunStage returns
// ErrFallbackToCPU or any other error, the stage re-runs on the sequential
// path; capability absence is a silent degradation, never a user-facing
// error.
//
// Implementations are provided by backend packages. Users opt in via blank
// import:
//
//	import _ "github.com/gogpu/screentone/gpu" // enables GPU acceleration
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes device resources. Called once during registration.
	// If Init fails the accelerator is not registered and the parallel
	// path stays disabled for the whole session; there is no retry.
	Init() error

	// Close releases device resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given
	// stage type. This is a fast check used to skip dispatch entirely.
	CanAccelerate(op StageOp) bool

	// RunStage executes one stage program against the target, reading the
	// target pixels as input and writing the transformed pixels back.
	// Returns ErrFallbackToCPU when the program cannot be accelerated.
	RunStage(target StageTarget, prog StageProgram) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// share GPU resources with an external provider (e.g., a host window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers an accelerator for the parallel path.
//
// Only one accelerator can be registered; subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned: the session degrades permanently to the sequential
// path.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("screentone: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// GetAccelerator returns the currently registered accelerator, or nil.
func GetAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
func SetAcceleratorDeviceProvider(provider any) error {
	a := GetAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
