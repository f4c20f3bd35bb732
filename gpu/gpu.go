//go:build !nogpu

// Package gpu registers the wgpu compute accelerator for the parallel
// execution path.
//
// Import this package to run qualifying halftone and ordered-dither stages
// as GPU compute passes. If GPU initialization fails (no Vulkan available),
// registration is silently skipped and every stage runs on the sequential
// per-pixel path for the rest of the session; capability absence is logged,
// never surfaced as an error.
//
// Usage:
//
//	import _ "github.com/gogpu/screentone/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/screentone"
	gpuimpl "github.com/gogpu/screentone/internal/gpu"
)

func init() {
	accel := &gpuimpl.StageAccelerator{}
	if err := screentone.RegisterAccelerator(accel); err != nil {
		screentone.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// DeviceHandle is the provider interface for GPU device sharing with a host
// framework, aliased from the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// SetDeviceProvider configures the accelerator to reuse a shared GPU device
// from an external provider instead of owning its own instance. The
// provider should also expose HalDevice() any and HalQueue() any returning
// wgpu/hal types.
//
// Call this after registration, before rendering.
func SetDeviceProvider(provider DeviceHandle) error {
	return screentone.SetAcceleratorDeviceProvider(provider)
}
