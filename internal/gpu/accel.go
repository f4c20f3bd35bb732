//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/screentone"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// StageAccelerator runs the halftone and ordered-dither stage programs as
// wgpu/hal compute passes. It implements the screentone.Accelerator
// interface.
//
// Each RunStage call is one dispatch: pixels are packed into a storage
// buffer, the stage's pipeline runs over an 8x8 workgroup grid, and the
// result is fenced, read back, and unpacked into the target. The dispatcher
// on the CPU side owns all hand-off between consecutive programs.
type StageAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	ditherShader     hal.ShaderModule
	ditherBindLayout hal.BindGroupLayout
	ditherPipeLayout hal.PipelineLayout
	ditherPipeline   hal.ComputePipeline

	halftoneShader     hal.ShaderModule
	halftoneBindLayout hal.BindGroupLayout
	halftonePipeLayout hal.PipelineLayout
	halftonePipeline   hal.ComputePipeline

	logger *slog.Logger

	gpuReady       bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
}

var _ screentone.Accelerator = (*StageAccelerator)(nil)

func (a *StageAccelerator) Name() string { return "wgpu" }

// SetLogger receives the package logger from screentone.SetLogger.
func (a *StageAccelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

func (a *StageAccelerator) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return screentone.Logger()
}

func (a *StageAccelerator) CanAccelerate(op screentone.StageOp) bool {
	return op&(screentone.OpToneDither|screentone.OpHalftone) != 0
}

// Init brings up the GPU. An init failure is returned to
// RegisterAccelerator, which leaves the accelerator unregistered: the
// session degrades permanently to the sequential path with no retry.
func (a *StageAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initGPU()
}

func (a *StageAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		// Don't destroy shared resources — we don't own them.
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider (e.g., a host window). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *StageAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("screentone-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("screentone-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("screentone-gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.destroyPipelines()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("screentone-gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true
	a.log().Info("switched to shared GPU device")
	return nil
}

// RunStage executes one stage program against the target.
func (a *StageAccelerator) RunStage(target screentone.StageTarget, prog screentone.StageProgram) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return screentone.ErrFallbackToCPU
	}
	if target.Width < 1 || target.Height < 1 || len(target.Data) < target.Width*target.Height*4 {
		return screentone.ErrFallbackToCPU
	}

	switch p := prog.(type) {
	case screentone.DitherProgram:
		return a.dispatchDither(target, p)
	case screentone.HalftoneProgram:
		return a.dispatchHalftone(target, p)
	default:
		return screentone.ErrFallbackToCPU
	}
}

func (a *StageAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
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
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	a.log().Info("GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

// createComputePipeline compiles one WGSL module and builds its layouts.
func (a *StageAccelerator) createComputePipeline(label, source string, entries []gputypes.BindGroupLayoutEntry) (
	hal.ShaderModule, hal.BindGroupLayout, hal.PipelineLayout, hal.ComputePipeline, error,
) {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create %s bind group layout: %w", label, err)
	}
	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create %s pipeline layout: %w", label, err)
	}
	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label + "_pipeline", Layout: pipeLayout,
		Compute: hal.ComputeState{Module: shader, EntryPoint: "main"},
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create %s compute pipeline: %w", label, err)
	}
	return shader, bindLayout, pipeLayout, pipeline, nil
}

func (a *StageAccelerator) createPipelines() error {
	uniform := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	roStorage := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	rwStorage := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}

	var err error
	a.ditherShader, a.ditherBindLayout, a.ditherPipeLayout, a.ditherPipeline, err =
		a.createComputePipeline("tone_dither", ditherShaderSource, []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: uniform},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: roStorage},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: rwStorage},
		})
	if err != nil {
		return err
	}

	a.halftoneShader, a.halftoneBindLayout, a.halftonePipeLayout, a.halftonePipeline, err =
		a.createComputePipeline("halftone", halftoneShaderSource, []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: uniform},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: roStorage},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: rwStorage},
		})
	return err
}

func (a *StageAccelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	for _, p := range []hal.ComputePipeline{a.ditherPipeline, a.halftonePipeline} {
		if p != nil {
			a.device.DestroyComputePipeline(p)
		}
	}
	for _, l := range []hal.PipelineLayout{a.ditherPipeLayout, a.halftonePipeLayout} {
		if l != nil {
			a.device.DestroyPipelineLayout(l)
		}
	}
	for _, l := range []hal.BindGroupLayout{a.ditherBindLayout, a.halftoneBindLayout} {
		if l != nil {
			a.device.DestroyBindGroupLayout(l)
		}
	}
	for _, s := range []hal.ShaderModule{a.ditherShader, a.halftoneShader} {
		if s != nil {
			a.device.DestroyShaderModule(s)
		}
	}
	a.ditherShader, a.ditherBindLayout, a.ditherPipeLayout, a.ditherPipeline = nil, nil, nil, nil
	a.halftoneShader, a.halftoneBindLayout, a.halftonePipeLayout, a.halftonePipeline = nil, nil, nil, nil
}

// dispatchDither runs the tone/dither program: one read-only input buffer
// holding the threshold matrix, one read-write pixel buffer.
func (a *StageAccelerator) dispatchDither(target screentone.StageTarget, prog screentone.DitherProgram) error {
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	pixelBufSize := uint64(w) * uint64(h) * 4

	uni := makeDitherUniform(w, h, prog)
	matrix := matrixCells(prog)

	pixBuf, err := a.createAndFill("dither_pixels",
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst,
		packPixels(target.Data, int(w*h)))
	if err != nil {
		return err
	}
	defer a.device.DestroyBuffer(pixBuf)

	matBuf, err := a.createAndFill("dither_matrix",
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst, matrix)
	if err != nil {
		return err
	}
	defer a.device.DestroyBuffer(matBuf)

	uniBuf, err := a.createAndFill("dither_params",
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, uni)
	if err != nil {
		return err
	}
	defer a.device.DestroyBuffer(uniBuf)

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "dither_bind", Layout: a.ditherBindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniBuf.NativeHandle(), Offset: 0, Size: uint64(len(uni))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: matBuf.NativeHandle(), Offset: 0, Size: uint64(len(matrix))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: pixBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create dither bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	return a.encodeAndReadback("tone_dither", a.ditherPipeline, bg, pixBuf, pixelBufSize, w, h, target.Data)
}

// dispatchHalftone runs the halftone program: the source pixels in a
// read-only buffer, the white-composited output in a read-write buffer.
func (a *StageAccelerator) dispatchHalftone(target screentone.StageTarget, prog screentone.HalftoneProgram) error {
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	pixelBufSize := uint64(w) * uint64(h) * 4

	uni := makeHalftoneUniform(w, h, prog)

	srcBuf, err := a.createAndFill("halftone_src",
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst,
		packPixels(target.Data, int(w*h)))
	if err != nil {
		return err
	}
	defer a.device.DestroyBuffer(srcBuf)

	dstBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "halftone_dst", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create halftone dst buffer: %w", err)
	}
	defer a.device.DestroyBuffer(dstBuf)

	uniBuf, err := a.createAndFill("halftone_params",
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, uni)
	if err != nil {
		return err
	}
	defer a.device.DestroyBuffer(uniBuf)

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "halftone_bind", Layout: a.halftoneBindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniBuf.NativeHandle(), Offset: 0, Size: uint64(len(uni))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create halftone bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	return a.encodeAndReadback("halftone", a.halftonePipeline, bg, dstBuf, pixelBufSize, w, h, target.Data)
}

// createAndFill creates a buffer and uploads its initial contents.
func (a *StageAccelerator) createAndFill(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: uint64(len(data)), Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	a.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// encodeAndReadback encodes one compute pass, copies the result buffer to a
// staging buffer, submits with a fence, and unpacks the readback into dst.
func (a *StageAccelerator) encodeAndReadback(
	label string, pipeline hal.ComputePipeline, bg hal.BindGroup,
	resultBuf hal.Buffer, pixelBufSize uint64, w, h uint32, dst []uint8,
) error {
	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label + "_pass"})
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bg, nil)
	computePass.Dispatch((w+7)/8, (h+7)/8, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(resultBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, 5*time.Second)
	if werr := fenceWaitErr(fenceOK, err); werr != nil {
		return werr
	}

	readback := make([]byte, pixelBufSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpackPixels(readback, dst, int(w*h))
	return nil
}

// fenceWaitErr turns a fence wait result into an error. A timeout carries no
// underlying error, so it gets its own message instead of wrapping nil.
func fenceWaitErr(ok bool, err error) error {
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return errors.New("wait for GPU: fence timed out")
	}
	return nil
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}
