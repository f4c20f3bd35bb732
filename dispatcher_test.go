package screentone

import (
	"errors"
	"testing"
)

func TestDispatcherNoAcceleratorRunsSequential(t *testing.T) {
	resetAccelerator()

	d := newDispatcher(nil)
	e := NewDitherEffect(nil)
	p := ditherParams(map[string]any{
		"renderMode":   RenderModeGrade,
		"colorSpace":   ColorSpaceIndexed,
		"indexedCount": 8,
	})

	r := flatRaster(4, 4, 200, 100, 50, 255)
	d.run(e, r, p, 1.0)

	// Sequential grade path still applies.
	cr, cg, cb, _ := r.Pixel(0, 0)
	if cr != 255 || cg != 0 || cb != 0 {
		t.Errorf("pixel = (%d,%d,%d), want (255,0,0)", cr, cg, cb)
	}
}

func TestDispatcherAcceleratesQualifyingStage(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	mock := &mockAccelerator{
		name:     "mock",
		canAccel: OpToneDither | OpHalftone,
		mutate: func(target StageTarget) {
			// Marker fill so copy-back is observable.
			for i := 0; i < len(target.Data); i += 4 {
				target.Data[i] = 7
			}
		},
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewDitherEffect(nil)
	p := ditherParams(map[string]any{"algorithm": AlgorithmBayer})

	r := flatRaster(4, 4, 100, 100, 100, 255)
	d.run(e, r, p, 1.0)

	if mock.runCount() != 1 {
		t.Fatalf("RunStage calls = %d, want 1", mock.runCount())
	}
	// The accelerator's output must be copied back into the working raster.
	cr, _, _, _ := r.Pixel(3, 3)
	if cr != 7 {
		t.Errorf("red channel = %d, want marker value 7", cr)
	}
}

func TestDispatcherDiffusionStaysSequential(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	mock := &mockAccelerator{name: "mock", canAccel: OpToneDither | OpHalftone}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewDitherEffect(nil)
	p := ditherParams(map[string]any{
		"algorithm":    "floyd-steinberg",
		"renderMode":   RenderModeGrade,
		"colorSpace":   ColorSpaceIndexed,
		"indexedCount": 8,
	})

	r := flatRaster(4, 4, 128, 128, 128, 255)
	d.run(e, r, p, 1.0)

	if mock.runCount() != 0 {
		t.Errorf("RunStage calls = %d, want 0 for error diffusion", mock.runCount())
	}
	// Sequential diffusion still produced output.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			cr, _, _, _ := r.Pixel(x, y)
			if cr != 0 && cr != 255 {
				t.Fatalf("pixel (%d,%d) red = %d, want full-range multiple after step-255 grade", x, y, cr)
			}
		}
	}
}

func TestDispatcherFallbackOnDecline(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	mock := &mockAccelerator{
		name:     "mock",
		canAccel: OpToneDither | OpHalftone,
		runErr:   ErrFallbackToCPU,
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewDitherEffect(nil)
	p := ditherParams(map[string]any{
		"renderMode":   RenderModeGrade,
		"colorSpace":   ColorSpaceIndexed,
		"indexedCount": 8,
	})

	r := flatRaster(4, 4, 200, 100, 50, 255)
	d.run(e, r, p, 1.0)

	// Declined stage re-runs sequentially with identical semantics.
	cr, cg, cb, _ := r.Pixel(2, 2)
	if cr != 255 || cg != 0 || cb != 0 {
		t.Errorf("pixel = (%d,%d,%d), want sequential result (255,0,0)", cr, cg, cb)
	}
}

func TestDispatcherFallbackOnError(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	mock := &mockAccelerator{
		name:     "mock",
		canAccel: OpToneDither | OpHalftone,
		runErr:   errors.New("device lost"),
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewHalftoneEffect(nil)
	p := e.DefaultParams().Clone()

	r := flatRaster(8, 8, 255, 255, 255, 255)
	d.run(e, r, p, 1.0)

	// White input stays white on the sequential halftone path.
	cr, cg, cb, _ := r.Pixel(4, 4)
	if cr != 255 || cg != 255 || cb != 255 {
		t.Errorf("pixel = (%d,%d,%d), want (255,255,255)", cr, cg, cb)
	}
}

func TestDispatcherSkipsUnclaimedOp(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	// Accelerator only claims halftone stages.
	mock := &mockAccelerator{name: "mock", canAccel: OpHalftone}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewDitherEffect(nil)
	p := ditherParams(map[string]any{"algorithm": AlgorithmBayer})

	r := flatRaster(4, 4, 100, 100, 100, 255)
	d.run(e, r, p, 1.0)

	if mock.runCount() != 0 {
		t.Errorf("RunStage calls = %d, want 0 for unclaimed stage type", mock.runCount())
	}
}

func TestDispatcherWorkingRasterUntouchedOnError(t *testing.T) {
	resetAccelerator()
	defer resetAccelerator()

	mock := &mockAccelerator{
		name:     "mock",
		canAccel: OpToneDither | OpHalftone,
		runErr:   errors.New("device lost"),
		mutate: func(target StageTarget) {
			target.Data[0] = 99
		},
	}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	d := newDispatcher(nil)
	e := NewHalftoneEffect(nil)
	p := e.DefaultParams().Clone()

	r := flatRaster(4, 4, 255, 255, 255, 255)
	ok := d.runAccelerated(e, r, p, 1.0)
	if ok {
		t.Fatal("runAccelerated should report failure")
	}
	// Failed dispatch writes only to the staging raster.
	cr, cg, cb, _ := r.Pixel(0, 0)
	if cr != 255 || cg != 255 || cb != 255 {
		t.Errorf("working raster mutated on failed dispatch: (%d,%d,%d)", cr, cg, cb)
	}
}
