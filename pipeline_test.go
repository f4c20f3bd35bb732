package screentone

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProcessorDefaultPipelineOrder(t *testing.T) {
	p := NewProcessor()
	want := []string{PreprocessID, HalftoneID, DitherID, CorruptID}

	effects := p.Effects()
	if len(effects) != len(want) {
		t.Fatalf("pipeline has %d stages, want %d", len(effects), len(want))
	}
	for i, e := range effects {
		if e.ID() != want[i] {
			t.Errorf("stage %d = %q, want %q", i, e.ID(), want[i])
		}
	}
}

func TestProcessorParamsSeededFromDefaults(t *testing.T) {
	p := NewProcessor()
	for _, e := range p.Effects() {
		state := p.Params(e.ID())
		if state == nil {
			t.Fatalf("no parameter state for %q", e.ID())
		}
		if diff := cmp.Diff(e.DefaultParams(), state); diff != "" {
			t.Errorf("%q params differ from defaults (-want +got):\n%s", e.ID(), diff)
		}
	}
	if p.Params("bogus") != nil {
		t.Error("unknown effect ID returned non-nil params")
	}
}

func TestProcessorSetParam(t *testing.T) {
	p := NewProcessor()
	p.SetParam(DitherID, "spread", 64.0)
	if got := p.Params(DitherID).Float("spread"); got != 64.0 {
		t.Errorf("spread = %v, want 64", got)
	}
	p.SetParam("bogus", "spread", 64.0) // ignored, must not panic
}

func TestProcessorSetParamDoesNotMutateDefaults(t *testing.T) {
	p := NewProcessor()
	p.SetParam(DitherID, "contrast", 100.0)

	fresh := NewProcessor()
	if got := fresh.Params(DitherID).Float("contrast"); got != 0 {
		t.Errorf("fresh processor contrast = %v, parameter state leaked across processors", got)
	}
}

func TestProcessorDisabledStagesSkipped(t *testing.T) {
	resetAccelerator()

	p := NewProcessor()
	// Every stage defaults to disabled: render is an identity pass.
	r := flatRaster(4, 4, 123, 45, 67, 255)
	want := r.Clone()
	p.Render(r)

	if diff := cmp.Diff(want.Data(), r.Data()); diff != "" {
		t.Errorf("disabled pipeline modified the raster (-want +got):\n%s", diff)
	}
}

func TestProcessorEnabledStageRuns(t *testing.T) {
	resetAccelerator()

	p := NewProcessor()
	p.SetParam(DitherID, "enabled", true)
	p.SetParam(DitherID, "renderMode", RenderModeGrade)
	p.SetParam(DitherID, "colorSpace", ColorSpaceIndexed)
	p.SetParam(DitherID, "indexedCount", 8)

	r := flatRaster(4, 4, 200, 100, 50, 255)
	p.Render(r)

	if cr, cg, cb, _ := r.Pixel(0, 0); cr != 255 || cg != 0 || cb != 0 {
		t.Errorf("pixel = (%d,%d,%d), want (255,0,0)", cr, cg, cb)
	}
}

func TestProcessorRenderNilAndBadScale(t *testing.T) {
	p := NewProcessor()
	p.Render(nil) // must not panic

	p.SetParam(DitherID, "enabled", true)
	r := flatRaster(2, 2, 10, 10, 10, 255)
	p.RenderScaled(r, -1) // scale clamps to 1
}

func TestProcessorControlsMutateState(t *testing.T) {
	p := NewProcessor()
	var changed []string
	b := &RecordingBuilder{}
	p.Controls(b, func(effectID string) {
		changed = append(changed, effectID)
	})

	// Find the dither spread slider and drive its callback like a host would.
	var spread *ControlSpec
	for i := range b.Specs {
		if b.Specs[i].Key == "spread" {
			spread = &b.Specs[i]
			break
		}
	}
	if spread == nil {
		t.Fatal("no spread control recorded")
	}
	spread.OnChange("spread", 48.0)

	if got := p.Params(DitherID).Float("spread"); got != 48.0 {
		t.Errorf("spread = %v after control edit, want 48", got)
	}
	if diff := cmp.Diff([]string{DitherID}, changed); diff != "" {
		t.Errorf("onChanged calls (-want +got):\n%s", diff)
	}
}

func TestProcessorControlsCoverDeclaredParams(t *testing.T) {
	p := NewProcessor()
	b := &RecordingBuilder{}
	p.Controls(b, nil)

	recorded := make(map[string]bool)
	for _, k := range b.Keys() {
		recorded[k] = true
	}
	for _, e := range p.Effects() {
		for key := range e.DefaultParams() {
			if !recorded[key] {
				t.Errorf("effect %q declares %q but registers no control for it", e.ID(), key)
			}
		}
	}
}

func TestWithEffectsOption(t *testing.T) {
	e := NewDitherEffect(nil)
	p := NewProcessor(WithEffects(e))
	if len(p.Effects()) != 1 || p.Effects()[0] != Effect(e) {
		t.Fatal("WithEffects did not replace the pipeline")
	}
	if p.Params(DitherID) == nil {
		t.Error("custom pipeline effect has no parameter state")
	}
}

func TestWithScaleFactorOption(t *testing.T) {
	resetAccelerator()

	p := NewProcessor(WithScaleFactor(2))
	p.SetParam(HalftoneID, "enabled", true)
	p.SetParam(HalftoneID, "pitch", 2.0)
	p.SetParam(HalftoneID, "opacity", 1.0)

	// At scale 2 the effective pitch is 4; a black source fully inks.
	r := flatRaster(32, 32, 0, 0, 0, 255)
	p.Render(r)
	if cr, cg, cb, _ := r.Pixel(16, 16); cr != 0 || cg != 0 || cb != 0 {
		t.Errorf("pixel = (%d,%d,%d), want full ink coverage", cr, cg, cb)
	}
}
