package screentone

import (
	"bytes"
	"testing"
)

func preprocessParams(overrides map[string]any) Params {
	p := NewPreprocessEffect().DefaultParams()
	for k, v := range overrides {
		p[k] = v
	}
	return p
}

func TestPreprocessDefaultsAreIdentity(t *testing.T) {
	e := NewPreprocessEffect()
	r := gradientRaster(8, 8)
	want := r.Clone()

	e.Process(r, preprocessParams(nil), 1)
	if !bytes.Equal(want.Data(), r.Data()) {
		t.Error("default pre-process modified the raster")
	}
}

func TestPreprocessBlurSoftensEdge(t *testing.T) {
	e := NewPreprocessEffect()

	// Hard black/white vertical edge.
	r := NewRaster(16, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(0)
			if x >= 8 {
				v = 255
			}
			r.Set(x, y, v, v, v, 255)
		}
	}

	e.Process(r, preprocessParams(map[string]any{"blurRadius": 2.0}), 1)

	blended := false
	for x := 0; x < 16; x++ {
		cr, _, _, _ := r.Pixel(x, 4)
		if cr != 0 && cr != 255 {
			blended = true
			break
		}
	}
	if !blended {
		t.Error("blur produced no intermediate values across a hard edge")
	}
}

func TestPreprocessBrightness(t *testing.T) {
	e := NewPreprocessEffect()
	r := flatRaster(4, 4, 100, 100, 100, 255)

	e.Process(r, preprocessParams(map[string]any{"brightness": 0.5}), 1)
	cr, _, _, _ := r.Pixel(0, 0)
	if cr <= 100 {
		t.Errorf("red = %d after +0.5 brightness, want brighter than 100", cr)
	}

	r2 := flatRaster(4, 4, 100, 100, 100, 255)
	e.Process(r2, preprocessParams(map[string]any{"brightness": -0.5}), 1)
	dr, _, _, _ := r2.Pixel(0, 0)
	if dr >= 100 {
		t.Errorf("red = %d after -0.5 brightness, want darker than 100", dr)
	}
}

func TestPreprocessSaturation(t *testing.T) {
	e := NewPreprocessEffect()
	r := flatRaster(4, 4, 200, 50, 50, 255)

	// Full desaturation pulls channels together.
	e.Process(r, preprocessParams(map[string]any{"saturation": -1.0}), 1)
	cr, cg, cb, _ := r.Pixel(0, 0)
	spread := int(cr) - int(cb)
	if spread < 0 {
		spread = -spread
	}
	if spread > 16 {
		t.Errorf("channels (%d,%d,%d) still spread %d after full desaturation", cr, cg, cb, spread)
	}
}

func TestPreprocessScaleMultipliesBlur(t *testing.T) {
	e := NewPreprocessEffect()

	edge := func() *Raster {
		r := NewRaster(32, 4)
		for y := 0; y < 4; y++ {
			for x := 0; x < 32; x++ {
				v := uint8(0)
				if x >= 16 {
					v = 255
				}
				r.Set(x, y, v, v, v, 255)
			}
		}
		return r
	}

	transition := func(r *Raster) int {
		n := 0
		for x := 0; x < 32; x++ {
			cr, _, _, _ := r.Pixel(x, 1)
			if cr != 0 && cr != 255 {
				n++
			}
		}
		return n
	}

	a := edge()
	e.Process(a, preprocessParams(map[string]any{"blurRadius": 1.0}), 1)
	b := edge()
	e.Process(b, preprocessParams(map[string]any{"blurRadius": 1.0}), 4)

	if transition(b) <= transition(a) {
		t.Errorf("scaled blur transition width %d not wider than unscaled %d", transition(b), transition(a))
	}
}

func TestPreprocessNeverParallel(t *testing.T) {
	e := NewPreprocessEffect()
	if e.ParallelCapable(preprocessParams(nil)) {
		t.Error("pre-processing must always run sequentially")
	}
	if e.ID() != PreprocessID {
		t.Errorf("ID() = %q", e.ID())
	}
}
