//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/gogpu/screentone"
)

func TestDitherUniformLayout(t *testing.T) {
	// WGSL uniform structs with vec4 members are 16-byte aligned; any
	// drift here corrupts every shader parameter after the drift point.
	if size := unsafe.Sizeof(ditherUniform{}); size != 96 {
		t.Errorf("ditherUniform size = %d, want 96", size)
	}
	if size := unsafe.Sizeof(halftoneUniform{}); size != 48 {
		t.Errorf("halftoneUniform size = %d, want 48", size)
	}
}

func TestMakeDitherUniform(t *testing.T) {
	prog := screentone.DitherProgram{
		Tonal:     true,
		Pattern:   screentone.AlgorithmBayer,
		Spread:    32,
		ContrastF: 1,
		Step:      8,
		Knockout:  true,
	}
	buf := makeDitherUniform(64, 32, prog)
	if len(buf) != 96 {
		t.Fatalf("uniform length = %d, want 96", len(buf))
	}

	if w := binary.LittleEndian.Uint32(buf[0:]); w != 64 {
		t.Errorf("width = %d, want 64", w)
	}
	if h := binary.LittleEndian.Uint32(buf[4:]); h != 32 {
		t.Errorf("height = %d, want 32", h)
	}
	if tonal := binary.LittleEndian.Uint32(buf[8:]); tonal != 1 {
		t.Errorf("tonal flag = %d, want 1", tonal)
	}
	if pat := binary.LittleEndian.Uint32(buf[12:]); pat != patternBayer4 {
		t.Errorf("pattern = %d, want %d", pat, patternBayer4)
	}
	if spread := math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])); spread != 32 {
		t.Errorf("spread = %v, want 32", spread)
	}
	if ms := binary.LittleEndian.Uint32(buf[32:]); ms != 4 {
		t.Errorf("matrix size = %d, want 4", ms)
	}
}

func TestMakeDitherUniformPatternCodes(t *testing.T) {
	tests := []struct {
		pattern string
		want    uint32
	}{
		{screentone.AlgorithmNone, patternNone},
		{screentone.AlgorithmBayer, patternBayer4},
		{screentone.AlgorithmBayer8, patternBayer8},
		{screentone.AlgorithmModulation, patternModulation},
		{"floyd-steinberg", patternNone}, // diffusion never reaches the shader
	}
	for _, tt := range tests {
		buf := makeDitherUniform(1, 1, screentone.DitherProgram{Pattern: tt.pattern})
		if got := binary.LittleEndian.Uint32(buf[12:]); got != tt.want {
			t.Errorf("pattern %q code = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestMatrixCells(t *testing.T) {
	cells := matrixCells(screentone.DitherProgram{Pattern: screentone.AlgorithmBayer})
	if len(cells) != 4*4*4 {
		t.Fatalf("bayer4 cells = %d bytes, want 64", len(cells))
	}

	// Cell (0,0) of the 4x4 matrix is 0: bias (0.5/16 - 0.5) at spread 1.
	got := math.Float32frombits(binary.LittleEndian.Uint32(cells))
	want := float32(0.5/16.0 - 0.5)
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("cell(0,0) = %v, want %v", got, want)
	}

	cells8 := matrixCells(screentone.DitherProgram{Pattern: screentone.AlgorithmBayer8})
	if len(cells8) != 8*8*4 {
		t.Errorf("bayer8 cells = %d bytes, want 256", len(cells8))
	}

	// Placeholder upload for matrix-free programs.
	none := matrixCells(screentone.DitherProgram{Pattern: screentone.AlgorithmNone})
	if len(none) != 4 {
		t.Errorf("placeholder cells = %d bytes, want 4", len(none))
	}
}

func TestMakeHalftoneUniform(t *testing.T) {
	prog := screentone.HalftoneProgram{
		Angles:    [4]float64{15, 75, 0, 45},
		Pitch:     6,
		Opacity:   0.5,
		Threshold: 10,
	}
	buf := makeHalftoneUniform(128, 64, prog)
	if len(buf) != 48 {
		t.Fatalf("uniform length = %d, want 48", len(buf))
	}
	if w := binary.LittleEndian.Uint32(buf[0:]); w != 128 {
		t.Errorf("width = %d, want 128", w)
	}
	if pitch := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])); pitch != 6 {
		t.Errorf("pitch = %v, want 6", pitch)
	}
	for i, want := range []float32{15, 75, 0, 45} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[16+i*4:]))
		if got != want {
			t.Errorf("angle[%d] = %v, want %v", i, got, want)
		}
	}
	if th := math.Float32frombits(binary.LittleEndian.Uint32(buf[32:])); th != 10 {
		t.Errorf("threshold = %v, want 10", th)
	}
}
