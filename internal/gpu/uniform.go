//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/gogpu/screentone"
)

// Pattern codes shared with the tone_dither shader.
const (
	patternNone = iota
	patternBayer4
	patternBayer8
	patternModulation
)

// ditherUniform mirrors the Params struct in shaders/dither.wgsl.
// vec4 members require 16-byte alignment, hence the explicit padding.
type ditherUniform struct {
	Width, Height uint32
	Tonal         uint32
	Pattern       uint32

	Spread    float32
	ContrastF float32
	Step      float32
	Knockout  uint32

	MatrixSize uint32
	_pad0      uint32
	_pad1      uint32
	_pad2      uint32

	Shadow    [4]float32
	Mid       [4]float32
	Highlight [4]float32
}

// halftoneUniform mirrors the Params struct in shaders/halftone.wgsl.
type halftoneUniform struct {
	Width, Height uint32
	Pitch         float32
	Opacity       float32

	Angles [4]float32

	Threshold float32
	_pad0     float32
	_pad1     float32
	_pad2     float32
}

func rgbVec(c screentone.RGB24) [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 0}
}

func makeDitherUniform(w, h uint32, prog screentone.DitherProgram) []byte {
	u := ditherUniform{
		Width: w, Height: h,
		Spread:    float32(prog.Spread),
		ContrastF: float32(prog.ContrastF),
		Step:      float32(prog.Step),
		Shadow:    rgbVec(prog.Palette.Shadow),
		Mid:       rgbVec(prog.Palette.Mid),
		Highlight: rgbVec(prog.Palette.Highlight),
	}
	if prog.Tonal {
		u.Tonal = 1
	}
	if prog.Knockout {
		u.Knockout = 1
	}
	switch prog.Pattern {
	case screentone.AlgorithmBayer:
		u.Pattern = patternBayer4
		u.MatrixSize = uint32(screentone.Bayer4.Size())
	case screentone.AlgorithmBayer8:
		u.Pattern = patternBayer8
		u.MatrixSize = uint32(screentone.Bayer8.Size())
	case screentone.AlgorithmModulation:
		u.Pattern = patternModulation
	default:
		u.Pattern = patternNone
	}
	return append([]byte(nil), structToBytes(unsafe.Pointer(&u), unsafe.Sizeof(u))...) //nolint:gosec // safe struct access
}

// matrixCells serializes the program's threshold matrix as f32 cells for
// the shader's read-only storage buffer. Programs without a matrix still
// upload one placeholder cell: zero-size bindings are not allowed.
func matrixCells(prog screentone.DitherProgram) []byte {
	var m *screentone.ThresholdMatrix
	switch prog.Pattern {
	case screentone.AlgorithmBayer:
		m = screentone.Bayer4
	case screentone.AlgorithmBayer8:
		m = screentone.Bayer8
	default:
		return make([]byte, 4)
	}
	n := m.Size()
	out := make([]byte, n*n*4)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			// Bias with spread 1 recovers the raw normalized cell offset.
			cell := float32(m.Bias(x, y, 1))
			binary.LittleEndian.PutUint32(out[(y*n+x)*4:], math.Float32bits(cell))
		}
	}
	return out
}

func makeHalftoneUniform(w, h uint32, prog screentone.HalftoneProgram) []byte {
	u := halftoneUniform{
		Width: w, Height: h,
		Pitch:     float32(prog.Pitch),
		Opacity:   float32(prog.Opacity),
		Threshold: float32(prog.Threshold),
	}
	for i, ang := range prog.Angles {
		u.Angles[i] = float32(ang)
	}
	return append([]byte(nil), structToBytes(unsafe.Pointer(&u), unsafe.Sizeof(u))...) //nolint:gosec // safe struct access
}
