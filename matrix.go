package screentone

import "math"

// ThresholdMatrix is a fixed square matrix of small integers defining a
// periodic ordered-dither pattern. It is tiled across the raster via modulo
// indexing.
type ThresholdMatrix struct {
	size  int
	cells []int
}

// Bayer4 is the canonical 4x4 Bayer matrix.
var Bayer4 = &ThresholdMatrix{
	size: 4,
	cells: []int{
		0, 8, 2, 10,
		12, 4, 14, 6,
		3, 11, 1, 9,
		15, 7, 13, 5,
	},
}

// Bayer8 is the 8x8 Bayer matrix, derived recursively from Bayer4.
var Bayer8 = newBayer8()

func newBayer8() *ThresholdMatrix {
	m := &ThresholdMatrix{size: 8, cells: make([]int, 64)}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			base := Bayer4.cells[(y%4)*4+(x%4)] * 4
			quadrant := 0
			if x >= 4 {
				quadrant += 2
			}
			if y >= 4 {
				quadrant++
			}
			// Quadrant offsets follow the recursive Bayer construction.
			offset := [4]int{0, 3, 2, 1}[quadrant]
			m.cells[y*8+x] = base + offset
		}
	}
	return m
}

// Size returns the matrix side length.
func (m *ThresholdMatrix) Size() int { return m.size }

// Bias returns the positional dither bias for pixel (x,y), normalized to
// [-0.5, 0.5) and scaled by spread (in channel units). The matrix tiles
// periodically over the raster.
func (m *ThresholdMatrix) Bias(x, y int, spread float64) float64 {
	n := m.size * m.size
	v := m.cells[(y%m.size)*m.size+(x%m.size)]
	return ((float64(v)+0.5)/float64(n) - 0.5) * spread
}

// modulationBias is the procedural ordered-dither field: the product of the
// sine and cosine of the pixel coordinates, scaled by spread. The frequency
// is a fixed aesthetic transfer function and is reproduced as-is.
func modulationBias(x, y int, spread float64) float64 {
	return math.Sin(float64(x)) * math.Cos(float64(y)) * spread * 0.5
}
