package screentone

import (
	"math"
	"testing"
)

func TestBayerMatrixCellsArePermutations(t *testing.T) {
	for _, m := range []*ThresholdMatrix{Bayer4, Bayer8} {
		n := m.size * m.size
		seen := make([]bool, n)
		for _, c := range m.cells {
			if c < 0 || c >= n {
				t.Fatalf("size %d: cell %d out of range", m.size, c)
			}
			if seen[c] {
				t.Fatalf("size %d: cell %d repeated", m.size, c)
			}
			seen[c] = true
		}
	}
}

func TestBiasRangeAndMean(t *testing.T) {
	const spread = 64.0
	for _, m := range []*ThresholdMatrix{Bayer4, Bayer8} {
		var sum float64
		for y := 0; y < m.size; y++ {
			for x := 0; x < m.size; x++ {
				b := m.Bias(x, y, spread)
				if b < -spread/2 || b >= spread/2 {
					t.Errorf("size %d: bias(%d,%d) = %v outside [-%v, %v)",
						m.size, x, y, b, spread/2, spread/2)
				}
				sum += b
			}
		}
		// The pattern is zero-mean so it does not shift overall brightness.
		if mean := sum / float64(m.size*m.size); math.Abs(mean) > 1e-9 {
			t.Errorf("size %d: bias mean = %v, want 0", m.size, mean)
		}
	}
}

func TestBiasTilesPeriodically(t *testing.T) {
	m := Bayer4
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if m.Bias(x, y, 32) != m.Bias(x+4, y+4, 32) {
				t.Fatalf("bias at (%d,%d) does not tile with period 4", x, y)
			}
		}
	}
}

func TestModulationBiasBounded(t *testing.T) {
	const spread = 32.0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			b := modulationBias(x, y, spread)
			if math.Abs(b) > spread/2 {
				t.Fatalf("modulationBias(%d,%d) = %v exceeds spread/2", x, y, b)
			}
		}
	}
}
