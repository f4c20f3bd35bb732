package screentone

import (
	"math"
	"math/rand"
)

// CorruptEffect is the final pipeline stage: a deterministic glitch pass
// that displaces scanline bands and offsets the red channel. Renders are
// reproducible per seed. Corruption always runs on the sequential path.
type CorruptEffect struct{}

// NewCorruptEffect creates the corruption stage.
func NewCorruptEffect() *CorruptEffect {
	return &CorruptEffect{}
}

func (e *CorruptEffect) ID() string { return CorruptID }

func (e *CorruptEffect) DefaultParams() Params {
	return Params{
		"enabled":      false,
		"amount":       0.2,
		"channelShift": 0.0,
		"seed":         1,
	}
}

func (e *CorruptEffect) Controls(b ControlBuilder, p Params, onChange ChangeFunc) {
	b.Toggle("enabled", "Enabled", p.Bool("enabled"), onChange)
	b.Slider("amount", "Amount", 0, 1, 0.01, p.Float("amount"), onChange)
	b.Slider("channelShift", "Channel shift", 0, 32, 1, p.Float("channelShift"), onChange)
	b.Number("seed", "Seed", 0, math.MaxInt32, float64(p.Int("seed")), onChange)
}

// ParallelCapable is always false: corruption runs sequentially.
func (e *CorruptEffect) ParallelCapable(Params) bool { return false }

// Process applies the glitch pass. Displacement distances are multiplied by
// the scale factor so preview and export corrupt by the same visual amount.
func (e *CorruptEffect) Process(r *Raster, p Params, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	amount := clamp01(p.Float("amount"))
	shift := p.Float("channelShift") * scale
	if amount <= 0 && shift <= 0 {
		return
	}

	rng := rand.New(rand.NewSource(int64(p.Int("seed"))))
	w, h := r.Width(), r.Height()
	d := r.Data()

	if amount > 0 {
		maxShift := int(math.Max(1, amount*float64(w)/4*scale))
		bands := int(amount * float64(h) / 8)
		row := make([]uint8, w*4)
		for i := 0; i < bands; i++ {
			y0 := rng.Intn(h)
			height := 1 + rng.Intn(4)
			dx := rng.Intn(2*maxShift+1) - maxShift
			for y := y0; y < y0+height && y < h; y++ {
				shiftRow(d[y*w*4:(y+1)*w*4], row, dx)
			}
		}
	}

	if shift >= 1 {
		// Offset the red channel horizontally, dropping pixels that
		// land outside the row.
		dx := int(shift)
		for y := 0; y < h; y++ {
			base := y * w * 4
			for x := w - 1; x >= dx; x-- {
				d[base+x*4] = d[base+(x-dx)*4]
			}
		}
	}
}

// shiftRow rotates one RGBA row by dx pixels using scratch as a staging
// buffer. len(scratch) must equal len(row).
func shiftRow(row, scratch []uint8, dx int) {
	w := len(row) / 4
	if w == 0 {
		return
	}
	dx = ((dx % w) + w) % w
	if dx == 0 {
		return
	}
	copy(scratch, row)
	copy(row[dx*4:], scratch[:len(scratch)-dx*4])
	copy(row[:dx*4], scratch[len(scratch)-dx*4:])
}
