package screentone

import "math"

// Ink channel indices for the halftone screens.
const (
	inkCyan = iota
	inkMagenta
	inkYellow
	inkBlack
	inkCount
)

// inkColor is the display color each ink multiplies into the white
// composite: the complement of the channel it carries.
var inkColor = [inkCount]RGB24{
	inkCyan:    {R: 0, G: 255, B: 255},
	inkMagenta: {R: 255, G: 0, B: 255},
	inkYellow:  {R: 255, G: 255, B: 0},
	inkBlack:   {R: 0, G: 0, B: 0},
}

// coverageThreshold is the minimum ink coverage that draws a dot. Cells
// below it stay paper white.
const coverageThreshold = 10

// dotRadiusDivisor relates full coverage to dot radius: a dot at coverage
// 255 has radius pitch/1.2, slightly overlapping its neighbors so solid
// areas close up completely.
const dotRadiusDivisor = 1.2

// HalftoneEffect reproduces continuous tone as four rotated dot screens,
// one per ink channel, composited multiplicatively onto a white background.
// The per-ink angles are offset to reduce moiré.
type HalftoneEffect struct {
	pool *RasterPool
}

// NewHalftoneEffect creates the halftone stage. A nil pool uses DefaultPool.
func NewHalftoneEffect(pool *RasterPool) *HalftoneEffect {
	if pool == nil {
		pool = DefaultPool
	}
	return &HalftoneEffect{pool: pool}
}

func (e *HalftoneEffect) ID() string { return HalftoneID }

func (e *HalftoneEffect) DefaultParams() Params {
	return Params{
		"enabled":      false,
		"angleCyan":    15.0,
		"angleMagenta": 75.0,
		"angleYellow":  0.0,
		"angleBlack":   45.0,
		"pitch":        6.0,
		"opacity":      1.0,
	}
}

func (e *HalftoneEffect) Controls(b ControlBuilder, p Params, onChange ChangeFunc) {
	b.Toggle("enabled", "Enabled", p.Bool("enabled"), onChange)
	b.Slider("angleCyan", "Cyan angle", 0, 90, 1, p.Float("angleCyan"), onChange)
	b.Slider("angleMagenta", "Magenta angle", 0, 90, 1, p.Float("angleMagenta"), onChange)
	b.Slider("angleYellow", "Yellow angle", 0, 90, 1, p.Float("angleYellow"), onChange)
	b.Slider("angleBlack", "Black angle", 0, 90, 1, p.Float("angleBlack"), onChange)
	b.Slider("pitch", "Dot pitch", 2, 32, 0.5, p.Float("pitch"), onChange)
	b.Slider("opacity", "Opacity", 0, 1, 0.01, p.Float("opacity"), onChange)
}

// ParallelCapable is always true: every grid cell is independent, so the
// screens map directly onto the one-program-per-dispatch parallel model.
func (e *HalftoneEffect) ParallelCapable(Params) bool { return true }

// coverage computes the four ink coverages of an RGB sample.
func coverage(r, g, b uint8) [inkCount]uint8 {
	maxc := r
	if g > maxc {
		maxc = g
	}
	if b > maxc {
		maxc = b
	}
	return [inkCount]uint8{
		inkCyan:    255 - r,
		inkMagenta: 255 - g,
		inkYellow:  255 - b,
		inkBlack:   255 - maxc,
	}
}

// Process replaces the raster with a white-background composite of the four
// rotated dot screens. Dot pitch is multiplied by the scale factor so screen
// frequency is resolution-independent between preview and export.
func (e *HalftoneEffect) Process(r *Raster, p Params, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	pitch := p.Float("pitch") * scale
	if pitch < 1 {
		pitch = 1
	}
	opacity := clamp01(p.Float("opacity"))

	angles := [inkCount]float64{
		inkCyan:    p.Float("angleCyan") * math.Pi / 180,
		inkMagenta: p.Float("angleMagenta") * math.Pi / 180,
		inkYellow:  p.Float("angleYellow") * math.Pi / 180,
		inkBlack:   p.Float("angleBlack") * math.Pi / 180,
	}

	w, h := r.Width(), r.Height()
	src := e.pool.Get(w, h)
	src.CopyFrom(r)
	r.Fill(255, 255, 255, 255)

	for ink := 0; ink < inkCount; ink++ {
		e.screen(r, src, ink, angles[ink], pitch, opacity)
	}
	e.pool.Put(src)
}

// screen lays one ink's rotated dot grid over the composite.
//
// The grid is rotated about the raster center. Cells iterate across the
// full rotated bounding diagonal so the corners stay covered at any angle;
// each cell center is rotated back into raster space, the source color is
// sampled there, and a dot sized by the ink coverage is drawn.
func (e *HalftoneEffect) screen(dst, src *Raster, ink int, angle, pitch, opacity float64) {
	w, h := dst.Width(), dst.Height()
	cx, cy := float64(w)/2, float64(h)/2
	sin, cos := math.Sincos(angle)

	// Half-diagonal of the raster: iterating the rotated grid across
	// [-diag, +diag] in both axes guarantees corner coverage. The grid is
	// anchored at integer multiples of pitch from the center so dot phase
	// is independent of the raster diagonal.
	diag := math.Hypot(float64(w), float64(h)) / 2
	start := -math.Ceil(diag/pitch) * pitch

	for v := start; v <= diag; v += pitch {
		for u := start; u <= diag; u += pitch {
			// Rotate the grid cell back into raster space.
			px := cx + u*cos - v*sin
			py := cy + u*sin + v*cos

			sx, sy := int(math.Round(px)), int(math.Round(py))
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				continue
			}
			sr, sg, sb, _ := src.Pixel(sx, sy)
			cov := coverage(sr, sg, sb)[ink]
			if cov <= coverageThreshold {
				continue
			}
			radius := float64(cov) / 255 * (pitch / dotRadiusDivisor)
			fillDot(dst, px, py, radius, inkColor[ink], opacity)
		}
	}
}

// fillDot multiplies the ink color into every pixel of a filled circle.
// Multiplicative blending at opacity o: out = out * (1 - o*(1 - ink/255)).
func fillDot(dst *Raster, px, py, radius float64, ink RGB24, opacity float64) {
	if radius <= 0 || opacity <= 0 {
		return
	}
	w, h := dst.Width(), dst.Height()
	d := dst.Data()

	minX := int(math.Floor(px - radius))
	maxX := int(math.Ceil(px + radius))
	minY := int(math.Floor(py - radius))
	maxY := int(math.Ceil(py + radius))
	r2 := radius * radius

	fr := 1 - opacity*(1-float64(ink.R)/255)
	fg := 1 - opacity*(1-float64(ink.G)/255)
	fb := 1 - opacity*(1-float64(ink.B)/255)

	for y := minY; y <= maxY; y++ {
		if y < 0 || y >= h {
			continue
		}
		dy := float64(y) - py
		for x := minX; x <= maxX; x++ {
			if x < 0 || x >= w {
				continue
			}
			dx := float64(x) - px
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := (y*w + x) * 4
			d[i+0] = clampByte(float64(d[i+0]) * fr)
			d[i+1] = clampByte(float64(d[i+1]) * fg)
			d[i+2] = clampByte(float64(d[i+2]) * fb)
			d[i+3] = 255
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// HalftoneProgram is the compiled parallel-path form of the halftone stage.
// Angles are in radians and Pitch is already multiplied by the scale factor.
type HalftoneProgram struct {
	Angles    [inkCount]float64
	Pitch     float64
	Opacity   float64
	Threshold uint8
}

// Op implements StageProgram.
func (HalftoneProgram) Op() StageOp { return OpHalftone }

// CompileStage implements Accelerable.
func (e *HalftoneEffect) CompileStage(p Params, scale float64) (StageProgram, bool) {
	if scale <= 0 {
		scale = 1
	}
	pitch := p.Float("pitch") * scale
	if pitch < 1 {
		pitch = 1
	}
	return HalftoneProgram{
		Angles: [inkCount]float64{
			inkCyan:    p.Float("angleCyan") * math.Pi / 180,
			inkMagenta: p.Float("angleMagenta") * math.Pi / 180,
			inkYellow:  p.Float("angleYellow") * math.Pi / 180,
			inkBlack:   p.Float("angleBlack") * math.Pi / 180,
		},
		Pitch:     pitch,
		Opacity:   clamp01(p.Float("opacity")),
		Threshold: coverageThreshold,
	}, true
}
