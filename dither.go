package screentone

import "math"

// Dither algorithm selectors. The diffusion selectors are the keys of
// kernelByName; the remaining selectors quantize without neighbor errors.
const (
	AlgorithmNone       = "none"
	AlgorithmBayer      = "bayer"
	AlgorithmBayer8     = "bayer8"
	AlgorithmModulation = "modulation"
)

// DitherEffect is the dither and tone pipeline stage. It resolves a render
// mode (tonal or grade) and a spatial strategy (none, error diffusion,
// ordered pattern) into an in-place quantization of the working raster.
type DitherEffect struct {
	pool *RasterPool
}

// NewDitherEffect creates the dither stage. A nil pool uses DefaultPool.
func NewDitherEffect(pool *RasterPool) *DitherEffect {
	if pool == nil {
		pool = DefaultPool
	}
	return &DitherEffect{pool: pool}
}

func (e *DitherEffect) ID() string { return DitherID }

// DefaultParams declares the full dither parameter set.
//
// bleeding and roundness are declared but not consumed by any transform
// path. They are kept as inert configuration so parameter state stays
// compatible with control surfaces that bind them.
func (e *DitherEffect) DefaultParams() Params {
	return Params{
		"enabled":        false,
		"renderMode":     RenderModeGrade,
		"algorithm":      AlgorithmNone,
		"resolution":     1.0,
		"smooth":         false,
		"colorSpace":     ColorSpaceRGB,
		"indexedCount":   64,
		"contrast":       0.0,
		"spread":         32.0,
		"shadowColor":    "#000000",
		"midColor":       "#808080",
		"highlightColor": "#ffffff",
		"knockout":       false,
		"bleeding":       0.5,
		"roundness":      0.5,
	}
}

func (e *DitherEffect) Controls(b ControlBuilder, p Params, onChange ChangeFunc) {
	b.Toggle("enabled", "Enabled", p.Bool("enabled"), onChange)
	b.Select("renderMode", "Mode", []string{RenderModeTonal, RenderModeGrade}, p.String("renderMode"), onChange)
	b.Select("algorithm", "Algorithm", []string{
		AlgorithmNone, "floyd-steinberg", "atkinson", "sierra-lite",
		AlgorithmBayer, AlgorithmBayer8, AlgorithmModulation,
	}, p.String("algorithm"), onChange)
	b.Slider("resolution", "Resolution", 0.05, 1, 0.05, p.Float("resolution"), onChange)
	b.Toggle("smooth", "Preserve detail", p.Bool("smooth"), onChange)
	b.Select("colorSpace", "Color space", []string{ColorSpaceRGB, ColorSpaceIndexed}, p.String("colorSpace"), onChange)
	b.Number("indexedCount", "Colors", 2, 4096, float64(p.Int("indexedCount")), onChange)
	b.Slider("contrast", "Contrast", -128, 128, 1, p.Float("contrast"), onChange)
	b.Slider("spread", "Spread", 0, 128, 1, p.Float("spread"), onChange)
	b.Color("shadowColor", "Shadow", p.String("shadowColor"), onChange)
	b.Color("midColor", "Midtone", p.String("midColor"), onChange)
	b.Color("highlightColor", "Highlight", p.String("highlightColor"), onChange)
	b.Toggle("knockout", "Knockout shadow", p.Bool("knockout"), onChange)
	b.Slider("bleeding", "Bleeding", 0, 1, 0.01, p.Float("bleeding"), onChange)
	b.Slider("roundness", "Roundness", 0, 1, 0.01, p.Float("roundness"), onChange)
}

// ParallelCapable reports true for the non-diffusing strategies. Error
// diffusion propagates residuals to not-yet-processed pixels, a serial data
// dependency the one-program-per-dispatch parallel model cannot express.
func (e *DitherEffect) ParallelCapable(p Params) bool {
	_, diffusing := kernelByName[p.String("algorithm")]
	return !diffusing
}

// palette parses the three tonal stops from the parameter state. Parsed
// once per render, never per pixel.
func (e *DitherEffect) palette(p Params) TonalPalette {
	return TonalPalette{
		Shadow:    ParseHexColor(p.String("shadowColor")),
		Mid:       ParseHexColor(p.String("midColor")),
		Highlight: ParseHexColor(p.String("highlightColor")),
	}
}

// Process quantizes the raster in place.
//
// The engine first resamples the raster to floor(w*resolution) by
// floor(h*resolution), nearest unless smoothing is requested, runs the full
// algorithm at the reduced size, then upsamples nearest back to the output
// size. The round trip produces the pixelation aesthetic and keeps output
// dimensions equal to input dimensions.
func (e *DitherEffect) Process(r *Raster, p Params, _ float64) {
	res := p.Float("resolution")
	if res <= 0 || res > 1 {
		res = 1
	}
	dw := int(math.Floor(float64(r.Width()) * res))
	dh := int(math.Floor(float64(r.Height()) * res))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	work := r
	var small *Raster
	if dw < r.Width() || dh < r.Height() {
		small = e.pool.Get(dw, dh)
		mode := ResampleNearest
		if p.Bool("smooth") {
			mode = ResampleSmooth
		}
		Resample(small, r, mode)
		work = small
	}

	palette := e.palette(p)
	mapper := newToneMapper(p, palette)

	alg := p.String("algorithm")
	if kernel, ok := kernelByName[alg]; ok {
		e.diffuse(work, kernel, mapper)
	} else {
		e.quantize(work, alg, p.Float("spread"), mapper)
	}

	if p.Bool("knockout") {
		knockout(work, palette.Shadow)
	}

	if small != nil {
		Resample(r, small, ResampleNearest)
		e.pool.Put(small)
	}
}

// quantize applies the mapper directly, optionally perturbed by an ordered
// positional bias added to the sample before mapping. The bias path runs
// through the same mapper as the unperturbed path.
func (e *DitherEffect) quantize(r *Raster, alg string, spread float64, mapper toneMapper) {
	var bias func(x, y int) float64
	switch alg {
	case AlgorithmBayer:
		bias = func(x, y int) float64 { return Bayer4.Bias(x, y, spread) }
	case AlgorithmBayer8:
		bias = func(x, y int) float64 { return Bayer8.Bias(x, y, spread) }
	case AlgorithmModulation:
		bias = func(x, y int) float64 { return modulationBias(x, y, spread) }
	}

	d := r.Data()
	w, h := r.Width(), r.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			vr, vg, vb := float64(d[i]), float64(d[i+1]), float64(d[i+2])
			if bias != nil {
				o := bias(x, y)
				vr += o
				vg += o
				vb += o
			}
			qr, qg, qb := mapper(vr, vg, vb)
			d[i+0] = clampByte(qr)
			d[i+1] = clampByte(qg)
			d[i+2] = clampByte(qb)
		}
	}
}

// diffuse quantizes in raster order, distributing each pixel's residual
// (accumulated sample minus quantized value) to the kernel's offsets.
// Offsets falling outside the raster are dropped, never wrapped or
// reflected. Intermediates live in a floating buffer so accumulated error
// may leave [0,255] before clamping on write.
func (e *DitherEffect) diffuse(r *Raster, kernel Kernel, mapper toneMapper) {
	d := r.Data()
	w, h := r.Width(), r.Height()

	buf := make([]float64, w*h*3)
	for i, j := 0, 0; i < len(d); i, j = i+4, j+3 {
		buf[j+0] = float64(d[i+0])
		buf[j+1] = float64(d[i+1])
		buf[j+2] = float64(d[i+2])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			j := (y*w + x) * 3
			vr, vg, vb := buf[j], buf[j+1], buf[j+2]
			qr, qg, qb := mapper(vr, vg, vb)

			i := (y*w + x) * 4
			d[i+0] = clampByte(qr)
			d[i+1] = clampByte(qg)
			d[i+2] = clampByte(qb)

			er, eg, eb := vr-qr, vg-qg, vb-qb
			for _, t := range kernel {
				nx, ny := x+t.DX, y+t.DY
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nj := (ny*w + nx) * 3
				buf[nj+0] += er * t.Weight
				buf[nj+1] += eg * t.Weight
				buf[nj+2] += eb * t.Weight
			}
		}
	}
}

// knockout marks pixels that equal the shadow color on every channel fully
// transparent. The comparison is strict equality: near-shadow interpolated
// values stay opaque. This is an intentional policy, not a missing
// tolerance.
func knockout(r *Raster, shadow RGB24) {
	d := r.Data()
	for i := 0; i < len(d); i += 4 {
		if d[i] == shadow.R && d[i+1] == shadow.G && d[i+2] == shadow.B {
			d[i+3] = 0
		}
	}
}

// DitherProgram is the compiled parallel-path form of the dither stage.
type DitherProgram struct {
	Tonal     bool
	Pattern   string // AlgorithmNone, AlgorithmBayer, AlgorithmBayer8 or AlgorithmModulation
	Spread    float64
	ContrastF float64 // precomputed contrast factor (grade mode)
	Step      float64 // quantization step (grade mode)
	Palette   TonalPalette
	Knockout  bool
}

// Op implements StageProgram.
func (DitherProgram) Op() StageOp { return OpToneDither }

// CompileStage implements Accelerable. Diffusing algorithms and reduced
// working resolutions stay on the sequential path: the accelerated program
// operates on the full-size raster only.
func (e *DitherEffect) CompileStage(p Params, _ float64) (StageProgram, bool) {
	if !e.ParallelCapable(p) {
		return nil, false
	}
	if res := p.Float("resolution"); res > 0 && res < 1 {
		return nil, false
	}

	prog := DitherProgram{
		Tonal:    p.String("renderMode") == RenderModeTonal,
		Pattern:  p.String("algorithm"),
		Spread:   p.Float("spread"),
		Palette:  e.palette(p),
		Knockout: p.Bool("knockout"),
	}
	if !prog.Tonal {
		prog.ContrastF = contrastFactor(p.Float("contrast"))
		prog.Step = fullRangeStep
		if p.String("colorSpace") == ColorSpaceIndexed {
			prog.Step = 255 / float64(indexedLevels(p.Int("indexedCount"))-1)
		}
	}
	return prog, true
}
