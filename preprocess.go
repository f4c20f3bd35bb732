package screentone

import (
	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
)

// PreprocessEffect is the first pipeline stage: optional Gaussian blur and
// brightness/saturation conditioning applied before screening. It always
// runs on the sequential path.
type PreprocessEffect struct{}

// NewPreprocessEffect creates the pre-process stage.
func NewPreprocessEffect() *PreprocessEffect {
	return &PreprocessEffect{}
}

func (e *PreprocessEffect) ID() string { return PreprocessID }

func (e *PreprocessEffect) DefaultParams() Params {
	return Params{
		"enabled":    false,
		"blurRadius": 0.0,
		"brightness": 0.0,
		"saturation": 0.0,
	}
}

func (e *PreprocessEffect) Controls(b ControlBuilder, p Params, onChange ChangeFunc) {
	b.Toggle("enabled", "Enabled", p.Bool("enabled"), onChange)
	b.Slider("blurRadius", "Blur", 0, 16, 0.5, p.Float("blurRadius"), onChange)
	b.Slider("brightness", "Brightness", -1, 1, 0.01, p.Float("brightness"), onChange)
	b.Slider("saturation", "Saturation", -1, 1, 0.01, p.Float("saturation"), onChange)
}

// ParallelCapable is always false: pre-processing runs sequentially.
func (e *PreprocessEffect) ParallelCapable(Params) bool { return false }

// Process conditions the raster. The blur radius is multiplied by the scale
// factor so preview and export blur by the same visual amount.
func (e *PreprocessEffect) Process(r *Raster, p Params, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	radius := p.Float("blurRadius") * scale
	brightness := p.Float("brightness")
	saturation := p.Float("saturation")

	if radius <= 0 && brightness == 0 && saturation == 0 {
		return
	}

	img := r.ToImage()
	if radius > 0 {
		img = blur.Gaussian(img, radius)
	}
	if brightness != 0 {
		img = adjust.Brightness(img, brightness)
	}
	if saturation != 0 {
		img = adjust.Saturation(img, saturation)
	}

	out := img.Pix
	if len(out) == len(r.data) {
		copy(r.data, out)
	}
}
