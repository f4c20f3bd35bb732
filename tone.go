package screentone

import (
	"github.com/lucasb-eyer/go-colorful"
)

// RGB24 is an 8-bit RGB triple used for palette stops.
type RGB24 struct {
	R, G, B uint8
}

// ParseHexColor parses a "#rrggbb" string into an RGB24. Invalid strings
// fall back to black rather than failing: palette parameters are clamped,
// never rejected.
func ParseHexColor(s string) RGB24 {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB24{}
	}
	r, g, b := c.RGB255()
	return RGB24{R: r, G: g, B: b}
}

// TonalPalette holds the three stops of the tonal mapping ramp. It is
// parsed from the effect parameters once per render.
type TonalPalette struct {
	Shadow    RGB24
	Mid       RGB24
	Highlight RGB24
}

// mapTonal maps an RGB sample through the two-segment tonal ramp:
// luminance below the mid point interpolates shadow to mid, above it
// interpolates mid to highlight.
func (p TonalPalette) mapTonal(r, g, b float64) (float64, float64, float64) {
	l := luma(r, g, b)
	if l < 128 {
		t := l / 128
		return lerpChannel(p.Shadow.R, p.Mid.R, t),
			lerpChannel(p.Shadow.G, p.Mid.G, t),
			lerpChannel(p.Shadow.B, p.Mid.B, t)
	}
	t := (l - 128) / 127
	return lerpChannel(p.Mid.R, p.Highlight.R, t),
		lerpChannel(p.Mid.G, p.Highlight.G, t),
		lerpChannel(p.Mid.B, p.Highlight.B, t)
}

// toneMapper quantizes one RGB sample. Implementations must be total over
// the full floating channel domain: out-of-range inputs are clamped, never
// rejected.
type toneMapper func(r, g, b float64) (float64, float64, float64)

// newToneMapper resolves the render mode and its parameters into a mapper.
//
// Tonal mode maps luminance through the palette ramp. Grade mode applies
// contrast correction and snaps each channel to a quantization step: the
// step derived from the indexed color count, or the fixed full-range step.
func newToneMapper(p Params, palette TonalPalette) toneMapper {
	if p.String("renderMode") == RenderModeTonal {
		return palette.mapTonal
	}

	step := fullRangeStep
	if p.String("colorSpace") == ColorSpaceIndexed {
		levels := indexedLevels(p.Int("indexedCount"))
		step = 255 / float64(levels-1)
	}
	f := contrastFactor(p.Float("contrast"))
	return func(r, g, b float64) (float64, float64, float64) {
		return snapToStep(applyContrast(clamp255(r), f), step),
			snapToStep(applyContrast(clamp255(g), f), step),
			snapToStep(applyContrast(clamp255(b), f), step)
	}
}
