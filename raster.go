package screentone

import (
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Raster is a rectangular RGBA pixel buffer, 4 bytes per pixel, row major,
// top-left origin. Channel values rest in [0,255]; transient floating-point
// intermediates during error diffusion may exceed that range before they are
// clamped on write.
type Raster struct {
	width  int
	height int
	data   []uint8
}

// NewRaster creates a raster with the given dimensions, initialized to
// transparent black.
func NewRaster(width, height int) *Raster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Raster{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the raster in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the height of the raster in pixels.
func (r *Raster) Height() int { return r.height }

// Data returns the raw pixel data (RGBA, 4 bytes per pixel).
func (r *Raster) Data() []uint8 { return r.data }

// Stride returns the number of bytes per row.
func (r *Raster) Stride() int { return r.width * 4 }

// Set writes a single pixel. Out-of-bounds coordinates are ignored.
func (r *Raster) Set(x, y int, cr, cg, cb, ca uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	i := (y*r.width + x) * 4
	r.data[i+0] = cr
	r.data[i+1] = cg
	r.data[i+2] = cb
	r.data[i+3] = ca
}

// Pixel reads a single pixel. Out-of-bounds coordinates return zeros.
func (r *Raster) Pixel(x, y int) (cr, cg, cb, ca uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0, 0, 0, 0
	}
	i := (y*r.width + x) * 4
	return r.data[i+0], r.data[i+1], r.data[i+2], r.data[i+3]
}

// Fill sets every pixel to the given color.
func (r *Raster) Fill(cr, cg, cb, ca uint8) {
	for i := 0; i < len(r.data); i += 4 {
		r.data[i+0] = cr
		r.data[i+1] = cg
		r.data[i+2] = cb
		r.data[i+3] = ca
	}
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := NewRaster(r.width, r.height)
	copy(out.data, r.data)
	return out
}

// CopyFrom copies pixel data from src. Both rasters must have identical
// dimensions; mismatched sizes are ignored.
func (r *Raster) CopyFrom(src *Raster) {
	if src == nil || src.width != r.width || src.height != r.height {
		return
	}
	copy(r.data, src.data)
}

// ToImage converts the raster to an image.RGBA sharing no memory.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.data)
	return img
}

// FromImage creates a raster from any image.Image.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	out := NewRaster(bounds.Dx(), bounds.Dy())

	// Fast path: image.RGBA with a compact stride copies row by row.
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < out.height; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+out.width*4]
			copy(out.data[y*out.width*4:], src)
		}
		return out
	}

	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			cr, cg, cb, ca := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(x, y, uint8(cr>>8), uint8(cg>>8), uint8(cb>>8), uint8(ca>>8))
		}
	}
	return out
}

// SavePNG writes the raster to a PNG file.
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, r.ToImage())
}

// At implements the image.Image interface.
func (r *Raster) At(x, y int) color.Color {
	cr, cg, cb, ca := r.Pixel(x, y)
	return color.RGBA{R: cr, G: cg, B: cb, A: ca}
}

// Bounds implements the image.Image interface.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// ColorModel implements the image.Image interface.
func (r *Raster) ColorModel() color.Model {
	return color.RGBAModel
}

// ResampleMode selects the sampling filter used by Resample.
type ResampleMode int

const (
	// ResampleNearest uses nearest-neighbor sampling. This is the default
	// for the dither engine's resolution control and produces the hard
	// pixelation look.
	ResampleNearest ResampleMode = iota

	// ResampleSmooth uses a Catmull-Rom filter for the "preserve" mode,
	// trading pixelation for smooth gradients.
	ResampleSmooth
)

// Resample scales src into dst using the given mode. Source and destination
// dimensions are taken from the rasters themselves.
func Resample(dst, src *Raster, mode ResampleMode) {
	di := image.NewRGBA(image.Rect(0, 0, dst.width, dst.height))
	si := src.ToImage()

	var scaler xdraw.Scaler
	switch mode {
	case ResampleSmooth:
		scaler = xdraw.CatmullRom
	default:
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(di, di.Bounds(), si, si.Bounds(), xdraw.Src, nil)
	copy(dst.data, di.Pix)
}
