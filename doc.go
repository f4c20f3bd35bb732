// Package screentone is a raster image transformation engine built around
// tone mapping, quantization, dithering and rotated-grid halftone screening.
//
// The engine processes RGBA rasters through a fixed-order pipeline:
// pre-process, halftone, dither/tone, corruption. Each stage is an Effect
// with its own parameter set. The halftone and dither stages can execute on
// an optional GPU compute path when an accelerator has been registered and
// the current parameters qualify; everything else runs per pixel on the CPU.
//
// Basic usage:
//
//	p := screentone.NewProcessor()
//	p.SetParam(screentone.DitherID, "enabled", true)
//	p.SetParam(screentone.DitherID, "renderMode", "tonal")
//
//	r := screentone.FromImage(img)
//	p.Render(r)
//
// GPU acceleration is opt-in via blank import:
//
//	import _ "github.com/gogpu/screentone/gpu"
//
// If GPU initialization fails at startup, the engine silently stays on the
// sequential path for the rest of the session.
package screentone
