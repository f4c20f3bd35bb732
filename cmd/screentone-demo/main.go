// Command screentone-demo runs an image through the screentone pipeline.
package main

import (
	"flag"
	"image"
	"log"
	"os"

	// Registered for their image.Decode side effects.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gogpu/screentone"
)

func main() {
	var (
		input      = flag.String("input", "", "source image (png, jpeg or gif)")
		output     = flag.String("output", "out.png", "output file")
		mode       = flag.String("mode", "grade", "render mode: tonal or grade")
		algorithm  = flag.String("algorithm", "floyd-steinberg", "dither algorithm")
		resolution = flag.Float64("resolution", 1.0, "working resolution (0,1]")
		colorSpace = flag.String("colorspace", "rgb", "grade color space: rgb or indexed")
		colors     = flag.Int("colors", 64, "indexed color count")
		contrast   = flag.Float64("contrast", 0, "grade contrast [-128,128]")
		halftone   = flag.Bool("halftone", false, "enable halftone screening")
		pitch      = flag.Float64("pitch", 6, "halftone dot pitch")
		blur       = flag.Float64("blur", 0, "pre-process blur radius")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open %s: %v", *input, err)
	}
	img, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		log.Fatalf("decode %s: %v", *input, err)
	}

	p := screentone.NewProcessor()
	p.SetParam(screentone.DitherID, "enabled", true)
	p.SetParam(screentone.DitherID, "renderMode", *mode)
	p.SetParam(screentone.DitherID, "algorithm", *algorithm)
	p.SetParam(screentone.DitherID, "resolution", *resolution)
	p.SetParam(screentone.DitherID, "colorSpace", *colorSpace)
	p.SetParam(screentone.DitherID, "indexedCount", *colors)
	p.SetParam(screentone.DitherID, "contrast", *contrast)
	if *halftone {
		p.SetParam(screentone.HalftoneID, "enabled", true)
		p.SetParam(screentone.HalftoneID, "pitch", *pitch)
	}
	if *blur > 0 {
		p.SetParam(screentone.PreprocessID, "enabled", true)
		p.SetParam(screentone.PreprocessID, "blurRadius", *blur)
	}

	r := screentone.FromImage(img)
	p.Render(r)

	if err := r.SavePNG(*output); err != nil {
		log.Fatalf("save %s: %v", *output, err)
	}
	log.Printf("wrote %s (%dx%d)", *output, r.Width(), r.Height())
}
