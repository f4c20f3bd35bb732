package screentone

// Tap is a single error-diffusion target: an offset from the current pixel
// and the fraction of the quantization residual it receives.
type Tap struct {
	DX, DY int
	Weight float64
}

// Kernel is an ordered list of diffusion taps. Weights need not sum to 1;
// Atkinson deliberately under-distributes a quarter of the error, which
// lightens the output.
type Kernel []Tap

// Sum returns the total weight of the kernel.
func (k Kernel) Sum() float64 {
	var s float64
	for _, t := range k {
		s += t.Weight
	}
	return s
}

// FloydSteinberg is the classic four-tap kernel. Weights sum to 1.
var FloydSteinberg = Kernel{
	{DX: 1, DY: 0, Weight: 7.0 / 16},
	{DX: -1, DY: 1, Weight: 3.0 / 16},
	{DX: 0, DY: 1, Weight: 5.0 / 16},
	{DX: 1, DY: 1, Weight: 1.0 / 16},
}

// Atkinson is the six-tap kernel used by the original Macintosh. Weights
// sum to 6/8: roughly 25% of the error is intentionally discarded.
var Atkinson = Kernel{
	{DX: 1, DY: 0, Weight: 1.0 / 8},
	{DX: 2, DY: 0, Weight: 1.0 / 8},
	{DX: -1, DY: 1, Weight: 1.0 / 8},
	{DX: 0, DY: 1, Weight: 1.0 / 8},
	{DX: 1, DY: 1, Weight: 1.0 / 8},
	{DX: 0, DY: 2, Weight: 1.0 / 8},
}

// SierraLite is the three-tap reduced Sierra kernel. Weights sum to 1.
var SierraLite = Kernel{
	{DX: 1, DY: 0, Weight: 2.0 / 4},
	{DX: -1, DY: 1, Weight: 1.0 / 4},
	{DX: 0, DY: 1, Weight: 1.0 / 4},
}

// kernelByName maps algorithm selector values to diffusion kernels.
// Selectors not present here use a non-diffusing strategy.
var kernelByName = map[string]Kernel{
	"floyd-steinberg": FloydSteinberg,
	"atkinson":        Atkinson,
	"sierra-lite":     SierraLite,
}
