package screentone

// Mode and selector values shared by the built-in effects.
const (
	RenderModeTonal = "tonal"
	RenderModeGrade = "grade"

	ColorSpaceIndexed = "indexed"
	ColorSpaceRGB     = "rgb"
)

// Effect IDs of the built-in pipeline stages, in execution order.
const (
	PreprocessID = "preprocess"
	HalftoneID   = "halftone"
	DitherID     = "dither"
	CorruptID    = "corrupt"
)

// ChangeFunc is invoked by controls when the user edits a parameter.
type ChangeFunc func(key string, value any)

// Effect is one stage of the raster pipeline. Effects are stateless beyond
// their declared parameters: they are instantiated once and reused across
// renders, and Process mutates the raster in place without retaining it.
//
// Output dimensions always equal input dimensions. The scale factor carries
// the preview-to-export size ratio so pixel-space constants (blur radius,
// halftone pitch) stay visually equivalent between differently sized
// working rasters.
type Effect interface {
	// ID returns the stable effect identifier.
	ID() string

	// DefaultParams returns the full declared parameter set. The processor
	// seeds per-effect state from this map; it must contain every key the
	// effect ever reads.
	DefaultParams() Params

	// Controls registers the effect's control descriptors with a builder.
	// Each control mutates the shared parameter map through onChange.
	Controls(b ControlBuilder, p Params, onChange ChangeFunc)

	// Process transforms the raster in place at the working resolution.
	// It must be total over in-range input: degenerate parameters clamp,
	// they never panic.
	Process(r *Raster, p Params, scale float64)

	// ParallelCapable reports whether the stage's current parameter
	// combination may run on the parallel path. Error-diffusion algorithms
	// never qualify: their per-pixel data dependency is incompatible with
	// the one-program-per-dispatch parallel model.
	ParallelCapable(p Params) bool
}

// Accelerable is implemented by effects that can compile their current
// parameters into a stage program for the parallel path. The dispatcher
// queries this capability instead of special-casing effect identities.
type Accelerable interface {
	// CompileStage resolves the current parameters into a self-contained
	// program description. ok is false when the combination cannot run in
	// parallel (for example a reduced working resolution the accelerated
	// path does not implement).
	CompileStage(p Params, scale float64) (prog StageProgram, ok bool)
}
