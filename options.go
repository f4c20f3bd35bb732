package screentone

// Option configures a Processor during creation.
//
// Example:
//
//	// Preview processor working at a quarter of export size:
//	p := screentone.NewProcessor(screentone.WithScaleFactor(0.25))
type Option func(*Processor)

// WithScaleFactor sets the default scale factor used by Render. The scale
// factor is the ratio of the working raster size to the reference (export)
// size; pixel-space constants like blur radius and halftone pitch are
// multiplied by it so previews and exports look alike.
func WithScaleFactor(scale float64) Option {
	return func(p *Processor) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// WithPool sets a dedicated raster pool for the processor's hand-off and
// resampling buffers. By default the package-level pool is shared.
func WithPool(pool *RasterPool) Option {
	return func(p *Processor) {
		if pool != nil {
			p.pool = pool
		}
	}
}

// WithEffects replaces the built-in pipeline. Stages execute in slice
// order; parameter state is seeded from each effect's default set.
func WithEffects(effects ...Effect) Option {
	return func(p *Processor) {
		p.effects = effects
	}
}
