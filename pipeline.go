package screentone

// Processor owns the effect pipeline and the per-effect parameter state.
//
// Effects run in a fixed order: pre-process, halftone, dither/tone,
// corruption. Each render tick reads the parameter snapshot once and walks
// the working raster through every enabled stage; raster ownership passes
// strictly in pipeline order, one stage at a time, never shared
// concurrently. All per-frame pixel work is synchronous on the calling
// goroutine by design.
type Processor struct {
	effects []Effect
	params  map[string]Params
	pool    *RasterPool
	scale   float64
	disp    *dispatcher
}

// NewProcessor creates a processor with the built-in pipeline and default
// parameter state.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		pool:  DefaultPool,
		scale: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.effects == nil {
		p.effects = []Effect{
			NewPreprocessEffect(),
			NewHalftoneEffect(p.pool),
			NewDitherEffect(p.pool),
			NewCorruptEffect(),
		}
	}
	p.params = make(map[string]Params, len(p.effects))
	for _, e := range p.effects {
		p.params[e.ID()] = e.DefaultParams().Clone()
	}
	p.disp = newDispatcher(p.pool)
	return p
}

// Effects returns the pipeline stages in execution order.
func (p *Processor) Effects() []Effect { return p.effects }

// Params returns the live parameter state of the named effect, or nil for
// an unknown ID. The map is owned by the processor: mutate it only through
// SetParam or control callbacks.
func (p *Processor) Params(effectID string) Params {
	return p.params[effectID]
}

// SetParam mutates one parameter of one effect. Unknown effect IDs are
// ignored. Values are read on the next render tick.
func (p *Processor) SetParam(effectID, key string, value any) {
	if state, ok := p.params[effectID]; ok {
		state[key] = value
	}
}

// Controls registers every effect's controls with the builder. Control
// edits mutate the processor's parameter state and then report the touched
// effect through onChanged, which hosts typically bind to a debounced
// render request.
func (p *Processor) Controls(b ControlBuilder, onChanged func(effectID string)) {
	for _, e := range p.effects {
		id := e.ID()
		state := p.params[id]
		e.Controls(b, state, func(key string, value any) {
			state[key] = value
			if onChanged != nil {
				onChanged(id)
			}
		})
	}
}

// Render processes the raster through every enabled stage at the
// processor's configured scale factor.
func (p *Processor) Render(r *Raster) {
	p.RenderScaled(r, p.scale)
}

// RenderScaled processes the raster with an explicit scale factor. The
// interactive preview, the full-resolution exporter and the per-frame video
// exporter all call this identically; output dimensions always equal input
// dimensions.
func (p *Processor) RenderScaled(r *Raster, scale float64) {
	if r == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	for _, e := range p.effects {
		state := p.params[e.ID()]
		if !state.Bool("enabled") {
			continue
		}
		p.disp.run(e, r, state, scale)
	}
}
