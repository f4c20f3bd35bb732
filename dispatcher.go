package screentone

import "errors"

// dispatcher decides per stage whether to execute on the parallel path or
// the sequential per-pixel path, and hands the raster off between them.
//
// A stage runs accelerated only when an accelerator is registered, the
// effect reports its current parameters parallel-capable, the parameters
// compile into a stage program, and the accelerator claims the program's
// stage type. Anything else, including a mid-dispatch error, falls back to
// the sequential path for that stage alone; neighbor stages keep whichever
// path they qualify for.
type dispatcher struct {
	pool *RasterPool
}

func newDispatcher(pool *RasterPool) *dispatcher {
	if pool == nil {
		pool = DefaultPool
	}
	return &dispatcher{pool: pool}
}

// run executes one stage on the best available path.
func (d *dispatcher) run(e Effect, r *Raster, p Params, scale float64) {
	if d.runAccelerated(e, r, p, scale) {
		return
	}
	e.Process(r, p, scale)
}

// runAccelerated attempts the parallel path. It reports false when the
// stage must run sequentially instead.
func (d *dispatcher) runAccelerated(e Effect, r *Raster, p Params, scale float64) bool {
	a := GetAccelerator()
	if a == nil {
		return false
	}
	if !e.ParallelCapable(p) {
		return false
	}
	acc, ok := e.(Accelerable)
	if !ok {
		return false
	}
	prog, ok := acc.CompileStage(p, scale)
	if !ok {
		return false
	}
	if !a.CanAccelerate(prog.Op()) {
		return false
	}

	// Hand-off buffer: the stage program reads and writes the staging
	// raster, never the working raster directly.
	staging := d.pool.Get(r.Width(), r.Height())
	defer d.pool.Put(staging)
	staging.CopyFrom(r)

	target := StageTarget{
		Data:   staging.Data(),
		Width:  staging.Width(),
		Height: staging.Height(),
		Stride: staging.Stride(),
	}
	if err := a.RunStage(target, prog); err != nil {
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("stage declined by accelerator",
				"effect", e.ID(), "accelerator", a.Name())
		} else {
			Logger().Warn("accelerated stage failed, using sequential path",
				"effect", e.ID(), "accelerator", a.Name(), "err", err)
		}
		return false
	}

	// Explicit copy-back: the accelerated path executes one program per
	// dispatch, so results are read into the working raster before the
	// next stage, whichever path that stage takes.
	r.CopyFrom(staging)
	Logger().Debug("stage accelerated", "effect", e.ID(), "accelerator", a.Name())
	return true
}
