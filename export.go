package screentone

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
)

// ErrExportAborted wraps allocation or read failures during export. Partial
// buffers are discarded; callers see the export as a whole as failed.
var ErrExportAborted = errors.New("screentone: export aborted")

// ErrExportDeclined is returned when the pre-allocation confirmation hook
// rejects a very large export.
var ErrExportDeclined = errors.New("screentone: export declined by caller")

// largeExportBytes is the pixel-buffer size above which the exporter asks
// for confirmation before allocating.
const largeExportBytes = 256 << 20

// FrameSource supplies source frames to the exporter. A still image export
// is a single-frame source; video and GIF exports supply one frame per
// iteration.
type FrameSource interface {
	// FrameCount returns the total number of frames.
	FrameCount() int

	// Frame writes frame i into dst. dst dimensions are the source's
	// native size. Errors propagate as a fatal export abort.
	Frame(i int, dst *Raster) error
}

// FrameSink receives processed full-resolution frames. Encoding and muxing
// live behind this interface; the engine only hands rasters over.
type FrameSink interface {
	WriteFrame(r *Raster) error
}

// ExportOptions configures an export run.
type ExportOptions struct {
	// Width and Height are the output dimensions. Zero values default to
	// the source dimensions.
	Width, Height int

	// SourceWidth and SourceHeight are the source's native dimensions.
	SourceWidth, SourceHeight int

	// OnProgress, when set, is called after every frame with the number
	// of completed frames and the total.
	OnProgress func(done, total int)

	// ConfirmLarge, when set, is consulted before allocating output
	// buffers beyond the large-export threshold. Returning false declines
	// the export instead of risking exhaustion.
	ConfirmLarge func(bytes int64) bool

	// YieldEvery sets how many frames are processed between cooperative
	// yields back to the scheduler. Zero defaults to 1: long exports stay
	// responsive and report progress at a fixed cadence.
	YieldEvery int
}

// Export renders every source frame at full output resolution through the
// same stage contract the interactive preview uses, and hands the results
// to the sink in order.
//
// The run is synchronous on the calling goroutine but cooperatively yields
// between frames. Cancellation is best-effort: the context is checked
// between frames, and frames already handed to the sink stay with the sink.
func (p *Processor) Export(ctx context.Context, src FrameSource, sink FrameSink, opts ExportOptions) error {
	if src == nil || sink == nil {
		return fmt.Errorf("%w: nil source or sink", ErrExportAborted)
	}
	srcW, srcH := opts.SourceWidth, opts.SourceHeight
	if srcW < 1 || srcH < 1 {
		return fmt.Errorf("%w: source dimensions %dx%d", ErrExportAborted, srcW, srcH)
	}
	outW, outH := opts.Width, opts.Height
	if outW < 1 {
		outW = srcW
	}
	if outH < 1 {
		outH = srcH
	}

	if bytes := int64(outW) * int64(outH) * 4; bytes > largeExportBytes {
		if opts.ConfirmLarge == nil || !opts.ConfirmLarge(bytes) {
			Logger().Warn("large export declined", "bytes", bytes)
			return ErrExportDeclined
		}
	}

	yieldEvery := opts.YieldEvery
	if yieldEvery < 1 {
		yieldEvery = 1
	}

	// The export raster is full size, so stages that scaled pixel-space
	// constants down for the preview scale them back to 1:1 here.
	scale := float64(outW) / float64(srcW)

	frame := p.pool.Get(srcW, srcH)
	defer p.pool.Put(frame)
	out := p.pool.Get(outW, outH)
	defer p.pool.Put(out)

	total := src.FrameCount()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrExportAborted, err)
		}
		if err := src.Frame(i, frame); err != nil {
			return fmt.Errorf("%w: read frame %d: %w", ErrExportAborted, i, err)
		}

		if outW == srcW && outH == srcH {
			out.CopyFrom(frame)
		} else {
			// The raster holds straight (non-premultiplied) RGBA, which is
			// image.NRGBA's layout. Handing the same bytes to imaging as
			// image.RGBA would make its scanner unpremultiply translucent
			// pixels and corrupt them.
			straight := &image.NRGBA{
				Pix:    frame.Data(),
				Stride: frame.Stride(),
				Rect:   frame.Bounds(),
			}
			scaled := imaging.Resize(straight, outW, outH, imaging.NearestNeighbor)
			copy(out.Data(), scaled.Pix)
		}

		p.RenderScaled(out, scale)
		if err := sink.WriteFrame(out); err != nil {
			return fmt.Errorf("%w: write frame %d: %w", ErrExportAborted, i, err)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total)
		}
		if (i+1)%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
	return nil
}
