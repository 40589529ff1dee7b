package ocr

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/wudi/readaloud/observability"
	"github.com/wudi/readaloud/segment"
)

// DefaultDPI is the fixed processing resolution pages are rendered at for
// recognition, independent of the current display zoom. Decoupling the two
// keeps recognition quality stable while the user zooms.
const DefaultDPI = 200

// Renderer is the page-rendering collaborator: given a page index and a DPI,
// produce a bitmap.
type Renderer interface {
	PageCount() int
	Render(ctx context.Context, page int, dpi float64) (image.Image, error)
}

// Outcome is the cross-thread message an OCR pass delivers back to the event
// loop. Exactly one of Sequence or Err is meaningful; a failed pass carries
// no partial results.
type Outcome struct {
	Page     int
	Sequence segment.Sequence
	Err      error
}

// Worker runs a full OCR pass off the event loop: render the page at the
// fixed processing resolution, invoke the engine, normalize the output. It
// touches no shared state; results travel through the delivery callback.
type Worker struct {
	Renderer  Renderer
	Engine    Engine
	DPI       int      // defaults to DefaultDPI
	Threshold float64  // defaults to segment.DefaultConfidenceThreshold
	Languages []string // optional engine language hints
	// InputOptions are applied to every submitted input, e.g. Tesseract
	// tuning such as WithTesseractPSM.
	InputOptions []InputOption
	Log          observability.Logger
	Tracer       observability.Tracer
}

func (w *Worker) dpi() int {
	if w.DPI > 0 {
		return w.DPI
	}
	return DefaultDPI
}

func (w *Worker) threshold() float64 {
	if w.Threshold > 0 {
		return w.Threshold
	}
	return segment.DefaultConfidenceThreshold
}

func (w *Worker) log() observability.Logger {
	if w.Log != nil {
		return w.Log
	}
	return observability.NopLogger{}
}

func (w *Worker) tracer() observability.Tracer {
	if w.Tracer != nil {
		return w.Tracer
	}
	return observability.NopTracer()
}

// Run executes one OCR pass synchronously and returns the normalized
// sequence. An empty sequence means the page had no recognizable text, which
// is a valid result, not an error.
func (w *Worker) Run(ctx context.Context, page int) (segment.Sequence, error) {
	ctx, span := w.tracer().StartSpan(ctx, "ocr.run")
	defer span.Finish()
	span.SetTag("page", page)

	if page < 0 || page >= w.Renderer.PageCount() {
		err := fmt.Errorf("page %d out of range [0,%d)", page, w.Renderer.PageCount())
		span.SetError(err)
		return nil, err
	}

	start := time.Now()
	img, err := w.Renderer.Render(ctx, page, float64(w.dpi()))
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}

	opts := make([]InputOption, 0, len(w.InputOptions)+1)
	opts = append(opts, WithLanguages(w.Languages...))
	opts = append(opts, w.InputOptions...)
	in, err := InputFromImage(img, page, w.dpi(), opts...)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	res, err := w.Engine.Recognize(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	seq := segment.Normalize(res.Segments(), w.threshold())
	w.log().Info("ocr pass complete",
		observability.Int("page", page),
		observability.Int("raw_words", len(res.Words)),
		observability.Int("segments", len(seq)),
		observability.Float64("seconds", time.Since(start).Seconds()),
	)
	return seq, nil
}

// Start runs an OCR pass on its own goroutine and posts the outcome back
// through post, which must enqueue the closure onto the event loop. The
// pass has no stop point: once started it runs to completion, and the loop
// decides whether the result is still relevant.
func (w *Worker) Start(ctx context.Context, page int, post func(func()), deliver func(Outcome)) {
	go func() {
		seq, err := w.Run(ctx, page)
		post(func() {
			deliver(Outcome{Page: page, Sequence: seq, Err: err})
		})
	}()
}
