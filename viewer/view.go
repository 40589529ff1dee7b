package viewer

import (
	"context"
	"image"
	"image/draw"
	"sync"

	"github.com/google/uuid"

	"github.com/wudi/readaloud/coords"
	"github.com/wudi/readaloud/highlight"
	"github.com/wudi/readaloud/observability"
	"github.com/wudi/readaloud/ocr"
	"github.com/wudi/readaloud/render"
	"github.com/wudi/readaloud/segment"
	"github.com/wudi/readaloud/speech"
	"github.com/wudi/readaloud/tts"
)

// Zoom step factors, matching the usual viewer controls.
const (
	zoomInStep  = 1.2
	zoomOutStep = 0.8
)

// Option configures a View.
type Option func(*View)

// WithOCREngine overrides the OCR engine (default: ocr.DefaultEngine()).
func WithOCREngine(e ocr.Engine) Option {
	return func(v *View) { v.ocrEngine = e }
}

// WithOCRDPI overrides the fixed OCR processing resolution.
func WithOCRDPI(dpi int) Option {
	return func(v *View) { v.ocrDPI = dpi }
}

// WithConfidenceThreshold overrides the segment confidence threshold.
func WithConfidenceThreshold(t float64) Option {
	return func(v *View) { v.threshold = t }
}

// WithLanguages sets OCR language hints.
func WithLanguages(langs ...string) Option {
	return func(v *View) { v.languages = append([]string(nil), langs...) }
}

// WithOCROptions applies extra per-input OCR options, e.g. Tesseract tuning.
func WithOCROptions(opts ...ocr.InputOption) Option {
	return func(v *View) { v.ocrOpts = append([]ocr.InputOption(nil), opts...) }
}

// WithLogger sets the logger shared by the view and its workers.
func WithLogger(log observability.Logger) Option {
	return func(v *View) { v.log = log }
}

// WithNotificationHook registers an observer for playback notifications.
// The hook runs on the loop goroutine, after the highlight overlay has been
// updated.
func WithNotificationHook(fn func(tts.Notification)) Option {
	return func(v *View) { v.onNotification = fn }
}

// WithOCRHook registers an observer for OCR outcomes, including failures.
// The hook runs on the loop goroutine.
func WithOCRHook(fn func(ocr.Outcome)) Option {
	return func(v *View) { v.onOCR = fn }
}

// View owns the page/zoom display state and orchestrates one read-aloud
// pipeline: OCR worker → TTS worker → highlight overlay. The speech engine
// is driven only from the loop goroutine.
type View struct {
	loop     *Loop
	renderer render.Renderer
	engine   speech.Engine

	ocrEngine ocr.Engine
	ocrDPI    int
	threshold float64
	languages []string
	ocrOpts   []ocr.InputOption
	log       observability.Logger

	onNotification func(tts.Notification)
	onOCR          func(ocr.Outcome)

	state   *tts.State
	overlay *highlight.Overlay

	mu      sync.Mutex
	page    int
	zoom    float64
	tracked uuid.UUID // session the overlay currently follows
}

// New builds a view over the given collaborators. The loop must be running
// (or about to run) for playback to make progress.
func New(loop *Loop, renderer render.Renderer, engine speech.Engine, opts ...Option) *View {
	v := &View{
		loop:      loop,
		renderer:  renderer,
		engine:    engine,
		ocrEngine: ocr.DefaultEngine(),
		ocrDPI:    ocr.DefaultDPI,
		threshold: segment.DefaultConfidenceThreshold,
		log:       observability.NopLogger{},
		zoom:      1.0,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.state = tts.NewState()
	v.overlay = highlight.NewOverlay(float64(v.ocrDPI))
	return v
}

// State exposes the playback state machine for read-only observation.
func (v *View) State() *tts.State { return v.state }

// Overlay exposes the highlight overlay, e.g. for display layers that
// composite it themselves.
func (v *View) Overlay() *highlight.Overlay { return v.overlay }

// Page returns the currently displayed zero-based page.
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Zoom returns the current zoom factor.
func (v *View) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetZoom replaces the zoom factor. Non-positive values are ignored. An
// in-progress read session keeps running; the highlight simply repaints at
// the new factor.
func (v *View) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	v.mu.Lock()
	v.zoom = z
	v.mu.Unlock()
}

// ZoomIn scales the view up one step.
func (v *View) ZoomIn() { v.SetZoom(v.Zoom() * zoomInStep) }

// ZoomOut scales the view down one step.
func (v *View) ZoomOut() { v.SetZoom(v.Zoom() * zoomOutStep) }

// GoToPage displays another page. Navigating away from the page being read
// is an implicit stop: the worker halts at the next segment boundary and the
// highlight clears immediately.
func (v *View) GoToPage(page int) {
	if page < 0 || page >= v.renderer.PageCount() {
		return
	}
	v.mu.Lock()
	changed := page != v.page
	v.page = page
	v.mu.Unlock()
	if changed {
		v.state.Stop()
		v.overlay.Clear()
	}
}

// NextPage advances one page if possible.
func (v *View) NextPage() { v.GoToPage(v.Page() + 1) }

// PrevPage goes back one page if possible.
func (v *View) PrevPage() { v.GoToPage(v.Page() - 1) }

// StartReadAloud kicks off an OCR pass over the current page and, when it
// succeeds and the page is still displayed, a read session over the result.
// Rejected while a session is active or draining.
func (v *View) StartReadAloud(ctx context.Context) error {
	if v.state.Snapshot().Phase != tts.Idle {
		return tts.ErrSessionActive
	}
	worker := &ocr.Worker{
		Renderer:     v.renderer,
		Engine:       v.ocrEngine,
		DPI:          v.ocrDPI,
		Threshold:    v.threshold,
		Languages:    v.languages,
		InputOptions: v.ocrOpts,
		Log:          v.log,
	}
	worker.Start(ctx, v.Page(), v.post, v.handleOCROutcome)
	return nil
}

// StopReading requests a stop. The in-flight utterance finishes; no further
// segment is dispatched.
func (v *View) StopReading() {
	v.state.Stop()
}

// RenderDisplay rasterizes the current page at the current zoom and
// composites the highlight overlay onto it.
func (v *View) RenderDisplay(ctx context.Context) (*image.RGBA, error) {
	v.mu.Lock()
	page, zoom := v.page, v.zoom
	v.mu.Unlock()

	img, err := v.renderer.Render(ctx, page, zoom*coords.BaseDPI)
	if err != nil {
		return nil, err
	}
	rgba := toRGBA(img)
	v.overlay.Paint(rgba, page, zoom)
	return rgba, nil
}

func (v *View) post(fn func()) {
	v.loop.Post(fn)
}

// handleOCROutcome runs on the loop goroutine.
func (v *View) handleOCROutcome(o ocr.Outcome) {
	if v.onOCR != nil {
		defer v.onOCR(o)
	}
	if o.Err != nil {
		v.log.Error("ocr failed", observability.Int("page", o.Page), observability.Error("cause", o.Err))
		return
	}
	if o.Page != v.Page() {
		// The user navigated away while recognition ran; the result is
		// stale and intentionally discarded.
		v.log.Info("ocr result discarded", observability.Int("page", o.Page))
		return
	}
	if o.Sequence.Empty() {
		v.log.Info("nothing to read", observability.Int("page", o.Page))
		return
	}
	worker := &tts.Worker{
		State:  v.state,
		Speak:  v.speakRequest,
		Reset:  v.resetRequest,
		Notify: v.deliver,
		Log:    v.log,
	}
	if err := worker.Start(o.Page, o.Sequence); err != nil {
		v.log.Warn("read session rejected", observability.Error("cause", err))
	}
}

// speakRequest is the worker's blocking cross-thread utterance request: the
// engine is invoked on the loop goroutine, and the worker suspends here
// until the engine signals completion.
func (v *View) speakRequest(text string) error {
	done := make(chan error, 1)
	ok := v.loop.Post(func() {
		v.engine.Speak(text, func(err error) { done <- err })
	})
	if !ok {
		return ErrLoopClosed
	}
	return <-done
}

// resetRequest reinitializes the engine on the loop goroutine; part of the
// stop path.
func (v *View) resetRequest() error {
	var err error
	if !v.loop.Call(func() { err = v.engine.Reinitialize() }) {
		return ErrLoopClosed
	}
	return err
}

// deliver routes a worker notification onto the loop goroutine, updates the
// overlay with stale-session guarding, and then informs the observer hook.
func (v *View) deliver(n tts.Notification) {
	v.loop.Post(func() {
		if !v.admit(n) {
			return
		}
		v.overlay.Observe(n)
		if v.onNotification != nil {
			v.onNotification(n)
		}
	})
}

// admit drops notifications from sessions other than the one the state
// machine knows; a new session's first notification re-binds the overlay.
func (v *View) admit(n tts.Notification) bool {
	if n.Session != v.state.Snapshot().Session {
		return false
	}
	v.mu.Lock()
	rebind := n.Session != v.tracked
	if rebind {
		v.tracked = n.Session
	}
	v.mu.Unlock()
	if rebind {
		v.overlay.Track(n.Session, n.Page)
	}
	return true
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
