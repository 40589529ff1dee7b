// Package highlight keeps a translucent marker over the text segment
// currently being read aloud. It consumes worker notifications, guards
// against stale sessions and pages, and transforms OCR-space boxes to
// display-space at the zoom factor in effect when the paint happens, not
// when the OCR pass ran.
package highlight

import (
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/google/uuid"

	"github.com/wudi/readaloud/coords"
	"github.com/wudi/readaloud/tts"
)

// Fill is an RGBA highlight color with components in [0,1].
type Fill struct {
	R, G, B, A float64
}

// DefaultFill is a semi-transparent yellow.
var DefaultFill = Fill{R: 1, G: 0.85, B: 0.2, A: 0.35}

// Overlay tracks the active segment's OCR-space rectangle. It is safe for
// concurrent use; notifications normally arrive on the event loop while
// repaints can be triggered from zoom changes.
type Overlay struct {
	ocrDPI float64
	fill   Fill

	mu      sync.Mutex
	session uuid.UUID
	page    int
	rect    coords.Rect
	active  bool
}

// NewOverlay creates an overlay for boxes detected at the given OCR DPI.
func NewOverlay(ocrDPI float64) *Overlay {
	return &Overlay{ocrDPI: ocrDPI, fill: DefaultFill}
}

// SetFill overrides the highlight color.
func (o *Overlay) SetFill(f Fill) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fill = f
}

// Track binds the overlay to a new read session. Notifications carrying any
// other session identifier are discarded from then on.
func (o *Overlay) Track(session uuid.UUID, page int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = session
	o.page = page
	o.active = false
}

// Observe consumes one worker notification. Started stores the segment's
// rectangle; finished and ended clear it. Stale-session notifications are
// silently dropped.
func (o *Overlay) Observe(n tts.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n.Session != o.session {
		return
	}
	switch n.Kind {
	case tts.SegmentStarted:
		o.rect = n.Segment.Bounds
		o.active = true
	case tts.SegmentFinished, tts.SessionEnded:
		o.active = false
	}
}

// Clear drops any active highlight, e.g. on page navigation.
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = false
}

// Active reports whether a segment highlight is currently held.
func (o *Overlay) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Rect returns the display-space rectangle of the active highlight at the
// given zoom factor. ok is false when there is nothing to draw: no active
// segment, or a rectangle that does not survive the transform.
func (o *Overlay) Rect(currentPage int, zoom float64) (coords.Rect, bool) {
	o.mu.Lock()
	active, page, rect := o.active, o.page, o.rect
	o.mu.Unlock()

	if !active || page != currentPage {
		return coords.Rect{}, false
	}
	disp, err := coords.OCRToDisplay(rect, o.ocrDPI, zoom)
	if err != nil {
		// Degenerate geometry means skip the highlight, never an error
		// surfaced into rendering.
		return coords.Rect{}, false
	}
	return disp, true
}

// Paint draws the highlight onto the page bitmap rendered at the given zoom
// factor. It reports whether anything was drawn.
func (o *Overlay) Paint(dst *image.RGBA, currentPage int, zoom float64) bool {
	r, ok := o.Rect(currentPage, zoom)
	if !ok {
		return false
	}
	o.mu.Lock()
	fill := o.fill
	o.mu.Unlock()
	dc := gg.NewContextForRGBA(dst)
	dc.SetRGBA(fill.R, fill.G, fill.B, fill.A)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()
	return true
}
