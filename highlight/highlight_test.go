package highlight

import (
	"image"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/wudi/readaloud/coords"
	"github.com/wudi/readaloud/segment"
	"github.com/wudi/readaloud/tts"
)

func started(sid uuid.UUID, page int, r coords.Rect) tts.Notification {
	return tts.Notification{
		Kind:    tts.SegmentStarted,
		Session: sid,
		Page:    page,
		Segment: segment.Segment{Bounds: r, Text: "x", Confidence: 0.9},
	}
}

func TestOverlayFollowsSession(t *testing.T) {
	o := NewOverlay(200)
	sid := uuid.New()
	o.Track(sid, 0)

	o.Observe(started(sid, 0, coords.Rect{X: 100, Y: 50, Width: 200, Height: 20}))
	if !o.Active() {
		t.Fatal("expected active highlight after segment-started")
	}
	if _, ok := o.Rect(0, 1.0); !ok {
		t.Fatal("expected a display rect")
	}

	o.Observe(tts.Notification{Kind: tts.SegmentFinished, Session: sid})
	if o.Active() {
		t.Fatal("expected highlight cleared after segment-finished")
	}

	o.Observe(started(sid, 0, coords.Rect{X: 1, Y: 1, Width: 2, Height: 2}))
	o.Observe(tts.Notification{Kind: tts.SessionEnded, Session: sid})
	if o.Active() {
		t.Fatal("expected highlight cleared after session-ended")
	}
}

func TestOverlayDiscardsStaleSession(t *testing.T) {
	o := NewOverlay(200)
	o.Track(uuid.New(), 0)

	o.Observe(started(uuid.New(), 0, coords.Rect{X: 1, Y: 1, Width: 10, Height: 10}))
	if o.Active() {
		t.Fatal("stale-session notification must be discarded")
	}
}

func TestOverlayStalePageSkipsPaint(t *testing.T) {
	o := NewOverlay(200)
	sid := uuid.New()
	o.Track(sid, 2)
	o.Observe(started(sid, 2, coords.Rect{X: 1, Y: 1, Width: 10, Height: 10}))

	if _, ok := o.Rect(3, 1.0); ok {
		t.Fatal("highlight for another page must not be drawn")
	}
	if _, ok := o.Rect(2, 1.0); !ok {
		t.Fatal("highlight for the tracked page must be drawn")
	}
}

func TestOverlayZoomReadAtPaintTime(t *testing.T) {
	o := NewOverlay(200)
	sid := uuid.New()
	o.Track(sid, 0)
	ocrRect := coords.Rect{X: 100, Y: 40, Width: 200, Height: 20}
	o.Observe(started(sid, 0, ocrRect))

	at1, ok := o.Rect(0, 1.0)
	if !ok {
		t.Fatal("expected rect at zoom 1.0")
	}
	at2, ok := o.Rect(0, 2.0)
	if !ok {
		t.Fatal("expected rect at zoom 2.0")
	}
	for _, pair := range [][2]float64{
		{at2.X, at1.X}, {at2.Y, at1.Y}, {at2.Width, at1.Width}, {at2.Height, at1.Height},
	} {
		if math.Abs(pair[0]-2*pair[1]) > 1e-9 {
			t.Fatalf("zoom 2.0 rect not exactly double: %+v vs %+v", at2, at1)
		}
	}
	// At zoom 1.0 the rect is the OCR box scaled by the fixed base/OCR ratio.
	if math.Abs(at1.Width-ocrRect.Width*coords.BaseDPI/200) > 1e-9 {
		t.Fatalf("unexpected zoom 1.0 width: %v", at1.Width)
	}
}

func TestOverlayInvalidGeometrySkipped(t *testing.T) {
	o := NewOverlay(200)
	sid := uuid.New()
	o.Track(sid, 0)
	o.Observe(started(sid, 0, coords.Rect{X: 5, Y: 5, Width: 0, Height: 10}))

	if _, ok := o.Rect(0, 1.0); ok {
		t.Fatal("degenerate rect must be skipped, not drawn")
	}
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if o.Paint(dst, 0, 1.0) {
		t.Fatal("paint must report nothing drawn")
	}
}

func TestOverlaySetFillAppliesToPaint(t *testing.T) {
	o := NewOverlay(72)
	o.SetFill(Fill{R: 0, G: 0, B: 1, A: 1})
	sid := uuid.New()
	o.Track(sid, 0)
	o.Observe(started(sid, 0, coords.Rect{X: 10, Y: 10, Width: 20, Height: 10}))

	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if !o.Paint(dst, 0, 1.0) {
		t.Fatal("expected paint to draw")
	}
	r, g, b, _ := dst.At(15, 15).RGBA()
	if b == 0 || r != 0 || g != 0 {
		t.Fatalf("custom fill not applied: r=%d g=%d b=%d", r, g, b)
	}
}

func TestOverlayFillSafeDuringPaint(t *testing.T) {
	o := NewOverlay(72)
	sid := uuid.New()
	o.Track(sid, 0)
	o.Observe(started(sid, 0, coords.Rect{X: 10, Y: 10, Width: 20, Height: 10}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			o.SetFill(Fill{R: float64(i) / 100, G: 0.5, B: 0.5, A: 0.5})
		}
	}()
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := 0; i < 100; i++ {
		o.Paint(dst, 0, 1.0)
	}
	<-done
}

func TestOverlayPaintWritesPixels(t *testing.T) {
	o := NewOverlay(72) // 1:1 with base DPI keeps the math obvious
	sid := uuid.New()
	o.Track(sid, 0)
	o.Observe(started(sid, 0, coords.Rect{X: 10, Y: 10, Width: 20, Height: 10}))

	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if !o.Paint(dst, 0, 1.0) {
		t.Fatal("expected paint to draw")
	}
	if _, _, _, a := dst.At(15, 15).RGBA(); a == 0 {
		t.Fatal("expected painted pixel inside highlight")
	}
	if _, _, _, a := dst.At(50, 50).RGBA(); a != 0 {
		t.Fatal("expected untouched pixel outside highlight")
	}
}
