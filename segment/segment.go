// Package segment models OCR-detected text blocks and turns raw engine
// output into a reading-order sequence suitable for read-aloud playback.
package segment

import "github.com/wudi/readaloud/coords"

// Segment is one OCR-detected block of text. Bounds are in OCR-space, the
// pixel coordinates of the bitmap rendered at the OCR processing resolution.
// Confidence is normalized to [0,1]. Segments are immutable once produced.
type Segment struct {
	Bounds     coords.Rect
	Text       string
	Confidence float64
}

// Sequence is an ordered list of segments: reading-order sorted, confidence
// filtered, non-empty text only. A new OCR pass produces a brand-new
// sequence; an existing one is never mutated.
type Sequence []Segment

// Empty reports whether there is nothing to read. An empty sequence is a
// valid normalization result, not an error.
func (s Sequence) Empty() bool { return len(s) == 0 }

// Texts returns the segment texts in order.
func (s Sequence) Texts() []string {
	out := make([]string, len(s))
	for i, seg := range s {
		out[i] = seg.Text
	}
	return out
}
