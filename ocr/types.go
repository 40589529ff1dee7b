package ocr

import (
	"context"
	"errors"

	"github.com/wudi/readaloud/coords"
	"github.com/wudi/readaloud/segment"
)

// ErrEngine wraps failures of the OCR capability itself: the engine threw or
// returned unusable data. It is recoverable; no read session starts and no
// partial results are delivered.
var ErrEngine = errors.New("ocr: engine failure")

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Input encapsulates a single page bitmap submitted for OCR.
type Input struct {
	// ID is an optional caller-provided identifier that is echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// PageIndex links the input back to the zero-based page it was rendered
	// from, so results can be checked against the currently displayed page.
	PageIndex int
	// DPI carries the processing resolution the bitmap was rendered at.
	// Providers such as Tesseract use this for layout heuristics, and the
	// highlight transform needs it to relate OCR-space to display-space.
	DPI int
	// Languages is a list of language hints (e.g., "eng", "chi_sim") that
	// providers can use to select trained data.
	Languages []string
	// Metadata passes through engine-specific knobs (e.g., "psm" for
	// Tesseract) without hard-coding them into the API surface.
	Metadata map[string]string
}

// Word is a single recognized token with its OCR-space bounding box.
type Word struct {
	Text       string
	Bounds     coords.Rect
	Confidence float64
}

// Result captures OCR output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PageIndex mirrors the Input.PageIndex.
	PageIndex int
	// PlainText contains the linearized text extracted from the image.
	PlainText string
	// Words carries the recognized tokens with positional metadata.
	Words []Word
	// Language indicates the dominant language detected, if known.
	Language string
}

// Segments converts the recognized words into raw segments for
// normalization. Detection order is preserved so the normalizer's stable
// sort can use it as the final tie break.
func (r Result) Segments() []segment.Segment {
	out := make([]segment.Segment, 0, len(r.Words))
	for _, w := range r.Words {
		out = append(out, segment.Segment{
			Bounds:     w.Bounds,
			Text:       w.Text,
			Confidence: w.Confidence,
		})
	}
	return out
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
