package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// InputFromImage PNG-encodes a rendered page bitmap into an OCR input. The
// generated ID is stable for a (page, dpi) pair to simplify correlation with
// downstream results.
func InputFromImage(img image.Image, page, dpi int, opts ...InputOption) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode page bitmap: %w", err)
	}
	in := Input{
		ID:        fmt.Sprintf("page-%d-dpi-%d", page, dpi),
		Image:     buf.Bytes(),
		Format:    ImageFormatPNG,
		PageIndex: page,
		DPI:       dpi,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
