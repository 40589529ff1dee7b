// Package render supplies page bitmaps to the pipeline. Rendering proper is
// delegated to an external tool (pdftoppm); this package wraps it behind the
// small collaborator contract the OCR worker and the display layer consume:
// given a page index and a DPI, produce a bitmap.
package render

import (
	"context"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Renderer mirrors ocr.Renderer so backends in this package satisfy both.
type Renderer interface {
	PageCount() int
	Render(ctx context.Context, page int, dpi float64) (image.Image, error)
}

// Rescale resamples img by a uniform factor using Catmull-Rom interpolation.
// Factors at or below zero return the input unchanged.
func Rescale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return img
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 || h < 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// Static serves pre-rendered bitmaps from memory, rescaled to the requested
// DPI from an assumed source resolution. It backs tests and demos where no
// PDF toolchain is available.
type Static struct {
	Pages     []image.Image
	SourceDPI float64 // DPI the stored bitmaps were produced at; defaults to 72
}

func (s *Static) PageCount() int { return len(s.Pages) }

func (s *Static) Render(ctx context.Context, page int, dpi float64) (image.Image, error) {
	if page < 0 || page >= len(s.Pages) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", page, len(s.Pages))
	}
	src := s.SourceDPI
	if src <= 0 {
		src = 72
	}
	return Rescale(s.Pages[page], dpi/src), nil
}
