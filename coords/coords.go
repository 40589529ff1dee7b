// Package coords maps rectangles between OCR-space (the bitmap rendered at
// the fixed OCR processing resolution) and display-space (the zoom-scaled
// page view). OCR engines report pixel boxes against the image they were
// given, so the two spaces differ only by a uniform scale.
package coords

import (
	"errors"
	"math"
)

// BaseDPI is the document's native rendering baseline.
const BaseDPI = 72.0

// ErrInvalidRect marks a rectangle that cannot be transformed. Callers are
// expected to skip the highlight rather than surface the error.
var ErrInvalidRect = errors.New("coords: invalid rectangle")

// Matrix is a 2D affine transform in the usual PDF ordering [a b c d e f].
// Only uniform scales are produced by this package, but the full form keeps
// inversion and composition cheap to express.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Scale returns a scaling transform.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply composes m with o (m applied first).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a location in either space.
type Point struct{ X, Y float64 }

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Inverse returns the inverse transform, or an error when m is singular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("coords: matrix singular")
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Rect is an axis-aligned rectangle with the origin in the upper-left corner
// of its space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsValid reports whether the rectangle has finite coordinates and positive
// dimensions.
func (r Rect) IsValid() bool {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// transformRect maps both corners of r through m. The matrices produced here
// never rotate, so the result stays axis-aligned.
func transformRect(m Matrix, r Rect) Rect {
	tl := m.Transform(Point{X: r.X, Y: r.Y})
	br := m.Transform(Point{X: r.X + r.Width, Y: r.Y + r.Height})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// DisplayScale returns the uniform factor that maps OCR-space to
// display-space: zoom divided by the fixed ratio between OCR DPI and the base
// rendering DPI.
func DisplayScale(zoom, ocrDPI float64) float64 {
	return zoom / (ocrDPI / BaseDPI)
}

// OCRToDisplay maps an OCR-space rectangle to display-space at the given zoom
// factor. It returns ErrInvalidRect when the rectangle is degenerate or any
// input is non-finite or non-positive.
func OCRToDisplay(r Rect, ocrDPI, zoom float64) (Rect, error) {
	if !r.IsValid() || !positiveFinite(ocrDPI) || !positiveFinite(zoom) {
		return Rect{}, ErrInvalidRect
	}
	s := DisplayScale(zoom, ocrDPI)
	return transformRect(Scale(s, s), r), nil
}

// DisplayToOCR is the inverse of OCRToDisplay at the same zoom factor.
func DisplayToOCR(r Rect, ocrDPI, zoom float64) (Rect, error) {
	if !r.IsValid() || !positiveFinite(ocrDPI) || !positiveFinite(zoom) {
		return Rect{}, ErrInvalidRect
	}
	s := DisplayScale(zoom, ocrDPI)
	inv, err := Scale(s, s).Inverse()
	if err != nil {
		return Rect{}, ErrInvalidRect
	}
	return transformRect(inv, r), nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
