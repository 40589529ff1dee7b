package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestRescaleDimensions(t *testing.T) {
	img := solid(100, 40, color.White)
	got := Rescale(img, 2.0)
	if b := got.Bounds(); b.Dx() != 200 || b.Dy() != 80 {
		t.Fatalf("unexpected size: %v", b)
	}
	got = Rescale(img, 0.5)
	if b := got.Bounds(); b.Dx() != 50 || b.Dy() != 20 {
		t.Fatalf("unexpected size: %v", b)
	}
}

func TestRescaleDegenerateFactors(t *testing.T) {
	img := solid(10, 10, color.White)
	for _, f := range []float64{0, -1, 1, math.NaN(), math.Inf(1)} {
		if got := Rescale(img, f); got != img {
			t.Fatalf("factor %v should return input unchanged", f)
		}
	}
}

func TestStaticRenderer(t *testing.T) {
	s := &Static{Pages: []image.Image{solid(72, 72, color.White)}}
	img, err := s.Render(t.Context(), 0, 144)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 144 || b.Dy() != 144 {
		t.Fatalf("expected dpi scaling to double size, got %v", b)
	}
	if _, err := s.Render(t.Context(), 1, 72); err == nil {
		t.Fatal("expected out of range error")
	}
	if s.PageCount() != 1 {
		t.Fatalf("unexpected page count: %d", s.PageCount())
	}
}

func TestParsePageCount(t *testing.T) {
	out := []byte("Title: x\nPages:          12\nEncrypted: no\n")
	n, err := parsePageCount(out)
	if err != nil {
		t.Fatalf("parsePageCount() error = %v", err)
	}
	if n != 12 {
		t.Fatalf("pages = %d, want 12", n)
	}
	if _, err := parsePageCount([]byte("Title: x\n")); err == nil {
		t.Fatal("expected error for missing Pages field")
	}
}
