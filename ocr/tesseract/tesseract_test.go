package tesseract

import (
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/readaloud/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(target string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(target)
	return img
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	target := "Hello PDF"
	in, err := ocr.InputFromImage(renderText(target), 0, 200, ocr.WithLanguages("eng"))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}

	res, err := NewEngine().Recognize(t.Context(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(res.PlainText), "hello") {
		t.Fatalf("unexpected text: %q", res.PlainText)
	}
	if len(res.Words) == 0 {
		t.Fatal("expected word boxes")
	}
	for _, w := range res.Words {
		if !w.Bounds.IsValid() {
			t.Fatalf("invalid word bounds: %+v", w)
		}
		if w.Confidence < 0 || w.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", w.Confidence)
		}
	}
}

func TestInitRegistersDefault(t *testing.T) {
	if got := ocr.DefaultEngine().Name(); got != "tesseract" {
		t.Fatalf("default engine = %s, want tesseract", got)
	}
}
