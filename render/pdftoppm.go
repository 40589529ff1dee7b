package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
)

// Document renders pages of a PDF file by shelling out to pdftoppm, with
// pdfinfo supplying the page count. Both ship with poppler-utils.
type Document struct {
	path       string
	renderBin  string
	infoBin    string
	pages      int
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithRenderBinary overrides the pdftoppm binary path.
func WithRenderBinary(bin string) DocumentOption {
	return func(d *Document) { d.renderBin = bin }
}

// WithInfoBinary overrides the pdfinfo binary path.
func WithInfoBinary(bin string) DocumentOption {
	return func(d *Document) { d.infoBin = bin }
}

// Open probes the PDF with pdfinfo and returns a renderer for it.
func Open(ctx context.Context, path string, opts ...DocumentOption) (*Document, error) {
	d := &Document{path: path, renderBin: "pdftoppm", infoBin: "pdfinfo"}
	for _, opt := range opts {
		opt(d)
	}
	out, err := exec.CommandContext(ctx, d.infoBin, path).Output()
	if err != nil {
		return nil, fmt.Errorf("pdfinfo %s: %w", path, err)
	}
	pages, err := parsePageCount(out)
	if err != nil {
		return nil, fmt.Errorf("pdfinfo %s: %w", path, err)
	}
	d.pages = pages
	return d, nil
}

func parsePageCount(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parse page count: %w", err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no Pages field in output")
}

// PageCount returns the number of pages reported by pdfinfo.
func (d *Document) PageCount() int { return d.pages }

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// Render rasterizes one zero-based page at the given DPI. pdftoppm writes a
// single PNG to stdout when the output root is "-".
func (d *Document) Render(ctx context.Context, page int, dpi float64) (image.Image, error) {
	if page < 0 || page >= d.pages {
		return nil, fmt.Errorf("page %d out of range [0,%d)", page, d.pages)
	}
	n := strconv.Itoa(page + 1)
	cmd := exec.CommandContext(ctx, d.renderBin,
		"-png",
		"-r", strconv.Itoa(int(dpi)),
		"-f", n, "-l", n,
		d.path, "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w (%s)", page, err, strings.TrimSpace(stderr.String()))
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode pdftoppm output for page %d: %w", page, err)
	}
	return img, nil
}
