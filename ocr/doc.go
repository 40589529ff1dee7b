// Package ocr defines the contract for plugging OCR engines (for example,
// Tesseract) into the read-aloud pipeline, and the background worker that
// turns a rendered page into a normalized reading-order segment sequence.
// The Engine interface is intentionally small and transport-agnostic so
// providers can be backed by native libraries, local binaries, or remote
// APIs without leaking provider-specific concerns into callers.
package ocr
