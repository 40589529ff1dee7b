package ocr

import "strconv"

// Tesseract tuning knobs. They travel through Input.Metadata so the provider
// stays behind the generic Engine contract; other engines ignore them.

// WithTesseractPSM sets the page segmentation mode, which controls how
// Tesseract splits the page into regions before recognition.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}

// WithTesseractWhitelist restricts recognition to the given characters.
func WithTesseractWhitelist(chars string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_char_whitelist"] = chars
	}
}
