// Package ocr recognizes text in scanned page images.
//
// The real implementation wraps the Tesseract engine via gosseract and is
// compiled only with the "ocr" build tag:
//
//	go build -tags ocr
//
// Without the tag every operation returns ErrOCRNotEnabled, so callers can
// record the missing capability and continue. Tesseract must be installed:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR support was not compiled in
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Config configures recognition
type Config struct {
	// Languages are Tesseract language codes (default: eng)
	Languages []string
}

func (c Config) languages() []string {
	if len(c.Languages) == 0 {
		return []string{"eng"}
	}
	return c.Languages
}
