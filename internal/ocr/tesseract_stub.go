//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Tesseract is a stub recognizer that returns errors for all operations.
type Tesseract struct{}

// NewTesseract returns an error indicating OCR support is not enabled.
func NewTesseract(Config) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Available reports whether OCR support was compiled in.
func Available() bool { return false }

// Version returns an empty string when OCR support is not compiled in.
func Version() string { return "" }

// Close is a no-op for the stub recognizer.
// It is safe to call on a nil recognizer.
func (t *Tesseract) Close() error {
	return nil
}

// Recognize returns an error indicating OCR support is not enabled.
func (t *Tesseract) Recognize(context.Context, image.Image) (string, float64, error) {
	return "", 0, ErrOCRNotEnabled
}
