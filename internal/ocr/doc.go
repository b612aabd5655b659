// Package ocr turns lettered sub-regions into text units.
//
// The Tesseract recognizer wraps gosseract and is only compiled with the
// "ocr" build tag, since it links against the native Tesseract library:
//
//	go build -tags ocr ./...
//
// Without the tag NewTesseract returns ErrOCRNotEnabled and callers fall back
// to pre-computed text (Static) or skip recognition entirely.
package ocr
