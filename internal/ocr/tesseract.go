//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	langs "motioncomic/internal/language"
	"motioncomic/internal/raster"
)

// Tesseract recognizes text with the native Tesseract engine. A gosseract
// client is not safe for concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	config Config
}

// NewTesseract creates a recognizer configured for the given language and
// page segmentation mode. Close it when done.
func NewTesseract(config Config) (*Tesseract, error) {
	client := gosseract.NewClient()
	code := langs.TesseractCode(langs.Parse(config.Language))
	if err := client.SetLanguage(code); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language %q: %w", code, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(config.PageSegMode)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page segmentation mode %d: %w", config.PageSegMode, err)
	}
	return &Tesseract{client: client, config: config}, nil
}

// Available reports whether OCR support was compiled in.
func Available() bool { return true }

// Version returns the linked Tesseract version.
func Version() string { return gosseract.Version() }

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

// Recognize implements Recognizer. Confidence is the mean word confidence
// reported by Tesseract, scaled to [0,1].
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	data, err := raster.EncodePNG(Prepare(img, t.config))
	if err != nil {
		return "", 0, fmt.Errorf("encode crop: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, nil
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return text, 0.5, nil
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return text, sum / float64(len(boxes)) / 100, nil
}
