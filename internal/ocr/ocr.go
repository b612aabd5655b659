package ocr

import (
	"context"
	"errors"
	"image"

	"golang.org/x/text/language"

	langs "motioncomic/internal/language"
	"motioncomic/internal/raster"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/textutil"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer reads the text in a cropped image. Confidence is in [0,1].
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (text string, confidence float64, err error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, float64, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, float64, error) {
	return f(ctx, img)
}

// Extractor produces the text unit of one sub-region. On recognition
// failure the returned unit still carries the sub-region identity with empty
// text and zero confidence, alongside an error marked ErrRecognition.
type Extractor interface {
	Extract(ctx context.Context, page scene.Page, sub scene.SubRegion) (scene.TextUnit, error)
}

// Config selects the recognition language and layout mode.
type Config struct {
	// Language is a Tesseract code ("eng", "jpn") or BCP 47 tag.
	Language string
	// PageSegMode is the Tesseract page segmentation mode; 6 treats the
	// crop as a single uniform block of text.
	PageSegMode int
	// Padding grows each crop so lettering touching the balloon edge
	// survives.
	Padding float64
	// Binarize cleans crops with a local threshold and speck removal
	// before recognition.
	Binarize bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Language:    "eng",
		PageSegMode: 6,
		Padding:     2,
		Binarize:    true,
	}
}

const (
	binarizeBlock  = 11
	binarizeOffset = 7
)

// Prepare returns the image handed to the recognition engine for a crop.
func Prepare(img image.Image, config Config) image.Image {
	if !config.Binarize {
		return img
	}
	return raster.Binarize(img, binarizeBlock, binarizeOffset)
}

// Engine is the Extractor backed by a Recognizer.
type Engine struct {
	recognizer Recognizer
	config     Config
	hint       language.Tag
}

// NewEngine creates an extractor that crops sub-regions and hands them to r.
func NewEngine(r Recognizer, config Config) *Engine {
	return &Engine{
		recognizer: r,
		config:     config,
		hint:       langs.Parse(config.Language),
	}
}

// Extract implements Extractor. Artwork sub-regions are never sent to the
// recognizer.
func (e *Engine) Extract(ctx context.Context, page scene.Page, sub scene.SubRegion) (scene.TextUnit, error) {
	unit := emptyUnit(sub, e.hint)
	if !sub.Kind.HasText() {
		return unit, nil
	}
	if err := ctx.Err(); err != nil {
		return unit, err
	}
	if page.Image == nil {
		return unit, services.Wrap(services.ErrRecognition, "ocr", "crop", string(sub.ID)+": page has no raster", nil)
	}

	box := sub.Box.Expand(e.config.Padding).Clamp(page.Bounds())
	if box.IsEmpty() {
		return unit, services.Wrap(services.ErrRecognition, "ocr", "crop", string(sub.ID)+": empty crop", nil)
	}
	crop := raster.Crop(page.Image, box.Rect().Add(page.Image.Bounds().Min))

	text, confidence, err := e.recognizer.Recognize(ctx, crop)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return unit, err
		}
		return unit, services.Wrap(services.ErrRecognition, "ocr", "recognize", string(sub.ID), err)
	}
	return fillUnit(unit, text, confidence, e.hint), nil
}

// Static serves pre-computed text keyed by sub-region, for external OCR
// output and tests. Sub-regions without an entry yield empty text.
type Static struct {
	Texts    map[scene.SubRegionID]string
	Errors   map[scene.SubRegionID]error
	Language language.Tag
}

// Extract implements Extractor.
func (s Static) Extract(ctx context.Context, _ scene.Page, sub scene.SubRegion) (scene.TextUnit, error) {
	unit := emptyUnit(sub, s.Language)
	if !sub.Kind.HasText() {
		return unit, nil
	}
	if err := ctx.Err(); err != nil {
		return unit, err
	}
	if err, ok := s.Errors[sub.ID]; ok {
		return unit, services.Wrap(services.ErrRecognition, "ocr", "recognize", string(sub.ID), err)
	}
	text, ok := s.Texts[sub.ID]
	if !ok {
		return unit, nil
	}
	return fillUnit(unit, text, 1, s.Language), nil
}

func emptyUnit(sub scene.SubRegion, lang language.Tag) scene.TextUnit {
	return scene.TextUnit{
		ID:        sub.ID.TextUnitID(),
		SubRegion: sub.ID,
		Panel:     sub.Panel,
		Kind:      sub.Kind,
		Box:       sub.Box,
		Language:  lang,
	}
}

func fillUnit(unit scene.TextUnit, text string, confidence float64, hint language.Tag) scene.TextUnit {
	unit.Text = textutil.Normalize(text)
	if unit.Text == "" {
		return unit
	}
	unit.Confidence = min(1, max(0, confidence))
	unit.Language = langs.Guess(unit.Text, hint)
	return unit
}
