package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"golang.org/x/text/language"

	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/testsupport"
)

func subRegion(kind scene.Kind) scene.SubRegion {
	panel := scene.NewPanelID(0, 0)
	return scene.SubRegion{
		ID:         panel.SubRegionID(0),
		Panel:      panel,
		Box:        geometry.NewBox(10, 10, 40, 20),
		Kind:       kind,
		Confidence: 0.8,
	}
}

// =============================================================================
// Engine Tests
// =============================================================================

func TestEngineNormalizesRecognizedText(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	var cropped image.Rectangle
	r := RecognizerFunc(func(_ context.Context, img image.Image) (string, float64, error) {
		cropped = img.Bounds()
		return "  WHERE IS\nSHE?  ", 0.9, nil
	})

	unit, err := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindDialogue))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if unit.Text != "WHERE IS SHE?" {
		t.Fatalf("unexpected text: got %q want %q", unit.Text, "WHERE IS SHE?")
	}
	if unit.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: got %v want 0.9", unit.Confidence)
	}
	if unit.ID != "p000-r00-s00-t" || unit.SubRegion != "p000-r00-s00" || unit.Panel != "p000-r00" {
		t.Fatalf("unexpected identity: %+v", unit)
	}
	if unit.Language != language.English {
		t.Fatalf("unexpected language: got %v want en", unit.Language)
	}
	// 40x20 box padded by 2 on every side.
	if cropped.Dx() != 44 || cropped.Dy() != 24 {
		t.Fatalf("unexpected crop size: got %v", cropped)
	}
}

func TestEngineNeverSendsArtwork(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	calls := 0
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		calls++
		return "text", 1, nil
	})

	unit, err := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindArtwork))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("recognizer called %d times for artwork", calls)
	}
	if unit.Text != "" || unit.Confidence != 0 {
		t.Fatalf("expected empty artwork unit, got %+v", unit)
	}
}

func TestEngineRecognitionFailureYieldsEmptyUnit(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		return "garbage", 0.4, errors.New("engine crashed")
	})

	unit, err := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindCaption))
	if !errors.Is(err, services.ErrRecognition) {
		t.Fatalf("expected ErrRecognition, got %v", err)
	}
	if services.Classify(err) != services.CategoryCollaborator {
		t.Fatalf("unexpected category: got %s", services.Classify(err))
	}
	if unit.Text != "" || unit.Confidence != 0 {
		t.Fatalf("expected empty unit on failure, got %+v", unit)
	}
	if unit.Kind != scene.KindCaption || unit.SubRegion != "p000-r00-s00" {
		t.Fatalf("failed unit lost identity: %+v", unit)
	}
}

func TestEngineCanceledContext(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		t.Fatal("recognizer should not run after cancellation")
		return "", 0, nil
	})

	_, err := NewEngine(r, DefaultConfig()).Extract(ctx, page, subRegion(scene.KindDialogue))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrRecognition) {
		t.Fatal("cancellation must not be reported as a recognition failure")
	}
}

func TestEngineMissingRaster(t *testing.T) {
	page := scene.Page{Index: 0, Width: 100, Height: 100}
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		return "x", 1, nil
	})
	if _, err := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindDialogue)); !errors.Is(err, services.ErrRecognition) {
		t.Fatalf("expected ErrRecognition for missing raster, got %v", err)
	}
}

func TestEngineGuessesScriptLanguage(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		return "どこにいるの", 0.7, nil
	})
	unit, err := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindDialogue))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if unit.Language != language.Japanese {
		t.Fatalf("unexpected language: got %v want ja", unit.Language)
	}
}

func TestEngineClampsConfidence(t *testing.T) {
	page := testsupport.FilledPage(0, 100, 100, 255)
	r := RecognizerFunc(func(context.Context, image.Image) (string, float64, error) {
		return "hi", 1.7, nil
	})
	unit, _ := NewEngine(r, DefaultConfig()).Extract(context.Background(), page, subRegion(scene.KindDialogue))
	if unit.Confidence != 1 {
		t.Fatalf("unexpected confidence: got %v want 1", unit.Confidence)
	}
}

// =============================================================================
// Static Tests
// =============================================================================

func TestStaticExtractor(t *testing.T) {
	sub := subRegion(scene.KindDialogue)
	missing := sub
	missing.ID = sub.Panel.SubRegionID(1)
	broken := sub
	broken.ID = sub.Panel.SubRegionID(2)

	s := Static{
		Texts:    map[scene.SubRegionID]string{sub.ID: "Hello   there"},
		Errors:   map[scene.SubRegionID]error{broken.ID: errors.New("timeout")},
		Language: language.English,
	}

	unit, err := s.Extract(context.Background(), scene.Page{}, sub)
	if err != nil || unit.Text != "Hello there" || unit.Confidence != 1 {
		t.Fatalf("unexpected static unit: %+v err=%v", unit, err)
	}

	unit, err = s.Extract(context.Background(), scene.Page{}, missing)
	if err != nil || unit.Text != "" || unit.Confidence != 0 {
		t.Fatalf("unexpected unit for missing entry: %+v err=%v", unit, err)
	}

	if _, err := s.Extract(context.Background(), scene.Page{}, broken); !errors.Is(err, services.ErrRecognition) {
		t.Fatalf("expected ErrRecognition, got %v", err)
	}
}

// =============================================================================
// Preprocessing Tests
// =============================================================================

func TestPrepareBinarizesCrop(t *testing.T) {
	crop := image.NewGray(image.Rect(5, 5, 35, 25))
	for i := range crop.Pix {
		crop.Pix[i] = 200
	}
	for x := 10; x < 30; x++ {
		for y := 13; y < 16; y++ {
			crop.Pix[crop.PixOffset(x, y)] = 60
		}
	}

	out := Prepare(crop, DefaultConfig())
	if out.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Fatalf("unexpected bounds: %v", out.Bounds())
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("unexpected image type %T", out)
	}
	for i, v := range gray.Pix {
		if v != 0 && v != 0xff {
			t.Fatalf("pixel %d = %d, want black or white", i, v)
		}
	}
	if got := gray.GrayAt(15, 9).Y; got != 0 {
		t.Errorf("stroke pixel = %d, want 0", got)
	}
	if got := gray.GrayAt(2, 2).Y; got != 0xff {
		t.Errorf("background pixel = %d, want 255", got)
	}
}

func TestPrepareDisabledReturnsCrop(t *testing.T) {
	crop := image.NewGray(image.Rect(0, 0, 4, 4))
	cfg := DefaultConfig()
	cfg.Binarize = false
	if out := Prepare(crop, cfg); out != image.Image(crop) {
		t.Fatal("expected the crop unchanged")
	}
}
