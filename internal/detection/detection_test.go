package detection_test

import (
	"image"
	"testing"

	"motioncomic/internal/detection"
	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
	"motioncomic/internal/testsupport"
)

func collect(d detection.Detector, page scene.Page) []scene.PanelRegion {
	var out []scene.PanelRegion
	for region := range d.Detect(page) {
		out = append(out, region)
	}
	return out
}

// =============================================================================
// GutterDetector
// =============================================================================

func TestGutterDetectorFindsGridPanels(t *testing.T) {
	page := testsupport.GridPage(2, 400, 600, 2, 2)
	got := collect(detection.NewGutterDetector(), page)

	want := testsupport.GridBoxes(400, 600, 2, 2)
	if len(got) != len(want) {
		t.Fatalf("unexpected candidate count: got %d want %d", len(got), len(want))
	}
	for i, region := range got {
		if region.Box != want[i] {
			t.Errorf("candidate %d box = %+v, want %+v", i, region.Box, want[i])
		}
		if region.Status != scene.StatusPending || region.Order != -1 {
			t.Errorf("candidate %d should be pending and unordered, got %s order %d", i, region.Status, region.Order)
		}
		if region.PageIndex != 2 {
			t.Errorf("candidate %d page = %d, want 2", i, region.PageIndex)
		}
		if region.Confidence < 0.5 || region.Confidence > 1 {
			t.Errorf("candidate %d confidence %v outside [0.5,1]", i, region.Confidence)
		}
	}
	if got[0].ID != "p002-r00" || got[3].ID != "p002-r03" {
		t.Errorf("unexpected ids: %s .. %s", got[0].ID, got[3].ID)
	}
}

func TestGutterDetectorSplashAndTier(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 300, 400))
	testsupport.Fill(img, img.Bounds(), 255)
	testsupport.DrawPanel(img, image.Rect(10, 10, 290, 190))
	testsupport.DrawPanel(img, image.Rect(10, 210, 140, 390))
	testsupport.DrawPanel(img, image.Rect(160, 210, 290, 390))

	got := collect(detection.NewGutterDetector(), testsupport.PageFromImage(0, img))
	if len(got) != 3 {
		t.Fatalf("unexpected candidate count: got %d want 3", len(got))
	}
	if got[0].Box != geometry.NewBox(10, 10, 280, 180) {
		t.Errorf("splash box = %+v", got[0].Box)
	}
}

func TestGutterDetectorFullBleedYieldsNothing(t *testing.T) {
	page := testsupport.FilledPage(0, 200, 300, 40)
	if got := collect(detection.NewGutterDetector(), page); len(got) != 0 {
		t.Fatalf("expected no candidates for full-bleed art, got %d", len(got))
	}
}

func TestGutterDetectorDropsSpecks(t *testing.T) {
	page := testsupport.GridPage(0, 400, 600, 1, 1)
	img := page.Image.(*image.Gray)
	testsupport.Fill(img, image.Rect(2, 2, 5, 5), 0)

	got := collect(detection.NewGutterDetector(), page)
	if len(got) != 1 {
		t.Fatalf("unexpected candidate count: got %d want 1", len(got))
	}
}

func TestGutterDetectorNilImage(t *testing.T) {
	if got := collect(detection.NewGutterDetector(), scene.Page{Width: 10, Height: 10}); len(got) != 0 {
		t.Fatalf("expected no candidates without an image, got %d", len(got))
	}
}

// =============================================================================
// Fallback and static detectors
// =============================================================================

func TestWithFallbackYieldsSyntheticPanel(t *testing.T) {
	page := testsupport.FilledPage(5, 200, 300, 40)
	got := collect(detection.WithFallback(detection.NewGutterDetector()), page)
	if len(got) != 1 {
		t.Fatalf("unexpected candidate count: got %d want 1", len(got))
	}
	region := got[0]
	if !region.Synthetic || region.Confidence != 0 {
		t.Fatalf("expected synthetic zero-confidence panel, got %+v", region)
	}
	if region.Box != page.Bounds() {
		t.Fatalf("synthetic box = %+v, want full page %+v", region.Box, page.Bounds())
	}
}

func TestWithFallbackPassesThrough(t *testing.T) {
	page := testsupport.GridPage(0, 400, 600, 2, 1)
	got := collect(detection.WithFallback(detection.NewGutterDetector()), page)
	if len(got) != 2 {
		t.Fatalf("unexpected candidate count: got %d want 2", len(got))
	}
	for _, region := range got {
		if region.Synthetic {
			t.Fatalf("unexpected synthetic region %s", region.ID)
		}
	}
}

func TestStaticDetectorClampsAndStops(t *testing.T) {
	page := scene.Page{Index: 1, Width: 100, Height: 100}
	d := detection.StaticDetector{Pages: map[int][]detection.Candidate{
		1: {
			{Box: geometry.NewBox(-10, 0, 60, 50), Confidence: 1.4},
			{Box: geometry.NewBox(50, 50, 50, 50), Confidence: 0.5},
		},
	}}

	got := collect(d, page)
	if len(got) != 2 {
		t.Fatalf("unexpected candidate count: got %d want 2", len(got))
	}
	if got[0].Box != geometry.NewBox(0, 0, 50, 50) {
		t.Errorf("clamped box = %+v", got[0].Box)
	}
	if got[0].Confidence != 1 {
		t.Errorf("confidence should clamp to 1, got %v", got[0].Confidence)
	}

	n := 0
	for range d.Detect(page) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iteration should stop after break, got %d", n)
	}

	if got := collect(d, scene.Page{Index: 9, Width: 10, Height: 10}); len(got) != 0 {
		t.Fatalf("expected no candidates for unknown page, got %d", len(got))
	}
}
