package classify_test

import (
	"image"
	"testing"

	"motioncomic/internal/classify"
	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
	"motioncomic/internal/testsupport"
)

func acceptedPanel(page scene.Page, box geometry.Box) scene.PanelRegion {
	panel := scene.NewCandidate(page.Index, 0, box, 1)
	panel.Status = scene.StatusAccepted
	panel.Order = 0
	return panel
}

// letteredPage draws one panel holding a caption box, a balloon and a row
// of sound-effect glyphs.
func letteredPage(withTail bool) (scene.Page, scene.PanelRegion) {
	img := image.NewGray(image.Rect(0, 0, 400, 300))
	testsupport.DrawPanel(img, img.Bounds())

	// caption
	testsupport.Fill(img, image.Rect(250, 20, 380, 60), 255)
	testsupport.Fill(img, image.Rect(260, 35, 370, 45), 0)

	// balloon
	testsupport.FillEllipse(img, image.Rect(40, 30, 200, 110), 255)
	if withTail {
		testsupport.Fill(img, image.Rect(70, 100, 80, 130), 255)
	}
	testsupport.Fill(img, image.Rect(80, 60, 160, 70), 0)
	testsupport.Fill(img, image.Rect(90, 80, 150, 88), 0)

	// sound effect
	for x := 60; x < 220; x += 40 {
		testsupport.Fill(img, image.Rect(x, 200, x+30, 260), 0)
	}

	page := testsupport.PageFromImage(0, img)
	return page, acceptedPanel(page, page.Bounds())
}

func TestHeuristicClassifierKinds(t *testing.T) {
	page, panel := letteredPage(true)
	subs := classify.NewHeuristicClassifier().Classify(page, panel)

	want := []scene.Kind{scene.KindCaption, scene.KindDialogue, scene.KindSFX}
	if len(subs) != len(want) {
		t.Fatalf("unexpected sub-region count: got %d want %d (%+v)", len(subs), len(want), subs)
	}
	for i, sub := range subs {
		if sub.Kind != want[i] {
			t.Errorf("sub-region %d kind = %s, want %s", i, sub.Kind, want[i])
		}
		if sub.ID != panel.ID.SubRegionID(i) || sub.Panel != panel.ID {
			t.Errorf("sub-region %d ids = %s/%s", i, sub.ID, sub.Panel)
		}
		if !panel.Effective.ContainsBox(sub.Box) {
			t.Errorf("sub-region %d box %+v escapes panel", i, sub.Box)
		}
		if sub.Confidence <= 0 || sub.Confidence > 1 {
			t.Errorf("sub-region %d confidence %v outside (0,1]", i, sub.Confidence)
		}
	}

	caption := subs[0].Box.Center()
	if caption.X < 250 || caption.X > 380 || caption.Y < 20 || caption.Y > 60 {
		t.Errorf("caption center %+v outside drawn caption", caption)
	}
	if subs[1].Confidence != 0.9 {
		t.Errorf("balloon with tail confidence = %v, want 0.9", subs[1].Confidence)
	}
	sfx := subs[2].Box
	if sfx.Left() > 62 || sfx.Right() < 208 {
		t.Errorf("sound effect box %+v should span all glyphs", sfx)
	}
}

func TestHeuristicClassifierBalloonWithoutTail(t *testing.T) {
	page, panel := letteredPage(false)
	subs := classify.NewHeuristicClassifier().Classify(page, panel)
	for _, sub := range subs {
		if sub.Kind == scene.KindDialogue && sub.Confidence != 0.7 {
			t.Fatalf("balloon without tail confidence = %v, want 0.7", sub.Confidence)
		}
	}
}

func TestHeuristicClassifierPureArtwork(t *testing.T) {
	page := testsupport.GridPage(0, 400, 600, 2, 2)
	boxes := testsupport.GridBoxes(400, 600, 2, 2)
	if subs := classify.NewHeuristicClassifier().Classify(page, acceptedPanel(page, boxes[0])); len(subs) != 0 {
		t.Fatalf("expected no sub-regions for plain artwork, got %+v", subs)
	}
}

func TestHeuristicClassifierIsDeterministic(t *testing.T) {
	page, panel := letteredPage(true)
	c := classify.NewHeuristicClassifier()
	first := c.Classify(page, panel)
	second := c.Classify(page, panel)
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStaticClassifier(t *testing.T) {
	page := scene.Page{Index: 0, Width: 100, Height: 100}
	panel := acceptedPanel(page, geometry.NewBox(0, 0, 50, 50))
	s := classify.StaticClassifier{Panels: map[scene.PanelID][]classify.Region{
		panel.ID: {
			{Box: geometry.NewBox(30, 30, 40, 10), Kind: scene.KindCaption, Confidence: 0.8},
			{Box: geometry.NewBox(5, 5, 10, 10), Kind: scene.KindDialogue, Confidence: 0.6},
			{Box: geometry.NewBox(80, 80, 10, 10), Kind: scene.KindSFX, Confidence: 0.6},
		},
	}}

	subs := s.Classify(page, panel)
	if len(subs) != 2 {
		t.Fatalf("unexpected sub-region count: got %d want 2", len(subs))
	}
	if subs[0].Kind != scene.KindDialogue || subs[0].ID != "p000-r00-s00" {
		t.Errorf("unexpected first sub-region: %+v", subs[0])
	}
	if subs[1].Box != geometry.NewBox(30, 30, 20, 10) {
		t.Errorf("second sub-region should be clipped, got %+v", subs[1].Box)
	}
}

func TestRefineKind(t *testing.T) {
	tests := []struct {
		kind scene.Kind
		text string
		want scene.Kind
	}{
		{scene.KindDialogue, "BOOM!", scene.KindSFX},
		{scene.KindCaption, "KRAK", scene.KindSFX},
		{scene.KindDialogue, "Hello there", scene.KindDialogue},
		{scene.KindDialogue, "", scene.KindDialogue},
		{scene.KindSFX, "whatever", scene.KindSFX},
		{scene.KindArtwork, "BOOM", scene.KindArtwork},
	}
	for _, tt := range tests {
		if got := classify.RefineKind(tt.kind, tt.text); got != tt.want {
			t.Errorf("RefineKind(%s, %q) = %s, want %s", tt.kind, tt.text, got, tt.want)
		}
	}
}
