package timeline

import (
	"fmt"
	"testing"
	"time"

	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
	"motioncomic/internal/speech"
)

const sec = time.Second

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// panel builds an accepted panel scene with one dialogue line per text.
func panel(page, order int, texts ...string) scene.PanelScene {
	region := scene.NewCandidate(page, order, geometry.NewBox(0, float64(order)*100, 100, 100), 0.9)
	region.Order = order
	region.Status = scene.StatusAccepted
	ps := scene.PanelScene{Panel: region, PageArea: 1000 * 1000}
	for i, text := range texts {
		ps.Lines = append(ps.Lines, scene.DialogueLine{
			ID:       region.ID.LineID(i),
			Panel:    region.ID,
			Text:     text,
			Kind:     scene.KindDialogue,
			Speaker:  scene.UnknownSpeaker,
			Sequence: i,
		})
	}
	return ps
}

func withCue(ps scene.PanelScene, text string, d time.Duration) scene.PanelScene {
	ps.Cues = append(ps.Cues, scene.SFXCue{
		ID:        ps.Panel.ID.CueID(len(ps.Cues)),
		Panel:     ps.Panel.ID,
		SubRegion: ps.Panel.ID.SubRegionID(len(ps.Cues)),
		Text:      text,
		Duration:  d,
	})
	return ps
}

// table estimates each text by lookup; unknown text takes zero time.
func table(entries map[string]time.Duration) speech.Estimator {
	return speech.Table(entries, nil)
}

func mustBuild(t *testing.T, cfg Config, est speech.Estimator, panels ...scene.PanelScene) *Timeline {
	t.Helper()
	tl, err := NewBuilder(cfg, est).Build("test.cbz", panels)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := ValidateAgainst(tl, panels); err != nil {
		t.Fatalf("built timeline is invalid: %v", err)
	}
	return tl
}

func mustEvent(t *testing.T, tl *Timeline, id EventID) Event {
	t.Helper()
	ev, ok := tl.Event(id)
	if !ok {
		t.Fatalf("event %s not found", id)
	}
	return ev
}

func starts(tl *Timeline, track Track) []time.Duration {
	var out []time.Duration
	for ev := range tl.Track(track) {
		out = append(out, ev.Start)
	}
	return out
}

func assertDurations(t *testing.T, label string, got, want []time.Duration) {
	t.Helper()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("unexpected %s: got %v want %v", label, got, want)
	}
}
