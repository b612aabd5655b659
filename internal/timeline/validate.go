package timeline

import (
	"cmp"
	"slices"

	"motioncomic/internal/scene"
)

// Validate checks the invariants every timeline must hold: non-negative
// times, pairwise disjoint events per track, and visual starts that never
// decrease in backbone order.
func Validate(tl *Timeline) error {
	for _, ev := range tl.events {
		if ev.Start < 0 || ev.Duration < 0 {
			return integrity("validate", "event %s has negative timing (start %v, duration %v)", ev.ID, ev.Start, ev.Duration)
		}
	}

	for _, track := range Tracks() {
		var events []Event
		for ev := range tl.Track(track) {
			events = append(events, ev)
		}
		slices.SortStableFunc(events, func(a, b Event) int {
			if c := cmp.Compare(a.Start, b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.End(), b.End())
		})
		for i := 1; i < len(events); i++ {
			if events[i].Start < events[i-1].End() {
				return integrity("validate", "%s events %s and %s overlap", track, events[i-1].ID, events[i].ID)
			}
		}
	}

	var last Event
	for i, block := range tl.blocks {
		visual := tl.events[block[0]]
		if i > 0 && visual.Start < last.Start {
			return integrity("validate", "panel %s starts at %v before panel %s at %v", visual.Panel, visual.Start, last.Panel, last.Start)
		}
		last = visual
	}
	return nil
}

// ValidateAgainst additionally checks that tl covers panels exactly: one
// visual event per panel, one voice event per dialogue line and one sfx
// event per sound cue, with nothing extra.
func ValidateAgainst(tl *Timeline, panels []scene.PanelScene) error {
	if err := Validate(tl); err != nil {
		return err
	}
	want := 0
	for _, ps := range panels {
		if _, ok := tl.Event(VisualID(ps.Panel.ID)); !ok {
			return integrity("validate", "panel %s has no visual event", ps.Panel.ID)
		}
		for _, line := range ps.Lines {
			if _, ok := tl.Event(VoiceID(line.ID)); !ok {
				return integrity("validate", "dialogue line %s has no voice event", line.ID)
			}
		}
		for _, cue := range ps.Cues {
			if _, ok := tl.Event(SFXID(cue.ID)); !ok {
				return integrity("validate", "sound cue %s has no sfx event", cue.ID)
			}
		}
		want += 1 + len(ps.Lines) + len(ps.Cues)
	}
	if tl.Len() != want {
		return integrity("validate", "timeline has %d events, input accounts for %d", tl.Len(), want)
	}
	return nil
}
