package timeline

import (
	"math"
	"time"
)

// schedule assigns start times and visual durations to events, which must
// share t's layout, using the previous starts in t as the reference for
// locks. Voice and sfx events use their measured duration when present and
// their base otherwise; a visual event lasts at least as long as the voice
// and sfx events of its panel.
//
// Locked events keep their start; if the new schedule would need one later,
// the call fails. Every event whose previous start is at or after the
// earliest locked start is floored at that previous start.
func (t *Timeline) schedule(events []Event) error {
	floor := time.Duration(math.MaxInt64)
	for _, ev := range t.events {
		if ev.Locked {
			floor = min(floor, ev.Start)
		}
	}

	place := func(i int, computed time.Duration) (time.Duration, error) {
		prev := t.events[i].Start
		switch {
		case t.events[i].Locked:
			if computed > prev {
				return 0, integrity("reflow", "locked event %s would move from %v to %v", events[i].ID, prev, computed)
			}
			return prev, nil
		case prev >= floor:
			return max(computed, prev), nil
		default:
			return computed, nil
		}
	}

	var cursor time.Duration
	for _, block := range t.blocks {
		vi := block[0]
		start, err := place(vi, cursor)
		if err != nil {
			return err
		}
		events[vi].Start = start

		voiceEnd, sfxEnd := start, start
		voiceCursor, sfxCursor := start, start
		for i := vi + 1; i < block[1]; i++ {
			ev := &events[i]
			if !ev.Measured {
				ev.Duration = ev.Base
			}
			switch ev.Track {
			case TrackVoice:
				s, err := place(i, voiceCursor)
				if err != nil {
					return err
				}
				ev.Start = s
				voiceEnd = ev.End()
				voiceCursor = voiceEnd + t.settings.InterLineGap
			case TrackSFX:
				s, err := place(i, sfxCursor)
				if err != nil {
					return err
				}
				ev.Start = s
				sfxEnd = ev.End()
				sfxCursor = sfxEnd
			case TrackVisual:
				return integrity("schedule", "unexpected visual event %s inside panel block", ev.ID)
			}
		}

		visual := &events[vi]
		span := max(voiceEnd, sfxEnd) - start
		visual.Duration = max(visual.Base, span)
		if !visual.Measured {
			visual.Duration = quantize(visual.Duration, t.settings.DurationQuantum)
		}
		cursor = visual.End() + t.settings.InterPanelPause
	}
	return nil
}

// quantize rounds d up to a multiple of q.
func quantize(d, q time.Duration) time.Duration {
	if q <= 0 || d%q == 0 {
		return d
	}
	return (d/q + 1) * q
}
