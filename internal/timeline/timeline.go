package timeline

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// FormatVersion is the serialization version written by Marshal.
const FormatVersion = 1

// Settings are the scheduling parameters re-flow needs besides the events
// themselves.
type Settings struct {
	InterLineGap    time.Duration `json:"inter_line_gap_ns"`
	InterPanelPause time.Duration `json:"inter_panel_pause_ns"`
	DurationQuantum time.Duration `json:"duration_quantum_ns,omitempty"`
}

// Timeline is an immutable, id-indexed arena of events in backbone order.
// Methods return copies so snapshots can be shared across goroutines.
type Timeline struct {
	archive  string
	settings Settings
	events   []Event
	index    map[EventID]int
	// blocks[i] is the half-open event range of the i-th panel.
	blocks [][2]int
}

// newTimeline indexes events and verifies the backbone layout: one
// contiguous block per panel, opened by its visual event, with unique ids.
func newTimeline(archive string, settings Settings, events []Event) (*Timeline, error) {
	tl := &Timeline{
		archive:  archive,
		settings: settings,
		events:   events,
		index:    make(map[EventID]int, len(events)),
	}
	seenPanels := make(map[scene.PanelID]bool)
	for i, ev := range events {
		if _, dup := tl.index[ev.ID]; dup {
			return nil, integrity("index", "duplicate event id %s", ev.ID)
		}
		tl.index[ev.ID] = i

		if ev.Track == TrackVisual {
			if seenPanels[ev.Panel] {
				return nil, integrity("index", "panel %s has more than one visual event", ev.Panel)
			}
			seenPanels[ev.Panel] = true
			tl.blocks = append(tl.blocks, [2]int{i, i + 1})
			continue
		}
		n := len(tl.blocks)
		if n == 0 || events[tl.blocks[n-1][0]].Panel != ev.Panel {
			return nil, integrity("index", "event %s is not inside the block of panel %s", ev.ID, ev.Panel)
		}
		tl.blocks[n-1][1] = i + 1
	}
	return tl, nil
}

func (t *Timeline) clone() *Timeline {
	return &Timeline{
		archive:  t.archive,
		settings: t.settings,
		events:   slices.Clone(t.events),
		index:    t.index,
		blocks:   t.blocks,
	}
}

// Archive returns the identifier of the archive the timeline was built from.
func (t *Timeline) Archive() string { return t.archive }

// Settings returns the scheduling parameters.
func (t *Timeline) Settings() Settings { return t.settings }

// Len returns the number of events.
func (t *Timeline) Len() int { return len(t.events) }

// Events returns a copy of all events in backbone order.
func (t *Timeline) Events() []Event { return slices.Clone(t.events) }

// All iterates events in backbone order.
func (t *Timeline) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range t.events {
			if !yield(ev) {
				return
			}
		}
	}
}

// Track iterates the events of one track in backbone order.
func (t *Timeline) Track(track Track) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range t.events {
			if ev.Track == track && !yield(ev) {
				return
			}
		}
	}
}

// Event looks up an event by id.
func (t *Timeline) Event(id EventID) (Event, bool) {
	i, ok := t.index[id]
	if !ok {
		return Event{}, false
	}
	return t.events[i], true
}

// Panels returns the panel ids in backbone order.
func (t *Timeline) Panels() []scene.PanelID {
	out := make([]scene.PanelID, len(t.blocks))
	for i, b := range t.blocks {
		out[i] = t.events[b[0]].Panel
	}
	return out
}

// Duration returns the maximum end time across all tracks.
func (t *Timeline) Duration() time.Duration {
	var end time.Duration
	for _, ev := range t.events {
		end = max(end, ev.End())
	}
	return end
}

func integrity(op, format string, args ...any) error {
	return services.Wrap(services.ErrStructuralIntegrity, "timeline", op, fmt.Sprintf(format, args...), nil)
}
