package dialogue

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"

	"motioncomic/internal/classify"
	"motioncomic/internal/geometry"
	"motioncomic/internal/readingorder"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/textutil"
)

// SpeakerSignal resolves the speaker of a text unit from an external
// character-association source.
type SpeakerSignal interface {
	SpeakerFor(panel scene.PanelID, unit scene.TextUnit) (scene.SpeakerID, bool)
}

// SpeakerTable is a SpeakerSignal backed by a fixed lookup table.
type SpeakerTable map[scene.TextUnitID]scene.SpeakerID

func (t SpeakerTable) SpeakerFor(_ scene.PanelID, unit scene.TextUnit) (scene.SpeakerID, bool) {
	id, ok := t[unit.ID]
	return id, ok && id != scene.UnknownSpeaker
}

// Config controls merging, ordering and sound cue timing.
type Config struct {
	Direction readingorder.Direction
	// RowTolerance is the share of the panel height within which two
	// balloons count as the same row.
	RowTolerance float64
	// MergeGap is the largest vertical gap, as a multiple of the shorter
	// unit height, that still joins two units into one line.
	MergeGap float64
	// MinMergeOverlap is the share of the narrower unit width two units
	// must overlap horizontally to merge.
	MinMergeOverlap float64
	SFXDuration     time.Duration
	// ZeroDurationEmptySFX gives sound cues without recognized text a
	// zero duration instead of SFXDuration.
	ZeroDurationEmptySFX bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Direction:            readingorder.LeftToRight,
		RowTolerance:         0.08,
		MergeGap:             0.6,
		MinMergeOverlap:      0.5,
		SFXDuration:          time.Second,
		ZeroDurationEmptySFX: true,
	}
}

// Associator builds PanelScenes. It holds no per-panel state and is safe for
// concurrent use.
type Associator struct {
	config   Config
	speakers SpeakerSignal
}

// NewAssociator creates an associator with default configuration.
func NewAssociator() *Associator {
	return NewAssociatorWithConfig(DefaultConfig())
}

// NewAssociatorWithConfig creates an associator with custom configuration.
func NewAssociatorWithConfig(config Config) *Associator {
	return &Associator{config: config}
}

// WithSpeakers returns a copy of the associator that consults signal for
// speaker ids.
func (a *Associator) WithSpeakers(signal SpeakerSignal) *Associator {
	clone := *a
	clone.speakers = signal
	return &clone
}

// Associate binds the text units of an accepted panel to dialogue lines and
// sound cues. Every lettered sub-region yields exactly one line or cue; a
// missing text unit is treated as empty text. Units that belong to another
// panel, name an unknown sub-region, or repeat are structural errors.
func (a *Associator) Associate(panel scene.PanelRegion, pageArea float64, subs []scene.SubRegion, units []scene.TextUnit) (scene.PanelScene, error) {
	out := scene.PanelScene{
		Panel:      panel,
		PageArea:   pageArea,
		SubRegions: slices.Clone(subs),
	}

	index := make(map[scene.SubRegionID]int, len(subs))
	for i, sub := range subs {
		if sub.Panel != panel.ID {
			return out, integrity(panel.ID, "sub-region %s belongs to panel %s", sub.ID, sub.Panel)
		}
		if _, dup := index[sub.ID]; dup {
			return out, integrity(panel.ID, "duplicate sub-region %s", sub.ID)
		}
		index[sub.ID] = i
	}

	bySub := make(map[scene.SubRegionID]scene.TextUnit, len(units))
	for _, unit := range units {
		if unit.Panel != panel.ID {
			return out, integrity(panel.ID, "text unit %s belongs to panel %s", unit.ID, unit.Panel)
		}
		if _, ok := index[unit.SubRegion]; !ok {
			return out, integrity(panel.ID, "text unit %s references unknown sub-region %s", unit.ID, unit.SubRegion)
		}
		if _, dup := bySub[unit.SubRegion]; dup {
			return out, integrity(panel.ID, "sub-region %s has more than one text unit", unit.SubRegion)
		}
		bySub[unit.SubRegion] = unit
	}

	var spoken, sounds []scene.TextUnit
	for i, sub := range out.SubRegions {
		if !sub.Kind.HasText() {
			continue
		}
		unit, ok := bySub[sub.ID]
		if !ok {
			unit = scene.TextUnit{ID: sub.ID.TextUnitID(), SubRegion: sub.ID, Panel: panel.ID, Kind: sub.Kind, Box: sub.Box}
		}
		unit.Kind = classify.RefineKind(sub.Kind, unit.Text)
		out.SubRegions[i].Kind = unit.Kind

		switch unit.Kind {
		case scene.KindDialogue, scene.KindCaption:
			spoken = append(spoken, unit)
		case scene.KindSFX:
			sounds = append(sounds, unit)
		case scene.KindArtwork:
		}
	}

	tol := a.config.RowTolerance * panel.Effective.Height
	for seq, group := range a.order(a.merge(spoken), tol) {
		out.Lines = append(out.Lines, a.line(panel.ID, seq, group))
	}

	soundGroups := make([][]scene.TextUnit, len(sounds))
	for i, unit := range sounds {
		soundGroups[i] = []scene.TextUnit{unit}
	}
	for n, group := range a.order(soundGroups, tol) {
		out.Cues = append(out.Cues, a.cue(panel.ID, n, group[0]))
	}
	return out, nil
}

// merge joins vertically contiguous units of the same kind. The result is
// independent of input order; each group is sorted top to bottom.
func (a *Associator) merge(units []scene.TextUnit) [][]scene.TextUnit {
	sorted := slices.Clone(units)
	slices.SortFunc(sorted, func(x, y scene.TextUnit) int {
		if c := cmp.Compare(x.Box.Top(), y.Box.Top()); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Box.Left(), y.Box.Left()); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	parent := make([]int, len(sorted))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if a.contiguous(sorted[i], sorted[j]) {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[max(ri, rj)] = min(ri, rj)
				}
			}
		}
	}

	groups := make(map[int][]scene.TextUnit)
	var roots []int
	for i, unit := range sorted {
		root := find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], unit)
	}
	out := make([][]scene.TextUnit, len(roots))
	for i, root := range roots {
		out[i] = groups[root]
	}
	return out
}

// contiguous reports whether lower continues upper as a multi-line balloon.
func (a *Associator) contiguous(upper, lower scene.TextUnit) bool {
	if upper.Kind != lower.Kind {
		return false
	}
	if lower.Box.Center().Y <= upper.Box.Center().Y {
		return false
	}
	narrow := math.Min(upper.Box.Width, lower.Box.Width)
	if narrow <= 0 || upper.Box.HorizontalOverlap(lower.Box) < a.config.MinMergeOverlap*narrow {
		return false
	}
	lineHeight := math.Min(upper.Box.Height, lower.Box.Height)
	gap := lower.Box.Top() - upper.Box.Bottom()
	return gap <= a.config.MergeGap*lineHeight
}

// order sorts groups into reading order: rows by vertical center, then by
// horizontal position within a row.
func (a *Associator) order(groups [][]scene.TextUnit, tol float64) [][]scene.TextUnit {
	type entry struct {
		box   geometry.Box
		key   scene.TextUnitID
		units []scene.TextUnit
	}
	entries := make([]entry, len(groups))
	for i, g := range groups {
		boxes := make([]geometry.Box, len(g))
		for j, u := range g {
			boxes[j] = u.Box
		}
		entries[i] = entry{box: geometry.UnionAll(boxes), key: g[0].ID, units: g}
	}
	slices.SortFunc(entries, func(x, y entry) int {
		if c := cmp.Compare(x.box.Center().Y, y.box.Center().Y); c != 0 {
			return c
		}
		return cmp.Compare(x.key, y.key)
	})

	var rows [][]entry
	var sumY float64
	for _, e := range entries {
		cy := e.box.Center().Y
		if n := len(rows); n > 0 && math.Abs(cy-sumY/float64(len(rows[n-1]))) <= tol {
			rows[n-1] = append(rows[n-1], e)
			sumY += cy
			continue
		}
		rows = append(rows, []entry{e})
		sumY = cy
	}

	out := make([][]scene.TextUnit, 0, len(groups))
	for _, row := range rows {
		slices.SortStableFunc(row, func(x, y entry) int {
			if c := readingorder.CompareInRow(a.config.Direction, x.box, y.box); c != 0 {
				return c
			}
			return cmp.Compare(x.key, y.key)
		})
		for _, e := range row {
			out = append(out, e.units)
		}
	}
	return out
}

func (a *Associator) line(panel scene.PanelID, seq int, group []scene.TextUnit) scene.DialogueLine {
	line := scene.DialogueLine{
		ID:       panel.LineID(seq),
		Panel:    panel,
		Kind:     group[0].Kind,
		Speaker:  scene.UnknownSpeaker,
		Sequence: seq,
		Language: language.Und,
	}
	texts := make([]string, 0, len(group))
	for _, unit := range group {
		line.Units = append(line.Units, unit.ID)
		if unit.Text != "" {
			texts = append(texts, unit.Text)
		}
		if line.Language == language.Und && unit.Text != "" {
			line.Language = unit.Language
		}
		if line.Speaker == scene.UnknownSpeaker && a.speakers != nil {
			if id, ok := a.speakers.SpeakerFor(panel, unit); ok {
				line.Speaker = id
			}
		}
	}
	line.Text = textutil.Normalize(strings.Join(texts, " "))
	line.Emphasis = Emphasis(line.Kind, line.Text)
	return line
}

func (a *Associator) cue(panel scene.PanelID, n int, unit scene.TextUnit) scene.SFXCue {
	cue := scene.SFXCue{
		ID:        panel.CueID(n),
		Panel:     panel,
		SubRegion: unit.SubRegion,
		Text:      unit.Text,
		Duration:  a.config.SFXDuration,
	}
	if cue.Text == "" && a.config.ZeroDurationEmptySFX {
		cue.Duration = 0
	}
	return cue
}

func integrity(panel scene.PanelID, format string, args ...any) error {
	return services.Wrap(services.ErrStructuralIntegrity, "dialogue", string(panel), fmt.Sprintf(format, args...), nil)
}
