package timeline

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"motioncomic/internal/scene"
	"motioncomic/internal/speech"
)

// AnimationStyle selects the camera effect of visual events.
type AnimationStyle string

const (
	StylePanAndScan AnimationStyle = "pan_and_scan"
	StyleKenBurns   AnimationStyle = "ken_burns"
	StyleStatic     AnimationStyle = "static"
	// StyleMixed alternates pan-and-scan and Ken Burns by global panel
	// index.
	StyleMixed AnimationStyle = "mixed"
)

// ParseAnimationStyle accepts the style names, plus "ken_burns_effect".
func ParseAnimationStyle(value string) (AnimationStyle, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "pan_and_scan":
		return StylePanAndScan, nil
	case "ken_burns", "ken_burns_effect":
		return StyleKenBurns, nil
	case "static":
		return StyleStatic, nil
	case "mixed":
		return StyleMixed, nil
	default:
		return StylePanAndScan, fmt.Errorf("unknown animation style %q", value)
	}
}

// Effect returns the effect of the panel at global index i.
func (s AnimationStyle) Effect(i int) Effect {
	switch s {
	case StyleKenBurns:
		return EffectKenBurns
	case StyleStatic:
		return EffectStatic
	case StyleMixed:
		if i%2 == 1 {
			return EffectKenBurns
		}
		return EffectPanAndScan
	default:
		return EffectPanAndScan
	}
}

// Config controls the initial schedule.
type Config struct {
	// BasePanelDuration is the floor every panel renders for.
	BasePanelDuration time.Duration
	// AreaScaled multiplies the floor by the panel's share of the page
	// times AreaScale, never going below the floor.
	AreaScaled bool
	AreaScale  float64

	InterLineGap    time.Duration
	InterPanelPause time.Duration
	// DurationQuantum rounds computed visual durations up to a multiple
	// of itself when positive.
	DurationQuantum time.Duration

	TransitionDuration time.Duration
	AnimationStyle     AnimationStyle
	// Speed divides panel floors and transitions; 1 is normal speed.
	Speed float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		BasePanelDuration:  2500 * time.Millisecond,
		AreaScale:          4,
		InterLineGap:       200 * time.Millisecond,
		TransitionDuration: 500 * time.Millisecond,
		AnimationStyle:     StylePanAndScan,
		Speed:              1,
	}
}

// Builder turns page-ordered panel scenes into a Timeline.
type Builder struct {
	config   Config
	estimate speech.Estimator
	voices   func(scene.DialogueLine) string
}

// NewBuilder creates a builder. A nil estimator uses the default speech
// model.
func NewBuilder(config Config, estimate speech.Estimator) *Builder {
	if estimate == nil {
		estimate = speech.New(speech.DefaultConfig())
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	return &Builder{config: config, estimate: estimate}
}

// WithVoices returns a copy of the builder that tags voice events with the
// voice chosen by fn.
func (b *Builder) WithVoices(fn func(scene.DialogueLine) string) *Builder {
	clone := *b
	clone.voices = fn
	return &clone
}

// Build schedules panels in ascending (page, order). Inconsistent input, such
// as a line or cue that names another panel, a duplicate panel, a repeated
// sequence index or a negative duration, fails with a structural integrity
// error. Panels without lines or cues are valid.
func (b *Builder) Build(archive string, panels []scene.PanelScene) (*Timeline, error) {
	ordered := slices.Clone(panels)
	slices.SortStableFunc(ordered, func(x, y scene.PanelScene) int {
		switch {
		case scene.Less(x.Panel, y.Panel):
			return -1
		case scene.Less(y.Panel, x.Panel):
			return 1
		default:
			return 0
		}
	})

	seen := make(map[scene.PanelID]bool, len(ordered))
	var events []Event
	for i, ps := range ordered {
		panel := ps.Panel
		if seen[panel.ID] {
			return nil, integrity("build", "duplicate panel %s", panel.ID)
		}
		seen[panel.ID] = true
		if !panel.Accepted() {
			return nil, integrity("build", "panel %s is %s, not accepted", panel.ID, panel.Status)
		}
		if i > 0 && !scene.Less(ordered[i-1].Panel, panel) {
			return nil, integrity("build", "panels %s and %s share reading position", ordered[i-1].Panel.ID, panel.ID)
		}

		visual := Event{
			ID:     VisualID(panel.ID),
			Track:  TrackVisual,
			Base:   b.base(ps),
			Ref:    Ref{Kind: RefPanel, ID: string(panel.ID)},
			Panel:  panel.ID,
			Page:   panel.PageIndex,
			Effect: b.config.AnimationStyle.Effect(i),
		}
		if i > 0 {
			visual.Transition = b.scaled(b.config.TransitionDuration)
		}
		events = append(events, visual)

		voice, err := b.voiceEvents(ps)
		if err != nil {
			return nil, err
		}
		events = append(events, voice...)

		sfx, err := b.sfxEvents(ps)
		if err != nil {
			return nil, err
		}
		events = append(events, sfx...)
	}

	tl, err := newTimeline(archive, Settings{
		InterLineGap:    b.config.InterLineGap,
		InterPanelPause: b.config.InterPanelPause,
		DurationQuantum: b.config.DurationQuantum,
	}, events)
	if err != nil {
		return nil, err
	}
	if err := tl.schedule(tl.events); err != nil {
		return nil, err
	}
	return tl, nil
}

func (b *Builder) voiceEvents(ps scene.PanelScene) ([]Event, error) {
	lines := slices.Clone(ps.Lines)
	slices.SortStableFunc(lines, func(x, y scene.DialogueLine) int { return x.Sequence - y.Sequence })

	out := make([]Event, 0, len(lines))
	for i, line := range lines {
		if line.Panel != ps.Panel.ID {
			return nil, integrity("build", "dialogue line %s references panel %s, carried by %s", line.ID, line.Panel, ps.Panel.ID)
		}
		if i > 0 && lines[i-1].Sequence == line.Sequence {
			return nil, integrity("build", "panel %s repeats sequence index %d", ps.Panel.ID, line.Sequence)
		}
		estimate := b.estimate(line.Text, line.Emphasis, line.Language)
		if estimate < 0 {
			return nil, integrity("build", "negative speech estimate %v for line %s", estimate, line.ID)
		}
		ev := Event{
			ID:    VoiceID(line.ID),
			Track: TrackVoice,
			Base:  estimate,
			Ref:   Ref{Kind: RefDialogue, ID: string(line.ID)},
			Panel: ps.Panel.ID,
			Page:  ps.Panel.PageIndex,
			Text:  line.Text,
		}
		if b.voices != nil {
			ev.Voice = b.voices(line)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (b *Builder) sfxEvents(ps scene.PanelScene) ([]Event, error) {
	out := make([]Event, 0, len(ps.Cues))
	for _, cue := range ps.Cues {
		if cue.Panel != ps.Panel.ID {
			return nil, integrity("build", "sound cue %s references panel %s, carried by %s", cue.ID, cue.Panel, ps.Panel.ID)
		}
		if cue.Duration < 0 {
			return nil, integrity("build", "negative duration %v for sound cue %s", cue.Duration, cue.ID)
		}
		out = append(out, Event{
			ID:    SFXID(cue.ID),
			Track: TrackSFX,
			Base:  cue.Duration,
			Ref:   Ref{Kind: RefSFX, ID: string(cue.ID)},
			Panel: ps.Panel.ID,
			Page:  ps.Panel.PageIndex,
			Text:  cue.Text,
		})
	}
	return out, nil
}

// base is the visual floor of a panel.
func (b *Builder) base(ps scene.PanelScene) time.Duration {
	floor := b.scaled(b.config.BasePanelDuration)
	if !b.config.AreaScaled || ps.PageArea <= 0 {
		return floor
	}
	factor := ps.Panel.Effective.Area() / ps.PageArea * b.config.AreaScale
	if factor <= 1 {
		return floor
	}
	return time.Duration(math.Round(float64(floor)*factor/float64(time.Millisecond))) * time.Millisecond
}

func (b *Builder) scaled(d time.Duration) time.Duration {
	if b.config.Speed == 1 {
		return d
	}
	return time.Duration(math.Round(float64(d)/b.config.Speed/float64(time.Millisecond))) * time.Millisecond
}
