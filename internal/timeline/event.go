package timeline

import (
	"fmt"
	"time"

	"motioncomic/internal/scene"
)

// Track is one of the three parallel lanes of the timeline.
type Track int

const (
	TrackVisual Track = iota
	TrackVoice
	TrackSFX
)

func (t Track) String() string {
	switch t {
	case TrackVisual:
		return "visual"
	case TrackVoice:
		return "voice"
	case TrackSFX:
		return "sfx"
	default:
		return fmt.Sprintf("track(%d)", int(t))
	}
}

// Tracks lists every track in display order.
func Tracks() []Track {
	return []Track{TrackVisual, TrackVoice, TrackSFX}
}

// ParseTrack converts the textual form back into a Track.
func ParseTrack(value string) (Track, error) {
	for _, t := range Tracks() {
		if t.String() == value {
			return t, nil
		}
	}
	return TrackVisual, fmt.Errorf("unknown track %q", value)
}

func (t Track) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Track) UnmarshalText(data []byte) error {
	parsed, err := ParseTrack(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// RefKind names the entity an event renders.
type RefKind string

const (
	RefPanel    RefKind = "panel"
	RefDialogue RefKind = "dialogue"
	RefSFX      RefKind = "sfx"
)

// Ref points at the payload of an event by stable id.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// Effect is the camera animation applied to a visual event.
type Effect string

const (
	EffectPanAndScan Effect = "pan_and_scan"
	EffectKenBurns   Effect = "ken_burns"
	EffectStatic     Effect = "static"
)

// EventID identifies an event; it is derived from the payload id.
type EventID string

// VisualID is the id of a panel's visual event.
func VisualID(panel scene.PanelID) EventID { return EventID("visual:" + string(panel)) }

// VoiceID is the id of a dialogue line's voice event.
func VoiceID(line scene.LineID) EventID { return EventID("voice:" + string(line)) }

// SFXID is the id of a sound cue's sfx event.
func SFXID(cue scene.CueID) EventID { return EventID("sfx:" + string(cue)) }

// Event is one scheduled interval on a track. Base is the unmeasured
// duration: the speech or cue estimate for voice and sfx events, the panel
// floor for visual events. Duration is what the schedule uses. A measured
// voice or sfx event carries the measured value in Duration; a measured
// visual event carries it in Base, since its Duration also covers the
// panel's voice and sfx spans.
type Event struct {
	ID         EventID       `json:"id"`
	Track      Track         `json:"track"`
	Start      time.Duration `json:"start_ns"`
	Duration   time.Duration `json:"duration_ns"`
	Base       time.Duration `json:"base_ns"`
	Ref        Ref           `json:"ref"`
	Panel      scene.PanelID `json:"panel"`
	Page       int           `json:"page"`
	Locked     bool          `json:"locked,omitempty"`
	Measured   bool          `json:"measured,omitempty"`
	Effect     Effect        `json:"effect,omitempty"`
	Transition time.Duration `json:"transition_ns,omitempty"`
	Voice      string        `json:"voice,omitempty"`
	Text       string        `json:"text,omitempty"`
}

// End returns the exclusive end of the event.
func (e Event) End() time.Duration {
	return e.Start + e.Duration
}
