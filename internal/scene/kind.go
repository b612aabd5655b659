package scene

import (
	"fmt"
	"strings"
)

// Kind classifies a sub-region inside a panel. The set is closed; every
// switch over Kind handles all four values.
type Kind int

const (
	KindArtwork Kind = iota
	KindDialogue
	KindCaption
	KindSFX
)

func (k Kind) String() string {
	switch k {
	case KindDialogue:
		return "dialogue"
	case KindCaption:
		return "caption"
	case KindSFX:
		return "sfx"
	case KindArtwork:
		return "artwork"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HasText reports whether sub-regions of this kind are sent to OCR.
func (k Kind) HasText() bool {
	switch k {
	case KindDialogue, KindCaption, KindSFX:
		return true
	default:
		return false
	}
}

// ParseKind converts the textual form back into a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dialogue":
		return KindDialogue, nil
	case "caption":
		return KindCaption, nil
	case "sfx":
		return KindSFX, nil
	case "artwork":
		return KindArtwork, nil
	default:
		return KindArtwork, fmt.Errorf("unknown sub-region kind %q", value)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Status tracks a panel candidate through reading-order resolution.
type Status int

const (
	StatusPending Status = iota
	StatusAccepted
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	switch string(data) {
	case "accepted":
		*s = StatusAccepted
	case "rejected":
		*s = StatusRejected
	case "pending":
		*s = StatusPending
	default:
		return fmt.Errorf("unknown panel status %q", string(data))
	}
	return nil
}

// Emphasis is a bit set of delivery hints attached to a dialogue line.
type Emphasis uint8

const (
	EmphasisShout Emphasis = 1 << iota
	EmphasisWhisper
	EmphasisThought
)

// Has reports whether all bits in flag are set.
func (e Emphasis) Has(flag Emphasis) bool {
	return e&flag == flag && flag != 0
}

func (e Emphasis) String() string {
	if e == 0 {
		return "normal"
	}
	var parts []string
	if e.Has(EmphasisShout) {
		parts = append(parts, "shout")
	}
	if e.Has(EmphasisWhisper) {
		parts = append(parts, "whisper")
	}
	if e.Has(EmphasisThought) {
		parts = append(parts, "thought")
	}
	return strings.Join(parts, "+")
}
