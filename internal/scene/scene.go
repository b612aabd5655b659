package scene

import (
	"fmt"
	"image"
	"time"

	"golang.org/x/text/language"

	"motioncomic/internal/geometry"
)

type (
	PanelID     string
	SubRegionID string
	TextUnitID  string
	LineID      string
	CueID       string
	SpeakerID   string
)

// UnknownSpeaker is a valid terminal speaker assignment.
const UnknownSpeaker SpeakerID = ""

// NewPanelID derives the stable id of the n-th detector candidate on a page.
func NewPanelID(pageIndex, candidate int) PanelID {
	return PanelID(fmt.Sprintf("p%03d-r%02d", pageIndex, candidate))
}

// SubRegionID derives the id of the n-th sub-region of the panel.
func (id PanelID) SubRegionID(n int) SubRegionID {
	return SubRegionID(fmt.Sprintf("%s-s%02d", id, n))
}

// LineID derives the id of the dialogue line with the given sequence index.
func (id PanelID) LineID(sequence int) LineID {
	return LineID(fmt.Sprintf("%s-d%02d", id, sequence))
}

// CueID derives the id of the n-th sound cue of the panel.
func (id PanelID) CueID(n int) CueID {
	return CueID(fmt.Sprintf("%s-x%02d", id, n))
}

// TextUnitID derives the id of the text unit recognized from a sub-region.
func (id SubRegionID) TextUnitID() TextUnitID {
	return TextUnitID(string(id) + "-t")
}

// Page is one decoded raster page. Immutable once loaded.
type Page struct {
	Index  int
	Width  int
	Height int
	Image  image.Image
	Source string
}

// Bounds returns the page rectangle as a box.
func (p Page) Bounds() geometry.Box {
	return geometry.NewBox(0, 0, float64(p.Width), float64(p.Height))
}

// Area returns the page area in pixels.
func (p Page) Area() float64 {
	return float64(p.Width) * float64(p.Height)
}

// PanelRegion is a detector candidate; after resolution it is either an
// accepted panel with a final Order or a rejected candidate kept for
// diagnostics.
type PanelRegion struct {
	ID         PanelID      `json:"id"`
	PageIndex  int          `json:"page"`
	Box        geometry.Box `json:"box"`
	Effective  geometry.Box `json:"effective"`
	Confidence float64      `json:"confidence"`
	Order      int          `json:"order"`
	Status     Status       `json:"status"`
	Synthetic  bool         `json:"synthetic,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// NewCandidate builds a pending region as emitted by a detector.
func NewCandidate(pageIndex, candidate int, box geometry.Box, confidence float64) PanelRegion {
	return PanelRegion{
		ID:         NewPanelID(pageIndex, candidate),
		PageIndex:  pageIndex,
		Box:        box,
		Effective:  box,
		Confidence: clampUnit(confidence),
		Order:      -1,
		Status:     StatusPending,
	}
}

// Accepted reports whether the region survived resolution.
func (r PanelRegion) Accepted() bool {
	return r.Status == StatusAccepted
}

// SubRegion is a classified area inside an accepted panel.
type SubRegion struct {
	ID         SubRegionID  `json:"id"`
	Panel      PanelID      `json:"panel"`
	Box        geometry.Box `json:"box"`
	Kind       Kind         `json:"kind"`
	Confidence float64      `json:"confidence"`
}

// TextUnit is the recognized text of one sub-region. Immutable.
type TextUnit struct {
	ID         TextUnitID
	SubRegion  SubRegionID
	Panel      PanelID
	Kind       Kind
	Box        geometry.Box
	Text       string
	Language   language.Tag
	Confidence float64
}

// DialogueLine is one spoken (or narrated) line inside a panel, built from
// one or more text units.
type DialogueLine struct {
	ID       LineID
	Panel    PanelID
	Units    []TextUnitID
	Text     string
	Kind     Kind
	Speaker  SpeakerID
	Sequence int
	Emphasis Emphasis
	Language language.Tag
}

// SFXCue is a sound effect derived from an sfx sub-region.
type SFXCue struct {
	ID        CueID
	Panel     PanelID
	SubRegion SubRegionID
	Text      string
	Duration  time.Duration
}

// PanelScene bundles an accepted panel with everything the timeline needs
// from it.
type PanelScene struct {
	Panel      PanelRegion
	PageArea   float64
	SubRegions []SubRegion
	Lines      []DialogueLine
	Cues       []SFXCue
}

// PageScene is the per-page output of the detection half of the pipeline:
// every candidate (accepted and rejected) plus accepted panels in reading
// order.
type PageScene struct {
	Page    int
	Regions []PanelRegion
	Panels  []PanelScene
}

// Less orders panels by page index, then panel order.
func Less(a, b PanelRegion) bool {
	if a.PageIndex != b.PageIndex {
		return a.PageIndex < b.PageIndex
	}
	return a.Order < b.Order
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
