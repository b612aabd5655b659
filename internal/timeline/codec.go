package timeline

import (
	"encoding/json"
	"fmt"

	"motioncomic/internal/services"
)

type document struct {
	Archive  string   `json:"archive"`
	Version  int      `json:"version"`
	Settings Settings `json:"settings"`
	Events   []Event  `json:"events"`
}

// Marshal serializes tl as JSON. Durations are integer nanoseconds, so
// Unmarshal restores the exact timeline and equal timelines encode to equal
// bytes.
func Marshal(tl *Timeline) ([]byte, error) {
	events := tl.events
	if events == nil {
		events = []Event{}
	}
	data, err := json.MarshalIndent(document{
		Archive:  tl.archive,
		Version:  FormatVersion,
		Settings: tl.settings,
		Events:   events,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}
	return data, nil
}

// Unmarshal parses a timeline written by Marshal and re-checks its layout.
func Unmarshal(data []byte) (*Timeline, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "timeline", "decode", "invalid timeline json", err)
	}
	if doc.Version != FormatVersion {
		return nil, services.Wrap(services.ErrValidation, "timeline", "decode", fmt.Sprintf("unsupported timeline version %d", doc.Version), nil)
	}
	if doc.Events == nil {
		doc.Events = []Event{}
	}
	return newTimeline(doc.Archive, doc.Settings, doc.Events)
}
