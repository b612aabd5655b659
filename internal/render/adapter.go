package render

import (
	"context"
	"image"
	"time"

	"motioncomic/internal/scene"
	"motioncomic/internal/timeline"
)

// Adapter consumes a timeline.
type Adapter interface {
	Consume(ctx context.Context, tl *timeline.Timeline) (Result, error)
}

// Result reports what a renderer produced. Measured holds actual durations
// for events whose rendered length differs from the estimate; it is empty
// for adapters that do not synthesize audio.
type Result struct {
	Files    []string
	Measured map[timeline.EventID]time.Duration
}

// StillSource returns the still image of a panel.
type StillSource interface {
	Still(ctx context.Context, panel scene.PanelID) (image.Image, error)
}
