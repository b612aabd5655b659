package runstore

import (
	"time"

	"motioncomic/internal/services"
	"motioncomic/internal/timeline"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one stored pipeline run.
type Run struct {
	ID           string
	Archive      string
	Status       Status
	PageCount    int
	PagesFailed  int
	PanelCount   int
	Duration     time.Duration
	ErrorMessage string
	OutputDir    string
	// TimelineJSON is the serialized timeline; empty for failed runs and in
	// List results.
	TimelineJSON []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShortID returns the first eight characters of the run id.
func (r *Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Timeline decodes the stored timeline.
func (r *Run) Timeline() (*timeline.Timeline, error) {
	if len(r.TimelineJSON) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "runstore", "timeline", "run "+r.ID+" has no timeline", nil)
	}
	return timeline.Unmarshal(r.TimelineJSON)
}
