// Package diagnostics collects the non-fatal problems of a run: degraded
// detector output, failed decodes and recognitions, and anything else the
// pipeline recovered from locally.
package diagnostics

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// Kind is the error category of a diagnostic.
type Kind = services.Category

// NoPage marks a diagnostic that is not tied to a page.
const NoPage = -1

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Kind    Kind          `json:"kind"`
	Stage   string        `json:"stage"`
	Page    int           `json:"page"`
	Panel   scene.PanelID `json:"panel,omitempty"`
	Message string        `json:"message"`
}

func (d Diagnostic) String() string {
	loc := "run"
	if d.Page != NoPage {
		loc = fmt.Sprintf("page %d", d.Page)
	}
	if d.Panel != "" {
		loc += " panel " + string(d.Panel)
	}
	return fmt.Sprintf("[%s] %s %s: %s", d.Kind, d.Stage, loc, d.Message)
}

// FromError converts a recovered error into a diagnostic.
func FromError(stage string, page int, panel scene.PanelID, err error) Diagnostic {
	return Diagnostic{
		Kind:    services.Classify(err),
		Stage:   stage,
		Page:    page,
		Panel:   panel,
		Message: services.Details(err),
	}
}

// Report is a concurrency-safe collection of diagnostics.
type Report struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records d.
func (r *Report) Add(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, d)
}

// Record adds the diagnostic for err. Nil errors are ignored.
func (r *Report) Record(stage string, page int, panel scene.PanelID, err error) {
	if err == nil {
		return
	}
	r.Add(FromError(stage, page, panel, err))
}

// Degraded records an upstream degradation that was recovered with a
// fallback.
func (r *Report) Degraded(stage string, page int, panel scene.PanelID, format string, args ...any) {
	r.Add(Diagnostic{
		Kind:    services.CategoryDegradation,
		Stage:   stage,
		Page:    page,
		Panel:   panel,
		Message: fmt.Sprintf(format, args...),
	})
}

// Merge appends every diagnostic of other.
func (r *Report) Merge(other *Report) {
	if other == nil || other == r {
		return
	}
	items := other.Items()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Count returns the number of diagnostics of kind.
func (r *Report) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Items returns a sorted copy of the diagnostics: run-level first, then by
// page, panel, stage, kind and message.
func (r *Report) Items() []Diagnostic {
	r.mu.Lock()
	out := slices.Clone(r.items)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Page, b.Page),
			cmp.Compare(a.Panel, b.Panel),
			cmp.Compare(a.Stage, b.Stage),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Message, b.Message),
		)
	})
	return out
}
