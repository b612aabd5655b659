package detection

import (
	"iter"

	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
)

// Detector yields panel candidates for a page.
type Detector interface {
	Detect(page scene.Page) iter.Seq[scene.PanelRegion]
}

// Candidate is a pre-computed detection, typically from an external model.
type Candidate struct {
	Box        geometry.Box `json:"box"`
	Confidence float64      `json:"confidence"`
}

// StaticDetector replays candidates keyed by page index.
type StaticDetector struct {
	Pages map[int][]Candidate
}

// Detect yields the stored candidates for page, clamped to the page bounds.
func (d StaticDetector) Detect(page scene.Page) iter.Seq[scene.PanelRegion] {
	return func(yield func(scene.PanelRegion) bool) {
		bounds := page.Bounds()
		for i, c := range d.Pages[page.Index] {
			region := scene.NewCandidate(page.Index, i, c.Box.Clamp(bounds), c.Confidence)
			if !yield(region) {
				return
			}
		}
	}
}

// WithFallback wraps d so that a page with no candidates yields a single
// synthetic full-page panel with zero confidence.
func WithFallback(d Detector) Detector {
	return fallbackDetector{inner: d}
}

type fallbackDetector struct {
	inner Detector
}

func (f fallbackDetector) Detect(page scene.Page) iter.Seq[scene.PanelRegion] {
	return func(yield func(scene.PanelRegion) bool) {
		found := false
		for region := range f.inner.Detect(page) {
			found = true
			if !yield(region) {
				return
			}
		}
		if !found {
			yield(FullPage(page))
		}
	}
}

// FullPage returns the synthetic panel covering the whole page.
func FullPage(page scene.Page) scene.PanelRegion {
	region := scene.NewCandidate(page.Index, 0, page.Bounds(), 0)
	region.Synthetic = true
	return region
}
