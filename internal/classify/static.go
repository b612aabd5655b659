package classify

import (
	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
)

// Region is a pre-computed sub-region, typically from an external model.
type Region struct {
	Box        geometry.Box `json:"box"`
	Kind       scene.Kind   `json:"kind"`
	Confidence float64      `json:"confidence"`
}

// StaticClassifier replays regions keyed by panel ID.
type StaticClassifier struct {
	Panels map[scene.PanelID][]Region
}

// Classify returns the stored regions clipped to the panel's effective box.
func (s StaticClassifier) Classify(_ scene.Page, panel scene.PanelRegion) []scene.SubRegion {
	regions := s.Panels[panel.ID]
	subs := make([]scene.SubRegion, 0, len(regions))
	for _, r := range regions {
		box := r.Box.Clamp(panel.Effective)
		if box.IsEmpty() {
			continue
		}
		subs = append(subs, scene.SubRegion{Box: box, Kind: r.Kind, Confidence: r.Confidence})
	}
	return Finalize(panel.ID, subs)
}
