package classify

import (
	"cmp"
	"image"
	"slices"

	"motioncomic/internal/geometry"
	"motioncomic/internal/raster"
	"motioncomic/internal/scene"
	"motioncomic/internal/textutil"
)

// Classifier tags the sub-regions of one accepted panel. Results must be
// deterministic and sorted by top edge, then left edge.
type Classifier interface {
	Classify(page scene.Page, panel scene.PanelRegion) []scene.SubRegion
}

// Config holds the heuristic thresholds.
type Config struct {
	// GridStep is the downsampling factor applied before labeling.
	GridStep int
	// FrameInset is the share of the smaller panel side skipped at the
	// border so panel frames are not mistaken for content.
	FrameInset float64

	BrightThreshold uint8
	DarkThreshold   uint8

	// MinComponentRatio and MaxComponentRatio bound a balloon's area
	// relative to the panel interior.
	MinComponentRatio float64
	MaxComponentRatio float64
	// MinTextInk is the share of dark pixels a balloon's box needs to be
	// considered lettered.
	MinTextInk float64
	// CaptionSolidity separates rectangular captions from rounded balloons.
	CaptionSolidity   float64
	MinBubbleSolidity float64

	// MinGlyphHeightRatio is the minimum glyph height, relative to the
	// interior height, for sound-effect lettering.
	MinGlyphHeightRatio float64
	MinGlyphFill        float64
	MinGlyphs           int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		GridStep:            2,
		FrameInset:          0.02,
		BrightThreshold:     235,
		DarkThreshold:       70,
		MinComponentRatio:   0.003,
		MaxComponentRatio:   0.5,
		MinTextInk:          0.01,
		CaptionSolidity:     0.93,
		MinBubbleSolidity:   0.5,
		MinGlyphHeightRatio: 0.08,
		MinGlyphFill:        0.3,
		MinGlyphs:           2,
	}
}

// HeuristicClassifier classifies sub-regions from raster shape cues alone.
type HeuristicClassifier struct {
	config Config
}

// NewHeuristicClassifier creates a classifier with default configuration.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{config: DefaultConfig()}
}

// NewHeuristicClassifierWithConfig creates a classifier with custom
// configuration.
func NewHeuristicClassifierWithConfig(config Config) *HeuristicClassifier {
	if config.GridStep < 1 {
		config.GridStep = 1
	}
	return &HeuristicClassifier{config: config}
}

type found struct {
	box        image.Rectangle // grid coordinates
	kind       scene.Kind
	confidence float64
}

// Classify returns the lettered sub-regions of panel.
func (c *HeuristicClassifier) Classify(page scene.Page, panel scene.PanelRegion) []scene.SubRegion {
	if page.Image == nil {
		return nil
	}
	frame := panel.Effective.Rect().Intersect(page.Image.Bounds().Sub(page.Image.Bounds().Min))
	inset := int(c.config.FrameInset * float64(min(frame.Dx(), frame.Dy())))
	interior := frame.Inset(max(inset, 1))
	if interior.Empty() {
		return nil
	}

	gray := raster.GrayRect(page.Image, interior.Add(page.Image.Bounds().Min))
	grid := raster.Downsample(gray, c.config.GridStep)
	bright := raster.Threshold(grid, c.config.BrightThreshold)
	dark := raster.ThresholdBelow(grid, c.config.DarkThreshold)

	balloons := c.balloons(bright, dark)
	results := append(balloons, c.soundEffects(dark, balloons)...)

	step := float64(interior.Dx()) / float64(grid.Bounds().Dx())
	stepY := float64(interior.Dy()) / float64(grid.Bounds().Dy())
	subs := make([]scene.SubRegion, 0, len(results))
	for _, r := range results {
		box := geometry.NewBox(
			float64(interior.Min.X)+float64(r.box.Min.X)*step,
			float64(interior.Min.Y)+float64(r.box.Min.Y)*stepY,
			float64(r.box.Dx())*step,
			float64(r.box.Dy())*stepY,
		).Clamp(panel.Effective)
		if box.IsEmpty() {
			continue
		}
		subs = append(subs, scene.SubRegion{Panel: panel.ID, Box: box, Kind: r.kind, Confidence: r.confidence})
	}
	return Finalize(panel.ID, subs)
}

func (c *HeuristicClassifier) balloons(bright, dark *raster.Grid) []found {
	area := float64(bright.Width * bright.Height)
	var out []found
	for _, comp := range raster.Components(bright) {
		ratio := float64(comp.Area) / area
		if ratio < c.config.MinComponentRatio || ratio > c.config.MaxComponentRatio {
			continue
		}
		boxArea := float64(comp.Bounds.Dx() * comp.Bounds.Dy())
		if float64(dark.Count(comp.Bounds))/boxArea < c.config.MinTextInk {
			continue
		}
		solidity := comp.Solidity()
		switch {
		case solidity >= c.config.CaptionSolidity:
			out = append(out, found{box: comp.Bounds, kind: scene.KindCaption, confidence: solidity})
		case solidity >= c.config.MinBubbleSolidity:
			confidence := 0.7
			if hasTail(comp) {
				confidence = 0.9
			}
			out = append(out, found{box: comp.Bounds, kind: scene.KindDialogue, confidence: confidence})
		}
	}
	return out
}

// hasTail reports whether the bottom rows of a balloon are much narrower
// than its widest row.
func hasTail(comp raster.Component) bool {
	rows := len(comp.Spans)
	if rows < 8 {
		return false
	}
	widest := 0
	for _, s := range comp.Spans {
		widest = max(widest, s[1]-s[0]+1)
	}
	tail := max(1, rows*15/100)
	total := 0
	for _, s := range comp.Spans[rows-tail:] {
		total += max(0, s[1]-s[0]+1)
	}
	return float64(total)/float64(tail) < 0.25*float64(widest)
}

// soundEffects groups large dense dark glyphs outside balloons into words.
func (c *HeuristicClassifier) soundEffects(dark *raster.Grid, balloons []found) []found {
	minHeight := int(c.config.MinGlyphHeightRatio * float64(dark.Height))
	var glyphs []raster.Component
	for _, comp := range raster.Components(dark) {
		if comp.TouchesEdge(dark.Width, dark.Height) {
			continue
		}
		if comp.Bounds.Dy() < max(minHeight, 2) || comp.Fill() < c.config.MinGlyphFill {
			continue
		}
		aspect := float64(comp.Bounds.Dx()) / float64(comp.Bounds.Dy())
		if aspect < 0.2 || aspect > 5 {
			continue
		}
		if overlapsAny(comp.Bounds, balloons) {
			continue
		}
		glyphs = append(glyphs, comp)
	}
	slices.SortFunc(glyphs, func(a, b raster.Component) int {
		return cmp.Compare(a.Bounds.Min.X, b.Bounds.Min.X)
	})

	used := make([]bool, len(glyphs))
	var out []found
	for i := range glyphs {
		if used[i] {
			continue
		}
		word := glyphs[i].Bounds
		count := 1
		used[i] = true
		for j := i + 1; j < len(glyphs); j++ {
			if used[j] {
				continue
			}
			g := glyphs[j].Bounds
			gap := g.Min.X - word.Max.X
			vOverlap := min(word.Max.Y, g.Max.Y) - max(word.Min.Y, g.Min.Y)
			if gap <= g.Dy() && vOverlap*2 >= min(word.Dy(), g.Dy()) {
				word = word.Union(g)
				used[j] = true
				count++
			}
		}
		if count >= c.config.MinGlyphs {
			confidence := min(0.9, 0.5+0.1*float64(count))
			out = append(out, found{box: word, kind: scene.KindSFX, confidence: confidence})
		}
	}
	return out
}

func overlapsAny(r image.Rectangle, balloons []found) bool {
	for _, b := range balloons {
		if r.Overlaps(b.box) {
			return true
		}
	}
	return false
}

// Finalize sorts sub-regions by top edge, then left edge, and assigns their
// position-derived IDs.
func Finalize(panel scene.PanelID, subs []scene.SubRegion) []scene.SubRegion {
	slices.SortStableFunc(subs, func(a, b scene.SubRegion) int {
		if c := cmp.Compare(a.Box.Top(), b.Box.Top()); c != 0 {
			return c
		}
		return cmp.Compare(a.Box.Left(), b.Box.Left())
	})
	for i := range subs {
		subs[i].ID = panel.SubRegionID(i)
		subs[i].Panel = panel
	}
	return subs
}

// RefineKind re-types a text region from its recognized text. Dialogue and
// captions whose text is pure onomatopoeia become sound effects.
func RefineKind(kind scene.Kind, text string) scene.Kind {
	switch kind {
	case scene.KindDialogue, scene.KindCaption:
		if textutil.IsOnomatopoeia(text) {
			return scene.KindSFX
		}
		return kind
	case scene.KindSFX, scene.KindArtwork:
		return kind
	}
	return kind
}
