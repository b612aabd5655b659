package detection

import (
	"image"
	"iter"
	"math"

	"motioncomic/internal/geometry"
	"motioncomic/internal/raster"
	"motioncomic/internal/scene"
)

// Config holds the gutter detector thresholds.
type Config struct {
	// WhiteThreshold is the luminance at or above which a pixel is paper.
	WhiteThreshold uint8

	// GutterCoverage is the fraction of paper pixels a row or column needs to
	// count as gutter. Default: 0.98
	GutterCoverage float64

	// MinGutterRatio is the shortest gutter run, relative to the smaller
	// page dimension. Runs are never shorter than MinGutterPixels.
	MinGutterRatio  float64
	MinGutterPixels int

	// MinAreaRatio and MaxAreaRatio bound a panel's area relative to the page.
	MinAreaRatio float64
	MaxAreaRatio float64

	// MinAspect and MaxAspect bound width/height.
	MinAspect float64
	MaxAspect float64

	// MaxDepth limits XY-cut recursion.
	MaxDepth int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		WhiteThreshold:  230,
		GutterCoverage:  0.98,
		MinGutterRatio:  0.005,
		MinGutterPixels: 3,
		MinAreaRatio:    0.01,
		MaxAreaRatio:    0.95,
		MinAspect:       0.1,
		MaxAspect:       10,
		MaxDepth:        8,
	}
}

// GutterDetector finds panels by cutting the page along white gutters.
type GutterDetector struct {
	config Config
}

// NewGutterDetector creates a detector with default configuration.
func NewGutterDetector() *GutterDetector {
	return &GutterDetector{config: DefaultConfig()}
}

// NewGutterDetectorWithConfig creates a detector with custom configuration.
func NewGutterDetectorWithConfig(config Config) *GutterDetector {
	return &GutterDetector{config: config}
}

// Detect yields one pending candidate per accepted XY-cut leaf. The page is
// scanned when the sequence is first iterated.
func (d *GutterDetector) Detect(page scene.Page) iter.Seq[scene.PanelRegion] {
	return func(yield func(scene.PanelRegion) bool) {
		if page.Image == nil || page.Width <= 0 || page.Height <= 0 {
			return
		}
		mask := raster.Threshold(raster.Gray(page.Image), d.config.WhiteThreshold)
		c := cutter{
			mask:      mask,
			coverage:  d.config.GutterCoverage,
			minGutter: max(d.config.MinGutterPixels, int(d.config.MinGutterRatio*float64(min(mask.Width, mask.Height)))),
			maxDepth:  d.config.MaxDepth,
		}
		leaves := c.cut(image.Rect(0, 0, mask.Width, mask.Height), 0, nil)

		pageArea := float64(mask.Width * mask.Height)
		n := 0
		for _, leaf := range leaves {
			box := geometry.FromRect(leaf)
			if !d.accept(box, pageArea) {
				continue
			}
			region := scene.NewCandidate(page.Index, n, box, confidence(mask, leaf))
			if !yield(region) {
				return
			}
			n++
		}
	}
}

func (d *GutterDetector) accept(box geometry.Box, pageArea float64) bool {
	if box.IsEmpty() || pageArea <= 0 {
		return false
	}
	ratio := box.Area() / pageArea
	if ratio < d.config.MinAreaRatio || ratio > d.config.MaxAreaRatio {
		return false
	}
	aspect := box.Width / box.Height
	return aspect >= d.config.MinAspect && aspect <= d.config.MaxAspect
}

// confidence grows with the share of ink inside the leaf: a leaf that is
// mostly paper is more likely a stray caption or smudge than a panel.
func confidence(mask *raster.Grid, leaf image.Rectangle) float64 {
	area := leaf.Dx() * leaf.Dy()
	if area == 0 {
		return 0
	}
	ink := 1 - float64(mask.Count(leaf))/float64(area)
	return 0.5 + 0.5*math.Min(1, ink/0.25)
}

type cutter struct {
	mask      *raster.Grid
	coverage  float64
	minGutter int
	maxDepth  int
}

func (c cutter) cut(r image.Rectangle, depth int, out []image.Rectangle) []image.Rectangle {
	r = c.trim(r)
	if r.Empty() {
		return out
	}
	if depth >= c.maxDepth {
		return append(out, r)
	}
	if parts := c.split(r, true); len(parts) > 1 {
		for _, part := range parts {
			out = c.cut(part, depth+1, out)
		}
		return out
	}
	if parts := c.split(r, false); len(parts) > 1 {
		for _, part := range parts {
			out = c.cut(part, depth+1, out)
		}
		return out
	}
	return append(out, r)
}

// trim shrinks r until its outermost rows and columns contain ink.
func (c cutter) trim(r image.Rectangle) image.Rectangle {
	for r.Min.Y < r.Max.Y && c.gutterRow(r.Min.Y, r.Min.X, r.Max.X) {
		r.Min.Y++
	}
	for r.Max.Y > r.Min.Y && c.gutterRow(r.Max.Y-1, r.Min.X, r.Max.X) {
		r.Max.Y--
	}
	for r.Min.X < r.Max.X && c.gutterCol(r.Min.X, r.Min.Y, r.Max.Y) {
		r.Min.X++
	}
	for r.Max.X > r.Min.X && c.gutterCol(r.Max.X-1, r.Min.Y, r.Max.Y) {
		r.Max.X--
	}
	return r
}

// split divides r at every gutter run of at least minGutter rows
// (horizontal) or columns (vertical).
func (c cutter) split(r image.Rectangle, horizontal bool) []image.Rectangle {
	lo, hi := r.Min.X, r.Max.X
	if horizontal {
		lo, hi = r.Min.Y, r.Max.Y
	}
	isGutter := func(i int) bool {
		if horizontal {
			return c.gutterRow(i, r.Min.X, r.Max.X)
		}
		return c.gutterCol(i, r.Min.Y, r.Max.Y)
	}
	part := func(a, b int) image.Rectangle {
		if horizontal {
			return image.Rect(r.Min.X, a, r.Max.X, b)
		}
		return image.Rect(a, r.Min.Y, b, r.Max.Y)
	}

	var parts []image.Rectangle
	start := lo
	for i := lo; i < hi; {
		if !isGutter(i) {
			i++
			continue
		}
		run := i
		for run < hi && isGutter(run) {
			run++
		}
		if run-i >= c.minGutter && i > start {
			parts = append(parts, part(start, i))
			start = run
		}
		i = run
	}
	if start < hi {
		parts = append(parts, part(start, hi))
	}
	return parts
}

// gutterRow reports whether row y is paper across [x0, x1). Both end pixels
// must be paper so a row crossing a panel frame never qualifies.
func (c cutter) gutterRow(y, x0, x1 int) bool {
	if x1 <= x0 || !c.mask.At(x0, y) || !c.mask.At(x1-1, y) {
		return false
	}
	return float64(c.mask.CountRow(y, x0, x1)) >= c.coverage*float64(x1-x0)
}

func (c cutter) gutterCol(x, y0, y1 int) bool {
	if y1 <= y0 || !c.mask.At(x, y0) || !c.mask.At(x, y1-1) {
		return false
	}
	return float64(c.mask.CountCol(x, y0, y1)) >= c.coverage*float64(y1-y0)
}
