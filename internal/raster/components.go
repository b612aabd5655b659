package raster

import "image"

// Component is a 4-connected set of marked cells.
type Component struct {
	Bounds image.Rectangle
	Area   int
	// Spans holds, per row of Bounds, the leftmost and rightmost column
	// (inclusive) touched by the component.
	Spans [][2]int
}

// Solidity returns the row-convex fill of the component relative to its
// bounding box: rectangles score 1, ellipses about pi/4.
func (c Component) Solidity() float64 {
	boxArea := c.Bounds.Dx() * c.Bounds.Dy()
	if boxArea == 0 {
		return 0
	}
	filled := 0
	for _, span := range c.Spans {
		if span[1] >= span[0] {
			filled += span[1] - span[0] + 1
		}
	}
	return float64(filled) / float64(boxArea)
}

// Fill returns Area relative to the bounding box.
func (c Component) Fill() float64 {
	boxArea := c.Bounds.Dx() * c.Bounds.Dy()
	if boxArea == 0 {
		return 0
	}
	return float64(c.Area) / float64(boxArea)
}

// TouchesEdge reports whether the component reaches the border of a
// width x height grid.
func (c Component) TouchesEdge(width, height int) bool {
	return c.Bounds.Min.X == 0 || c.Bounds.Min.Y == 0 || c.Bounds.Max.X == width || c.Bounds.Max.Y == height
}

// Components labels the 4-connected regions of set cells, scanning in row
// order so the result is deterministic.
func Components(m *Grid) []Component {
	seen := make([]bool, len(m.cells))
	var out []Component
	var stack []int
	var pixels []image.Point

	for start := range m.cells {
		if !m.cells[start] || seen[start] {
			continue
		}
		pixels = pixels[:0]
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%m.Width, idx/m.Width
			pixels = append(pixels, image.Pt(x, y))
			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if !m.At(n[0], n[1]) {
					continue
				}
				ni := n[1]*m.Width + n[0]
				if !seen[ni] {
					seen[ni] = true
					stack = append(stack, ni)
				}
			}
		}
		out = append(out, newComponent(pixels))
	}
	return out
}

func newComponent(pixels []image.Point) Component {
	bounds := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels[1:] {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	spans := make([][2]int, bounds.Dy())
	for i := range spans {
		spans[i] = [2]int{bounds.Max.X, bounds.Min.X - 1}
	}
	for _, p := range pixels {
		s := &spans[p.Y-bounds.Min.Y]
		s[0] = min(s[0], p.X)
		s[1] = max(s[1], p.X)
	}
	return Component{Bounds: bounds, Area: len(pixels), Spans: spans}
}
