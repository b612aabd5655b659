package geometry

import (
	"image"
	"math"
)

// Point is a 2D point in raster coordinates.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an axis-aligned rectangle. Y grows downward.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// NewBox creates a box from its top-left corner and size.
func NewBox(x, y, width, height float64) Box {
	return Box{X: x, Y: y, Width: width, Height: height}
}

// FromRect converts an integer image rectangle.
func FromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Rect converts the box to an integer image rectangle, rounding outward.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.Left())),
		int(math.Floor(b.Top())),
		int(math.Ceil(b.Right())),
		int(math.Ceil(b.Bottom())),
	)
}

func (b Box) Left() float64   { return b.X }
func (b Box) Right() float64  { return b.X + b.Width }
func (b Box) Top() float64    { return b.Y }
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Center returns the center point.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Area returns the box area; empty boxes have zero area.
func (b Box) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width * b.Height
}

// IsEmpty reports whether the box has no positive extent.
func (b Box) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether p lies inside the box (edges included).
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// ContainsBox reports whether other lies entirely inside b.
func (b Box) ContainsBox(other Box) bool {
	return other.Left() >= b.Left() && other.Right() <= b.Right() &&
		other.Top() >= b.Top() && other.Bottom() <= b.Bottom()
}

// Intersection returns the overlapping part of two boxes, or the zero Box.
func (b Box) Intersection(other Box) Box {
	left := math.Max(b.Left(), other.Left())
	top := math.Max(b.Top(), other.Top())
	right := math.Min(b.Right(), other.Right())
	bottom := math.Min(b.Bottom(), other.Bottom())
	if right <= left || bottom <= top {
		return Box{}
	}
	return Box{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Overlaps reports whether the boxes share positive area.
func (b Box) Overlaps(other Box) bool {
	return b.Intersection(other).Area() > 0
}

// Union returns the smallest box enclosing both boxes.
func (b Box) Union(other Box) Box {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	left := math.Min(b.Left(), other.Left())
	top := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())
	return Box{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// IoU returns intersection-over-union in [0,1].
func (b Box) IoU(other Box) float64 {
	inter := b.Intersection(other).Area()
	if inter == 0 {
		return 0
	}
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// OverlapRatio returns intersection area divided by the smaller box area.
func (b Box) OverlapRatio(other Box) float64 {
	inter := b.Intersection(other).Area()
	minArea := math.Min(b.Area(), other.Area())
	if inter == 0 || minArea == 0 {
		return 0
	}
	return inter / minArea
}

// HorizontalOverlap returns the length of the shared X range.
func (b Box) HorizontalOverlap(other Box) float64 {
	return math.Max(0, math.Min(b.Right(), other.Right())-math.Max(b.Left(), other.Left()))
}

// VerticalOverlap returns the length of the shared Y range.
func (b Box) VerticalOverlap(other Box) float64 {
	return math.Max(0, math.Min(b.Bottom(), other.Bottom())-math.Max(b.Top(), other.Top()))
}

// Expand grows the box by margin on all sides.
func (b Box) Expand(margin float64) Box {
	return Box{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// Clamp restricts the box to bounds.
func (b Box) Clamp(bounds Box) Box {
	return b.Intersection(bounds)
}

// Subtract returns the largest sub-box of b that does not overlap cut.
// When cut does not overlap b, b is returned unchanged; when cut covers b
// entirely the zero Box is returned.
func (b Box) Subtract(cut Box) Box {
	inter := b.Intersection(cut)
	if inter.Area() == 0 {
		return b
	}
	candidates := [4]Box{
		{X: b.Left(), Y: b.Top(), Width: inter.Left() - b.Left(), Height: b.Height},
		{X: inter.Right(), Y: b.Top(), Width: b.Right() - inter.Right(), Height: b.Height},
		{X: b.Left(), Y: b.Top(), Width: b.Width, Height: inter.Top() - b.Top()},
		{X: b.Left(), Y: inter.Bottom(), Width: b.Width, Height: b.Bottom() - inter.Bottom()},
	}
	best := Box{}
	for _, c := range candidates {
		if c.Area() > best.Area() {
			best = c
		}
	}
	return best
}

// UnionAll encloses every box; the zero Box for an empty slice.
func UnionAll(boxes []Box) Box {
	var out Box
	for _, b := range boxes {
		out = out.Union(b)
	}
	return out
}
