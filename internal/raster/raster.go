// Package raster converts decoded pages into the grayscale grids the
// detection and classification stages scan.
package raster

import (
	"bytes"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Gray returns img as an 8-bit grayscale image whose bounds start at the
// origin. Gray images already anchored at the origin are returned as-is.
func Gray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// GrayRect converts only the rectangle r of img (in img's coordinate space)
// into a grayscale image anchored at the origin. r is clipped to img's
// bounds.
func GrayRect(img image.Image, r image.Rectangle) *image.Gray {
	r = r.Intersect(img.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// Downsample shrinks g by an integer factor using bilinear filtering. A factor
// of one or less returns g unchanged.
func Downsample(g *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return g
	}
	b := g.Bounds()
	w := max(1, b.Dx()/factor)
	h := max(1, b.Dy()/factor)
	out := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), g, b, draw.Src, nil)
	return out
}

// Crop copies the rectangle r of img (in img's coordinate space) into a new
// RGBA image anchored at the origin. r is clipped to img's bounds.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// EncodePNG returns the PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Grid is a row-major threshold mask over a grayscale image.
type Grid struct {
	Width  int
	Height int
	cells  []bool
}

// Threshold marks every pixel whose luminance is at least level.
func Threshold(g *image.Gray, level uint8) *Grid {
	b := g.Bounds()
	grid := &Grid{Width: b.Dx(), Height: b.Dy(), cells: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < grid.Height; y++ {
		row := g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride:]
		for x := 0; x < grid.Width; x++ {
			grid.cells[y*grid.Width+x] = row[x+b.Min.X-g.Rect.Min.X] >= level
		}
	}
	return grid
}

// ThresholdBelow marks every pixel whose luminance is strictly below level.
func ThresholdBelow(g *image.Gray, level uint8) *Grid {
	grid := Threshold(g, level)
	for i, v := range grid.cells {
		grid.cells[i] = !v
	}
	return grid
}

// At reports the mask value at (x, y); out-of-range reads are false.
func (m *Grid) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.cells[y*m.Width+x]
}

// CountRow returns how many set cells row y has in [x0, x1).
func (m *Grid) CountRow(y, x0, x1 int) int {
	n := 0
	base := y * m.Width
	for x := x0; x < x1; x++ {
		if m.cells[base+x] {
			n++
		}
	}
	return n
}

// CountCol returns how many set cells column x has in [y0, y1).
func (m *Grid) CountCol(x, y0, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		if m.cells[y*m.Width+x] {
			n++
		}
	}
	return n
}

// Count returns the number of set cells inside r.
func (m *Grid) Count(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		n += m.CountRow(y, r.Min.X, r.Max.X)
	}
	return n
}
