package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"motioncomic/internal/geometry"
	"motioncomic/internal/scene"
)

// Panel frame and fill used by synthetic pages.
const (
	FrameWidth = 3
	PanelFill  = 128
)

// GridBoxes returns the frames of a rows x cols panel grid on a page of the
// given size, row-major from the top-left panel.
func GridBoxes(width, height, rows, cols int) []geometry.Box {
	mx, my := width/20, height/20
	gx, gy := width/25, height/25
	pw := (width - 2*mx - (cols-1)*gx) / cols
	ph := (height - 2*my - (rows-1)*gy) / rows

	boxes := make([]geometry.Box, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := mx + c*(pw+gx)
			y := my + r*(ph+gy)
			boxes = append(boxes, geometry.NewBox(float64(x), float64(y), float64(pw), float64(ph)))
		}
	}
	return boxes
}

// GridPage draws a white page with a rows x cols grid of framed, gray-filled
// panels.
func GridPage(index, width, height, rows, cols int) scene.Page {
	img := image.NewGray(image.Rect(0, 0, width, height))
	Fill(img, img.Bounds(), 255)
	for _, box := range GridBoxes(width, height, rows, cols) {
		DrawPanel(img, box.Rect())
	}
	return PageFromImage(index, img)
}

// FilledPage returns a page of uniform luminance, useful for full-bleed art.
func FilledPage(index, width, height int, level uint8) scene.Page {
	img := image.NewGray(image.Rect(0, 0, width, height))
	Fill(img, img.Bounds(), level)
	return PageFromImage(index, img)
}

// PageFromImage wraps img as a page.
func PageFromImage(index int, img image.Image) scene.Page {
	b := img.Bounds()
	return scene.Page{Index: index, Width: b.Dx(), Height: b.Dy(), Image: img}
}

// DrawPanel draws a framed panel with a gray interior.
func DrawPanel(img *image.Gray, r image.Rectangle) {
	Fill(img, r, 0)
	Fill(img, r.Inset(FrameWidth), PanelFill)
}

// Fill paints r with a constant luminance.
func Fill(img *image.Gray, r image.Rectangle, level uint8) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
}

// FillEllipse paints the ellipse inscribed in r.
func FillEllipse(img *image.Gray, r image.Rectangle, level uint8) {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				img.SetGray(x, y, color.Gray{Y: level})
			}
		}
	}
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
