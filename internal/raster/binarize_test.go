package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarizeKeepsStrokesUnderUnevenLight(t *testing.T) {
	// Background fades from light grey to white; a 3px dark stroke crosses it.
	g := image.NewGray(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			level := uint8(180 + x)
			if y >= 8 && y < 11 && x >= 5 && x < 35 {
				level -= 100
			}
			g.SetGray(x, y, color.Gray{Y: level})
		}
	}

	out := Binarize(g, 11, 7)
	if out.Bounds() != image.Rect(0, 0, 40, 20) {
		t.Fatalf("unexpected bounds: %v", out.Bounds())
	}
	if got := out.GrayAt(20, 9).Y; got != 0 {
		t.Errorf("stroke pixel = %d, want 0", got)
	}
	for _, p := range []image.Point{{2, 2}, {38, 2}, {20, 17}} {
		if got := out.GrayAt(p.X, p.Y).Y; got != 0xff {
			t.Errorf("background %v = %d, want 255", p, got)
		}
	}
}

func TestBinarizeClearsIsolatedSpecks(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 15, 15))
	for i := range g.Pix {
		g.Pix[i] = 0xf0
	}
	g.SetGray(7, 7, color.Gray{Y: 0})

	out := Binarize(g, 11, 7)
	if got := out.GrayAt(7, 7).Y; got != 0xff {
		t.Fatalf("speck survived: %d", got)
	}
}

func TestBinarizeEmpty(t *testing.T) {
	if out := Binarize(image.NewGray(image.Rectangle{}), 11, 7); !out.Bounds().Empty() {
		t.Fatalf("unexpected bounds: %v", out.Bounds())
	}
}
