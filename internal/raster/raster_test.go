package raster

import (
	"image"
	"image/color"
	"testing"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(10, 10, 10+w, 10+h))
	for y := 10; y < 10+h; y++ {
		for x := 10; x < 10+w; x++ {
			if x < 10+w/2 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestGrayAnchorsAtOrigin(t *testing.T) {
	g := Gray(checker(8, 4))
	if g.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Fatalf("unexpected bounds: got %v", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 255 || g.GrayAt(7, 3).Y != 0 {
		t.Fatalf("unexpected luminance: left=%d right=%d", g.GrayAt(0, 0).Y, g.GrayAt(7, 3).Y)
	}
}

func TestThresholdCounts(t *testing.T) {
	g := Gray(checker(8, 4))
	white := Threshold(g, 200)
	if got := white.CountRow(0, 0, 8); got != 4 {
		t.Fatalf("unexpected row count: got %d want 4", got)
	}
	if got := white.CountCol(0, 0, 4); got != 4 {
		t.Fatalf("unexpected column count: got %d want 4", got)
	}
	if got := white.Count(image.Rect(0, 0, 8, 4)); got != 16 {
		t.Fatalf("unexpected total: got %d want 16", got)
	}
	dark := ThresholdBelow(g, 200)
	if !dark.At(7, 0) || dark.At(0, 0) {
		t.Fatal("ThresholdBelow should invert the mask")
	}
	if white.At(-1, 0) || white.At(8, 0) {
		t.Fatal("out-of-range reads should be false")
	}
}

func TestDownsample(t *testing.T) {
	g := Gray(checker(40, 20))
	small := Downsample(g, 4)
	if small.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("unexpected bounds: got %v", small.Bounds())
	}
	if Downsample(g, 1) != g {
		t.Fatal("factor 1 should return the input")
	}
}

func TestCropClipsToBounds(t *testing.T) {
	img := checker(8, 4)
	out := Crop(img, image.Rect(14, 10, 30, 12))
	if out.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("unexpected crop bounds: got %v", out.Bounds())
	}
	if _, err := EncodePNG(out); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func TestGrayRect(t *testing.T) {
	img := checker(8, 4)
	g := GrayRect(img, image.Rect(12, 10, 16, 14))
	if g.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("unexpected bounds: got %v", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 255 || g.GrayAt(3, 0).Y != 0 {
		t.Fatalf("unexpected luminance: left=%d right=%d", g.GrayAt(0, 0).Y, g.GrayAt(3, 0).Y)
	}
}
