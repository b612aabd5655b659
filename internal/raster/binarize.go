package raster

import "image"

// Binarize applies a local mean threshold: a pixel turns white when it is
// brighter than the mean of its block x block neighbourhood minus offset,
// black otherwise. Isolated black pixels with fewer than two black
// neighbours are then cleared. The result is anchored at the origin.
func Binarize(img image.Image, block, offset int) *image.Gray {
	src := Gray(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if block < 3 {
		block = 3
	}
	radius := block / 2

	// integral has a zero row and column so window sums need no bounds
	// special cases.
	stride := w + 1
	integral := make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(src.Pix[y*src.Stride+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + row
		}
	}

	for y := 0; y < h; y++ {
		y0, y1 := max(y-radius, 0), min(y+radius+1, h)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius+1, w)
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] - integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / int64((y1-y0)*(x1-x0))
			if int64(src.Pix[y*src.Stride+x]) > mean-int64(offset) {
				out.Pix[y*out.Stride+x] = 0xff
			}
		}
	}
	despeckle(out)
	return out
}

func despeckle(g *image.Gray) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	var specks []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.Pix[y*g.Stride+x] != 0 {
				continue
			}
			dark := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if (dx != 0 || dy != 0) && nx >= 0 && ny >= 0 && nx < w && ny < h && g.Pix[ny*g.Stride+nx] == 0 {
						dark++
					}
				}
			}
			if dark < 2 {
				specks = append(specks, y*g.Stride+x)
			}
		}
	}
	for _, i := range specks {
		g.Pix[i] = 0xff
	}
}
