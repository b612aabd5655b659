package archive

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// PDF serves the largest embedded raster image of each page. Vector-only
// pages have no raster and fail to decode.
type PDF struct {
	path  string
	pages int
}

// OpenPDF counts the pages of a PDF.
func OpenPDF(filename string) (*PDF, error) {
	n, err := api.PageCountFile(filename)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "archive", "open", filename, err)
	}
	return &PDF{path: filename, pages: n}, nil
}

func (p *PDF) Name() string { return p.path }
func (p *PDF) Len() int     { return p.pages }
func (p *PDF) Close() error { return nil }

func pdfConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

func (p *PDF) Decode(ctx context.Context, index int) (scene.Page, error) {
	if err := ctx.Err(); err != nil {
		return scene.Page{}, err
	}
	if err := checkIndex(p, index); err != nil {
		return scene.Page{}, err
	}
	name := fmt.Sprintf("%s#page=%d", p.path, index+1)

	f, err := os.Open(p.path)
	if err != nil {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", name, err)
	}
	defer f.Close()

	var best image.Image
	var bestArea int
	var lastErr error
	digest := func(img model.Image, _ bool, _ int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			lastErr = err
			return nil
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			lastErr = fmt.Errorf("image %s (%s): %w", img.Name, img.FileType, err)
			return nil
		}
		if area := decoded.Bounds().Dx() * decoded.Bounds().Dy(); area > bestArea {
			best, bestArea = decoded, area
		}
		return nil
	}
	if err := api.ExtractImages(f, []string{strconv.Itoa(index + 1)}, digest, pdfConfig()); err != nil {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", name, err)
	}
	if best == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("page has no raster image")
		}
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", name, lastErr)
	}
	b := best.Bounds()
	return scene.Page{Index: index, Width: b.Dx(), Height: b.Dy(), Image: best, Source: name}, nil
}
