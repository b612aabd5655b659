package archive

import (
	"archive/zip"
	"context"
	"path"
	"slices"
	"strings"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// CBZ reads pages straight from a zip archive without extracting it.
type CBZ struct {
	path   string
	reader *zip.ReadCloser
	pages  []*zip.File
}

// OpenCBZ indexes the image entries of a zip archive.
func OpenCBZ(filename string) (*CBZ, error) {
	rc, err := zip.OpenReader(filename)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "archive", "open", filename, err)
	}
	var pages []*zip.File
	for _, f := range rc.File {
		name := f.Name
		if f.FileInfo().IsDir() || strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), ".") {
			continue
		}
		if IsImage(name) {
			pages = append(pages, f)
		}
	}
	slices.SortFunc(pages, func(a, b *zip.File) int { return compareNatural(a.Name, b.Name) })
	return &CBZ{path: filename, reader: rc, pages: pages}, nil
}

func (c *CBZ) Name() string { return c.path }
func (c *CBZ) Len() int     { return len(c.pages) }

// Pages returns the entry names in page order.
func (c *CBZ) Pages() []string {
	out := make([]string, len(c.pages))
	for i, f := range c.pages {
		out[i] = f.Name
	}
	return out
}

func (c *CBZ) Decode(ctx context.Context, index int) (scene.Page, error) {
	if err := ctx.Err(); err != nil {
		return scene.Page{}, err
	}
	if err := checkIndex(c, index); err != nil {
		return scene.Page{}, err
	}
	f := c.pages[index]
	rc, err := f.Open()
	if err != nil {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", f.Name, err)
	}
	defer rc.Close()
	return decodePage(rc, index, f.Name)
}

func (c *CBZ) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
