package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// Dir is a directory tree of page images.
type Dir struct {
	root  string
	pages []string
	// cleanup removes root on Close when the directory is a temporary
	// extraction.
	cleanup bool
}

// OpenDir lists the page images under root, recursively.
func OpenDir(root string) (*Dir, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "__MACOSX") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(name, ".") && IsImage(name) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "archive", "list", root, err)
	}
	slices.SortFunc(pages, compareNatural)
	return &Dir{root: root, pages: pages}, nil
}

func (d *Dir) Name() string { return d.root }
func (d *Dir) Len() int     { return len(d.pages) }

// Pages returns the page names relative to the root, in order.
func (d *Dir) Pages() []string { return slices.Clone(d.pages) }

func (d *Dir) Decode(ctx context.Context, index int) (scene.Page, error) {
	if err := ctx.Err(); err != nil {
		return scene.Page{}, err
	}
	if err := checkIndex(d, index); err != nil {
		return scene.Page{}, err
	}
	name := d.pages[index]
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", name, err)
	}
	defer f.Close()
	return decodePage(f, index, name)
}

func (d *Dir) Close() error {
	if d == nil || !d.cleanup {
		return nil
	}
	return os.RemoveAll(d.root)
}

func compareNatural(a, b string) int {
	switch {
	case naturalLess(a, b):
		return -1
	case naturalLess(b, a):
		return 1
	default:
		return strings.Compare(a, b)
	}
}
