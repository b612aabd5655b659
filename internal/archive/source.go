package archive

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// Source is an ordered, randomly accessible set of pages. Decode is safe for
// concurrent use.
type Source interface {
	Name() string
	Len() int
	Decode(ctx context.Context, index int) (scene.Page, error)
	Close() error
}

// Options tune how containers are opened.
type Options struct {
	// WorkDir receives temporary extractions; empty uses the system
	// temporary directory.
	WorkDir string
	// Extractors are tried in order to unpack CBR archives.
	Extractors []string
}

// DefaultExtractors are the CBR extractors tried when none are configured.
var DefaultExtractors = []string{"unrar", "7z"}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImage reports whether name has a supported page image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Open picks a Source for path by its type and extension.
func Open(ctx context.Context, path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "archive", "open", path, err)
		}
		return nil, services.Wrap(services.ErrDecode, "archive", "open", path, err)
	}
	if info.IsDir() {
		return asSource(OpenDir(path))
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cbz", ".zip":
		return asSource(OpenCBZ(path))
	case ".cbr", ".rar":
		return asSource(OpenCBR(ctx, path, opts))
	case ".pdf":
		return asSource(OpenPDF(path))
	default:
		return nil, services.Wrap(services.ErrValidation, "archive", "open", fmt.Sprintf("unsupported archive format %q", ext), nil)
	}
}

// asSource keeps a failed open from handing back a typed nil pointer inside
// a non-nil Source.
func asSource[S Source](src S, err error) (Source, error) {
	if err != nil {
		return nil, err
	}
	return src, nil
}

func checkIndex(src Source, index int) error {
	if index < 0 || index >= src.Len() {
		return services.Wrap(services.ErrNotFound, "archive", "decode", fmt.Sprintf("page %d out of range [0,%d)", index, src.Len()), nil)
	}
	return nil
}

// decodePage decodes one page image. A zero-sized image is a decode failure.
func decodePage(r io.Reader, index int, name string) (scene.Page, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", fmt.Sprintf("page %d (%s)", index, name), err)
	}
	b := img.Bounds()
	if b.Empty() {
		return scene.Page{}, services.Wrap(services.ErrDecode, "archive", "decode", fmt.Sprintf("page %d (%s): empty image", index, name), nil)
	}
	return scene.Page{
		Index:  index,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  img,
		Source: name,
	}, nil
}
