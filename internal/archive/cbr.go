package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"motioncomic/internal/services"
)

// ExtractDirPrefix names the temporary directories CBR archives are unpacked
// into under the work directory.
const ExtractDirPrefix = "motioncomic-cbr-"

// OpenCBR unpacks a rar archive into a temporary directory with the first
// extractor that succeeds, and serves it as a Dir that removes itself on
// Close.
func OpenCBR(ctx context.Context, filename string, opts Options) (*Dir, error) {
	extractors := opts.Extractors
	if len(extractors) == 0 {
		extractors = DefaultExtractors
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "archive", "open", filename, err)
	}

	var failures []string
	for _, extractor := range extractors {
		bin, err := exec.LookPath(extractor)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: not installed", extractor))
			continue
		}
		dir, err := os.MkdirTemp(opts.WorkDir, ExtractDirPrefix+"*")
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "archive", "open", "create extraction directory", err)
		}
		cmd := exec.CommandContext(ctx, bin, extractArgs(extractor, abs, dir)...)
		output, err := cmd.CombinedOutput()
		if err == nil {
			d, err := OpenDir(dir)
			if err != nil {
				_ = os.RemoveAll(dir)
				return nil, err
			}
			d.cleanup = true
			return d, nil
		}
		_ = os.RemoveAll(dir)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		failures = append(failures, fmt.Sprintf("%s: %v: %s", extractor, err, strings.TrimSpace(string(output))))
	}
	return nil, services.Wrap(services.ErrDecode, "archive", "open", filename,
		fmt.Errorf("extract rar archive (install unrar or 7z): %w", errors.New(strings.Join(failures, "; "))))
}

func extractArgs(extractor, archive, dir string) []string {
	switch filepath.Base(extractor) {
	case "7z", "7za", "7zz":
		return []string{"x", "-y", "-o" + dir, archive}
	default:
		return []string{"x", "-o+", "-y", archive, dir + string(filepath.Separator)}
	}
}
