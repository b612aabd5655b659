package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"motioncomic/internal/config"
	"motioncomic/internal/deps"
	"motioncomic/internal/language"
	"motioncomic/internal/ocr"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOCR reports whether text extraction can run with the configured
// settings. A disabled OCR section passes; every text region is then
// narrated silently.
func CheckOCR(cfg *config.Config) Result {
	const name = "OCR"

	if !cfg.OCR.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if !ocr.Available() {
		return Result{Name: name, Detail: ocr.ErrOCRNotEnabled.Error()}
	}
	engine, err := ocr.NewTesseract(cfg.OCRConfig())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("tesseract init failed (%v)", err)}
	}
	_ = engine.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("tesseract %s, language %s", ocr.Version(), language.DisplayName(language.Parse(cfg.OCR.Language)))}
}

// CheckSystemDeps locates the optional external tools for the given config.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	return deps.LocateAll([]deps.Tool{
		{
			Name:       "FFmpeg",
			Purpose:    "Renders the panels.ffconcat plan into video",
			Optional:   true,
			Candidates: []string{"ffmpeg"},
		},
		{
			Name:       "RAR extractor",
			Purpose:    "Required for CBR archives",
			Optional:   true,
			Candidates: cfg.ArchiveOptions().Extractors,
		},
	})
}
