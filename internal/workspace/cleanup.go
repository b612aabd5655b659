// Package workspace reclaims disk space left behind by runs: archive
// extraction directories abandoned in the work directory, and render plan
// directories in the output directory that no stored run refers to.
package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"motioncomic/internal/archive"
	"motioncomic/internal/logging"
	"motioncomic/internal/render"
)

// DirInfo describes a directory considered for cleanup.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanResult contains the outcome of a cleanup pass. With DryRun set the
// directories in Removed are only reported.
type CleanResult struct {
	Removed []DirInfo
	Errors  []CleanupError
	DryRun  bool
}

// Reclaimed sums the sizes of the removed directories.
func (r CleanResult) Reclaimed() int64 {
	var total int64
	for _, d := range r.Removed {
		total += d.Size
	}
	return total
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path string
	Err  error
}

// Options control a cleanup pass.
type Options struct {
	DryRun bool
	Logger *slog.Logger
}

// CleanStale removes extraction directories under workDir older than
// maxAge. Other entries of workDir are left alone.
func CleanStale(ctx context.Context, workDir string, maxAge time.Duration, opts Options) CleanResult {
	cutoff := time.Now().Add(-maxAge)
	return clean(ctx, workDir, opts, "work", func(d DirInfo) bool {
		return strings.HasPrefix(d.Name, archive.ExtractDirPrefix) && d.ModTime.Before(cutoff)
	})
}

// CleanOrphaned removes render plan directories under outputDir whose path
// is not in keep. Only directories holding a timeline file count as plans.
func CleanOrphaned(ctx context.Context, outputDir string, keep map[string]struct{}, opts Options) CleanResult {
	return clean(ctx, outputDir, opts, "output", func(d DirInfo) bool {
		if _, ok := keep[filepath.Clean(d.Path)]; ok {
			return false
		}
		info, err := os.Stat(filepath.Join(d.Path, render.TimelineFile))
		return err == nil && !info.IsDir()
	})
}

func clean(ctx context.Context, root string, opts Options, area string, match func(DirInfo) bool) CleanResult {
	result := CleanResult{DryRun: opts.DryRun}
	logger := logging.NewComponentLogger(opts.Logger, "workspace")

	dirs, err := ListDirectories(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Err: err})
		return result
	}
	for _, dir := range dirs {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Err: ctx.Err()})
			return result
		}
		if !match(dir) {
			continue
		}
		if !opts.DryRun {
			if err := os.RemoveAll(dir.Path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Err: err})
				logger.Warn("failed to remove directory",
					logging.String("path", dir.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check "+area+" directory permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
				continue
			}
		}
		result.Removed = append(result.Removed, dir)
		logger.Info("removed directory",
			logging.String("path", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.Bool("dry_run", opts.DryRun),
			logging.String(logging.FieldEventType, "cleanup_"+area),
		)
	}
	return result
}

// ListDirectories returns the directories directly under root with their
// sizes. A blank or missing root yields nothing.
func ListDirectories(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(root, entry.Name())
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    dirSize(path),
		})
	}
	return dirs, nil
}

// dirSize sums regular file sizes below path, skipping unreadable entries.
func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
