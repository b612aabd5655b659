package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"motioncomic/internal/archive"
	"motioncomic/internal/render"
)

func makeDir(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, Options{})
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldExtractionDirs(t *testing.T) {
	work := t.TempDir()
	old := filepath.Join(work, archive.ExtractDirPrefix+"old")
	recent := filepath.Join(work, archive.ExtractDirPrefix+"recent")
	foreign := filepath.Join(work, "user-notes")
	makeDir(t, old, 0)
	if err := os.WriteFile(filepath.Join(old, "page1.png"), make([]byte, 128), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	makeDir(t, old, 2*time.Hour)
	makeDir(t, recent, 0)
	makeDir(t, foreign, 2*time.Hour)

	result := CleanStale(context.Background(), work, time.Hour, Options{})
	if len(result.Removed) != 1 || result.Removed[0].Path != old {
		t.Fatalf("unexpected removals: %#v", result.Removed)
	}
	if result.Reclaimed() != 128 {
		t.Fatalf("unexpected reclaimed size %d", result.Reclaimed())
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old extraction directory should have been removed")
	}
	for _, keep := range []string{recent, foreign} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should still exist", keep)
		}
	}
}

func TestCleanStaleDryRun(t *testing.T) {
	work := t.TempDir()
	old := filepath.Join(work, archive.ExtractDirPrefix+"old")
	makeDir(t, old, 3*time.Hour)

	result := CleanStale(context.Background(), work, time.Hour, Options{DryRun: true})
	if !result.DryRun || len(result.Removed) != 1 {
		t.Fatalf("unexpected dry run result: %#v", result)
	}
	if _, err := os.Stat(old); err != nil {
		t.Fatal("dry run must not delete")
	}
}

func TestCleanOrphanedKeepsReferencedPlans(t *testing.T) {
	out := t.TempDir()
	kept := filepath.Join(out, "issue-1-aaaa")
	orphan := filepath.Join(out, "issue-2-bbbb")
	unrelated := filepath.Join(out, "covers")
	for _, dir := range []string{kept, orphan} {
		makeDir(t, dir, 0)
		if err := os.WriteFile(filepath.Join(dir, render.TimelineFile), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write timeline: %v", err)
		}
	}
	makeDir(t, unrelated, 0)

	result := CleanOrphaned(context.Background(), out, map[string]struct{}{kept: {}}, Options{})
	if len(result.Removed) != 1 || result.Removed[0].Path != orphan {
		t.Fatalf("unexpected removals: %#v", result.Removed)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Error("referenced plan should survive")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("directories without a timeline are not plans")
	}
}

func TestCleanStopsOnCanceledContext(t *testing.T) {
	work := t.TempDir()
	makeDir(t, filepath.Join(work, archive.ExtractDirPrefix+"a"), 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := CleanStale(ctx, work, time.Hour, Options{})
	if len(result.Removed) != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected cancellation error, got %#v", result)
	}
}

func TestListDirectoriesIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".motioncomic.lock"), nil, 0o644); err != nil {
		t.Fatalf("write lock: %v", err)
	}
	makeDir(t, filepath.Join(root, "plan"), 0)

	dirs, err := ListDirectories(root)
	if err != nil || len(dirs) != 1 || dirs[0].Name != "plan" {
		t.Fatalf("unexpected listing: %#v %v", dirs, err)
	}
}
