package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"motioncomic/internal/testsupport/testenv"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOCR_Disabled(t *testing.T) {
	cfg := testenv.NewConfig(t)
	result := CheckOCR(cfg)
	if !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("expected disabled OCR to pass, got %#v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_MissingDirectoriesBlock(t *testing.T) {
	cfg := testenv.NewConfig(t)
	results := RunAll(context.Background(), cfg)

	blocking := Blocking(results)
	if len(blocking) != 3 {
		t.Fatalf("expected the three directories to block before EnsureDirectories, got %v", blocking)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if blocking := Blocking(RunAll(context.Background(), cfg)); len(blocking) != 0 {
		t.Fatalf("expected no blocking results, got %v", blocking)
	}
}

func TestRunAll_OptionalToolsNeverBlock(t *testing.T) {
	cfg := testenv.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	t.Setenv("PATH", "")

	results := RunAll(context.Background(), cfg)
	var optional int
	for _, r := range results {
		if r.Optional {
			optional++
			if r.Passed {
				t.Fatalf("expected %s to be missing with empty PATH", r.Name)
			}
		}
	}
	if optional != 2 {
		t.Fatalf("expected ffmpeg and extractor checks, got %d optional results", optional)
	}
	if blocking := Blocking(results); len(blocking) != 0 {
		t.Fatalf("optional tools must not block, got %v", blocking)
	}
}

func TestRunAll_StubbedToolsPass(t *testing.T) {
	cfg := testenv.NewConfig(t, testenv.WithStubbedBinaries("ffmpeg", "unrar"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, r := range RunAll(context.Background(), cfg) {
		if !r.Passed {
			t.Fatalf("expected %s to pass, got %q", r.Name, r.Detail)
		}
	}
}
