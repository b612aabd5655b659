package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"motioncomic/internal/config"
	"motioncomic/internal/testsupport"
	"motioncomic/internal/testsupport/testenv"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	archiveDir string
}

// setupCLITestEnv writes a config pointing at temp directories and a
// two-page image directory of 2x2 panel grids.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testenv.NewConfig(t, testenv.WithWorkers(2))
	base := testenv.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	archiveDir := filepath.Join(base, "issue-1")
	for i := range 2 {
		page := testsupport.GridPage(i, 400, 600, 2, 2)
		testsupport.WritePNG(t, filepath.Join(archiveDir, fmt.Sprintf("page%02d.png", i+1)), page.Image)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, archiveDir: archiveDir}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
work_dir = %q
log_dir = %q
database = %q

[ocr]
enabled = false

[workers]
pages = %d

[notifications]
ntfy_topic = %q

[logging]
level = "error"
`,
		cfg.Paths.OutputDir,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Paths.Database,
		cfg.Workers.Pages,
		cfg.Notifications.NtfyTopic,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
