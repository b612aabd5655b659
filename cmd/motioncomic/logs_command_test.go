package main

import (
	"os"
	"strings"
	"testing"

	"motioncomic/internal/logs"
)

func TestLogsCommandFiltersByLevel(t *testing.T) {
	env := setupCLITestEnv(t)
	summary := runArchiveJSON(t, env)

	path := logs.RunLogPath(env.cfg.Paths.LogDir, summary.ID)
	lines := strings.Join([]string{
		`{"ts":"2026-10-16T09:00:00.000Z","level":"debug","msg":"page resolved","page":0}`,
		`{"ts":"2026-10-16T09:00:01.000Z","level":"warn","msg":"page skipped","page":1,"event_type":"page_skipped"}`,
		"",
	}, "\n")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	if _, err := f.WriteString(lines); err != nil {
		t.Fatalf("append run log: %v", err)
	}
	_ = f.Close()

	out, _, err := runCLI(t, env.configPath, "logs", summary.ID[:8], "--level", "warn")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "page skipped")
	if strings.Contains(out, "page resolved") {
		t.Fatalf("debug line should be filtered:\n%s", out)
	}

	out, _, err = runCLI(t, env.configPath, "logs", summary.ID, "--raw", "-n", "1")
	if err != nil {
		t.Fatalf("logs --raw: %v", err)
	}
	if strings.TrimSpace(out) != strings.Split(lines, "\n")[1] {
		t.Fatalf("unexpected raw tail:\n%s", out)
	}
}
