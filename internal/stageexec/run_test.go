package stageexec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"motioncomic/internal/logging"
	"motioncomic/internal/services"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		records = append(records, record)
	}
	return records
}

func TestRunLogsCompletionWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler, _ := logging.NewHandler(&buf, "json", "debug", false)

	var sawStage string
	err := Run(context.Background(), slog.New(handler), "build", func(ctx context.Context, _ *slog.Logger) ([]logging.Attr, error) {
		sawStage, _ = services.StageFromContext(ctx)
		return []logging.Attr{logging.Int("events", 12)}, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawStage != "build" {
		t.Fatalf("stage not propagated on context: %q", sawStage)
	}

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("expected start and completion records, got %d", len(records))
	}
	done := records[1]
	if done[logging.FieldEventType] != "stage_complete" || done["events"] != 12.0 || done[logging.FieldStage] != "build" {
		t.Fatalf("unexpected completion record: %v", done)
	}
}

func TestRunLogsFailureCategory(t *testing.T) {
	var buf bytes.Buffer
	handler, _ := logging.NewHandler(&buf, "json", "info", false)

	want := services.Wrap(services.ErrStructuralIntegrity, "timeline", "build", "duplicate panel p000-r00", nil)
	err := Run(context.Background(), slog.New(handler), "build", func(context.Context, *slog.Logger) ([]logging.Attr, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected original error, got %v", err)
	}

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected one failure record, got %d", len(records))
	}
	failure := records[0]
	if failure[logging.FieldEventType] != "stage_failure" || failure["error_category"] != string(services.CategoryStructural) {
		t.Fatalf("unexpected failure record: %v", failure)
	}
	if !strings.Contains(failure["error_message"].(string), "duplicate panel") {
		t.Fatalf("unexpected error message: %v", failure["error_message"])
	}
}
