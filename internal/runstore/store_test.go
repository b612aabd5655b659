package runstore_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"motioncomic/internal/diagnostics"
	"motioncomic/internal/logging"
	"motioncomic/internal/ocr"
	"motioncomic/internal/pipeline"
	"motioncomic/internal/runstore"
	"motioncomic/internal/services"
	"motioncomic/internal/testsupport"
	"motioncomic/internal/testsupport/testenv"
	"motioncomic/internal/timeline"
)

func gridResult(t *testing.T, failures map[int]string) *pipeline.Result {
	t.Helper()
	src := &testsupport.MemorySource{Label: "issue-1.cbz", Failures: failures}
	for i := range 2 {
		src.Pages = append(src.Pages, testsupport.GridPage(i, 400, 600, 2, 2))
	}
	runner, err := pipeline.New(pipeline.DefaultConfig(), pipeline.DefaultStages(ocr.Static{}), logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	result, err := runner.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testenv.NewConfig(t)
	store := testenv.MustOpenStore(t, cfg)

	run := testenv.NewRun(t, store, "0f3c9a52-1111-4e0b-9a57-2d6c2f1d7a10", "issue-1.cbz")
	if run == nil || run.Status != runstore.StatusRunning || run.Archive != "issue-1.cbz" {
		t.Fatalf("unexpected run: %#v", run)
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}
	store.Close()

	reopened, err := runstore.OpenPath(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), run.ID)
	if err != nil || got == nil {
		t.Fatalf("Get after reopen: %v %v", got, err)
	}
}

func TestFinishStoresTimelineAndDiagnostics(t *testing.T) {
	store := testenv.MustOpenStore(t, testenv.NewConfig(t))
	ctx := context.Background()
	run := testenv.NewRun(t, store, "run-a", "issue-1.cbz")

	result := gridResult(t, map[int]string{1: "truncated"})
	if err := store.Finish(ctx, run.ID, result, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != runstore.StatusCompleted || got.PageCount != 2 || got.PagesFailed != 1 || got.PanelCount != 4 {
		t.Fatalf("unexpected run summary: %#v", got)
	}
	if got.Duration != result.Timeline.Duration() {
		t.Fatalf("unexpected duration: got %v want %v", got.Duration, result.Timeline.Duration())
	}
	tl, err := got.Timeline()
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	want, _ := timeline.Marshal(result.Timeline)
	have, _ := timeline.Marshal(tl)
	if !bytes.Equal(want, have) {
		t.Fatal("stored timeline differs from the run result")
	}

	diags, err := store.Diagnostics(ctx, run.ID)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diags) != 1 || diags[0].Stage != "decode" || diags[0].Page != 1 || diags[0].Kind != services.CategoryCollaborator {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestFinishFailedRun(t *testing.T) {
	store := testenv.MustOpenStore(t, testenv.NewConfig(t))
	ctx := context.Background()
	run := testenv.NewRun(t, store, "run-b", "broken.cbz")

	result := &pipeline.Result{
		Archive:     "broken.cbz",
		PageCount:   1,
		PagesFailed: []int{0},
		Diagnostics: []diagnostics.Diagnostic{{Kind: services.CategoryCollaborator, Stage: "decode", Page: 0, Message: "bad"}},
	}
	if err := store.Finish(ctx, run.ID, result, pipeline.ErrAllPagesFailed); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got, _ := store.Get(ctx, run.ID)
	if got.Status != runstore.StatusFailed || got.ErrorMessage == "" || len(got.TimelineJSON) != 0 {
		t.Fatalf("unexpected failed run: %#v", got)
	}
	if _, err := got.Timeline(); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing timeline, got %v", err)
	}
}

func TestUpdateTimelineAfterReflow(t *testing.T) {
	store := testenv.MustOpenStore(t, testenv.NewConfig(t))
	ctx := context.Background()
	run := testenv.NewRun(t, store, "run-c", "issue-1.cbz")
	result := gridResult(t, nil)
	if err := store.Finish(ctx, run.ID, result, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	first := timeline.VisualID(result.Timeline.Panels()[0])
	reflowed, err := timeline.Reflow(result.Timeline, map[timeline.EventID]time.Duration{first: 10 * time.Second})
	if err != nil {
		t.Fatalf("Reflow: %v", err)
	}
	if err := store.UpdateTimeline(ctx, run.ID, reflowed); err != nil {
		t.Fatalf("UpdateTimeline: %v", err)
	}
	got, _ := store.Get(ctx, run.ID)
	if got.Duration != reflowed.Duration() || got.Duration <= result.Timeline.Duration() {
		t.Fatalf("unexpected stored duration: got %v reflowed %v original %v", got.Duration, reflowed.Duration(), result.Timeline.Duration())
	}

	if err := store.UpdateTimeline(ctx, "missing", reflowed); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown run, got %v", err)
	}
}

func TestResolvePrefix(t *testing.T) {
	store := testenv.MustOpenStore(t, testenv.NewConfig(t))
	ctx := context.Background()
	testenv.NewRun(t, store, "abc12345-0000", "a.cbz")
	testenv.NewRun(t, store, "abc99999-0000", "b.cbz")

	run, err := store.Resolve(ctx, "abc1")
	if err != nil || run == nil || run.Archive != "a.cbz" {
		t.Fatalf("Resolve(abc1) = %v, %v", run, err)
	}
	if _, err := store.Resolve(ctx, "abc"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if _, err := store.Resolve(ctx, "zzz"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListStatsAndRemove(t *testing.T) {
	store := testenv.MustOpenStore(t, testenv.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		testenv.NewRun(t, store, id, id+".cbz")
	}
	if err := store.Finish(ctx, "r2", nil, errors.New("boom")); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := store.SetOutputDir(ctx, "r3", filepath.Join(t.TempDir(), "out")); err != nil {
		t.Fatalf("SetOutputDir: %v", err)
	}

	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List: %d runs, %v", len(all), err)
	}
	if all[0].ID != "r3" || all[0].OutputDir == "" {
		t.Fatalf("expected newest run first with output dir, got %#v", all[0])
	}
	failed, err := store.List(ctx, 0, runstore.StatusFailed)
	if err != nil || len(failed) != 1 || failed[0].ID != "r2" {
		t.Fatalf("unexpected failed runs: %v %v", failed, err)
	}
	limited, _ := store.List(ctx, 2)
	if len(limited) != 2 {
		t.Fatalf("unexpected limited list length: %d", len(limited))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[runstore.StatusRunning] != 2 || stats[runstore.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	removed, err := store.Remove(ctx, "r1")
	if err != nil || !removed {
		t.Fatalf("Remove: %v %v", removed, err)
	}
	if run, _ := store.Get(ctx, "r1"); run != nil {
		t.Fatalf("expected run to be gone, got %#v", run)
	}
}

func TestRunShortID(t *testing.T) {
	run := runstore.Run{ID: "0123456789"}
	if run.ShortID() != "01234567" {
		t.Fatalf("unexpected short id %q", run.ShortID())
	}
	if (&runstore.Run{ID: "abc"}).ShortID() != "abc" {
		t.Fatal("short ids should be kept whole")
	}
}
