package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"motioncomic/internal/archive"
	"motioncomic/internal/config"
	"motioncomic/internal/logging"
	"motioncomic/internal/logs"
	"motioncomic/internal/notifications"
	"motioncomic/internal/pipeline"
	"motioncomic/internal/preflight"
	"motioncomic/internal/render"
	"motioncomic/internal/runstore"
	"motioncomic/internal/services"
	"motioncomic/internal/textutil"
)

// outputLockName guards the output directory against concurrent runs.
const outputLockName = ".motioncomic.lock"

type runOptions struct {
	stageInputs
	noStills bool
	jsonOut  bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <archive>",
		Short: "Build a timeline from a comic archive and write its render plan",
		Long: "Reads a CBZ, CBR, PDF or image directory, detects and orders panels, " +
			"recognizes lettering, schedules the timeline and writes the render plan " +
			"(timeline.json, subtitles.srt, panels.ffconcat and panel stills).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.textsPath, "texts", "", "JSON file of sub-region id to text, used instead of OCR")
	cmd.Flags().StringVar(&opts.speakersPath, "speakers", "", "JSON file of text unit id to speaker id")
	cmd.Flags().BoolVar(&opts.noStills, "no-stills", false, "Skip writing panel stills")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the run summary as JSON")
	return cmd
}

func runArchive(cmd *cobra.Command, cctx *commandContext, path string, opts runOptions) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	base, err := cctx.ensureLogger()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if blocking := preflight.Blocking(preflight.RunAll(ctx, cfg)); len(blocking) > 0 {
		return preflightError(blocking)
	}

	lock := flock.New(filepath.Join(cfg.Paths.OutputDir, outputLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output directory: %w", err)
	}
	if !ok {
		return fmt.Errorf("another motioncomic run is writing to %s", cfg.Paths.OutputDir)
	}
	defer func() { _ = lock.Unlock() }()

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	handler, closer, err := logging.NewRunFileHandler(logs.RunLogPath(cfg.Paths.LogDir, runID), cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := logging.WithContext(ctx, logging.TeeLogger(base, handler))

	stages, stageCloser, err := buildStages(cfg, opts.stageInputs, logger)
	if err != nil {
		return err
	}
	defer stageCloser.Close()

	src, err := archive.Open(ctx, path, cfg.ArchiveOptions())
	if err != nil {
		return err
	}
	defer src.Close()

	runner, err := pipeline.New(pipeline.Config{
		Workers:            cfg.Workers.Pages,
		AbortOnPageFailure: cfg.Workers.AbortOnPageFailure,
	}, stages, logger)
	if err != nil {
		return err
	}

	return cctx.withStore(func(store *runstore.Store) error {
		if _, err := store.Create(ctx, runID, path); err != nil {
			return err
		}
		result, runErr := runner.Run(ctx, src)
		if err := store.Finish(context.WithoutCancel(ctx), runID, result, runErr); err != nil {
			return errors.Join(runErr, fmt.Errorf("record run: %w", err))
		}
		if runErr != nil {
			notify(ctx, cfg, logger, notifications.EventRunFailed, notifications.Payload{
				"archive": filepath.Base(path),
				"error":   runErr,
			})
			return runErr
		}

		outDir := planDir(cfg, path, runID)
		writer := &render.PlanWriter{Dir: outDir, Logger: logger}
		if !opts.noStills {
			writer.Stills = render.NewPageStills(src, result.Pages)
		}
		if _, err := writer.Consume(ctx, result.Timeline); err != nil {
			return err
		}
		if err := store.SetOutputDir(ctx, runID, outDir); err != nil {
			return err
		}

		run, err := store.Get(ctx, runID)
		if err != nil {
			return err
		}
		notify(ctx, cfg, logger, notifications.EventRunCompleted, notifications.Payload{
			"archive":     filepath.Base(path),
			"panels":      run.PanelCount,
			"duration":    run.Duration,
			"diagnostics": len(result.Diagnostics),
		})

		summary := newRunSummary(run, result.Diagnostics)
		out := cmd.OutOrStdout()
		if opts.jsonOut {
			return writeJSON(out, summary)
		}
		printRunSummary(out, summary, shouldColorize(out))
		return nil
	})
}

// planDir names the render plan directory of a run after its archive.
func planDir(cfg *config.Config, archivePath, runID string) string {
	name := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	run := runstore.Run{ID: runID}
	return filepath.Join(cfg.Paths.OutputDir, textutil.Slug(name)+"-"+run.ShortID())
}

func preflightError(blocking []preflight.Result) error {
	parts := make([]string, 0, len(blocking))
	for _, r := range blocking {
		parts = append(parts, r.Name+": "+r.Detail)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "run", strings.Join(parts, "; "), nil)
}
