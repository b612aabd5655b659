package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"motioncomic/internal/logging"
	"motioncomic/internal/runstore"
	"motioncomic/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale extraction directories and orphaned render plans",
		Long: "Removes archive extraction directories in the work directory older than " +
			"--older-than, and render plan directories in the output directory that no " +
			"stored run refers to.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = cfg.WorkMaxAge()
			}

			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, outputLockName))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock output directory: %w", err)
			}
			if !ok {
				return fmt.Errorf("a motioncomic run is writing to %s; try again later", cfg.Paths.OutputDir)
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), 0)
				if err != nil {
					return err
				}
				keep := make(map[string]struct{}, len(runs))
				for _, run := range runs {
					if run.OutputDir != "" {
						keep[filepath.Clean(run.OutputDir)] = struct{}{}
					}
				}

				opts := workspace.Options{DryRun: dryRun, Logger: logger}
				stale := workspace.CleanStale(cmd.Context(), cfg.Paths.WorkDir, olderThan, opts)
				orphaned := workspace.CleanOrphaned(cmd.Context(), cfg.Paths.OutputDir, keep, opts)

				out := cmd.OutOrStdout()
				printCleanResult(out, "Stale extractions", stale)
				printCleanResult(out, "Orphaned plans", orphaned)

				verb := "Reclaimed"
				if dryRun {
					verb = "Would reclaim"
				}
				fmt.Fprintf(out, "%s %s\n", verb, humanize.IBytes(uint64(stale.Reclaimed()+orphaned.Reclaimed())))

				if n := len(stale.Errors) + len(orphaned.Errors); n > 0 {
					logging.WarnWithContext(logger, "cleanup incomplete", "cleanup_incomplete",
						logging.Int("errors", n),
						logging.String(logging.FieldErrorHint, "check directory permissions"),
					)
					return fmt.Errorf("%d director%s could not be cleaned", n, pluralY(n))
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Minimum age of extraction directories to remove (defaults to cleanup.work_max_age)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without deleting")
	return cmd
}

func printCleanResult(out io.Writer, title string, result workspace.CleanResult) {
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(out, "%s: nothing to remove\n", title)
		return
	}
	rows := make([][]string, 0, len(result.Removed)+len(result.Errors))
	action := "removed"
	if result.DryRun {
		action = "would remove"
	}
	for _, dir := range result.Removed {
		rows = append(rows, []string{
			dir.Name,
			humanize.Time(dir.ModTime),
			humanize.IBytes(uint64(dir.Size)),
			action,
		})
	}
	for _, failure := range result.Errors {
		rows = append(rows, []string{filepath.Base(failure.Path), "", "", "error: " + failure.Err.Error()})
	}
	fmt.Fprintln(out, renderTable(title,
		[]string{"Directory", "Modified", "Size", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
