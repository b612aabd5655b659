package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"motioncomic/internal/logging"
	"motioncomic/internal/notifications"
	"motioncomic/internal/render"
	"motioncomic/internal/runstore"
	"motioncomic/internal/services"
	"motioncomic/internal/timeline"
)

type reflowOptions struct {
	measuredPath string
	lockIDs      []string
	lockThrough  time.Duration
	skipPlan     bool
}

func newReflowCommand(ctx *commandContext) *cobra.Command {
	var opts reflowOptions

	cmd := &cobra.Command{
		Use:   "reflow <run>",
		Short: "Re-time a stored run with measured speech durations",
		Long: "Applies measured durations (a JSON object of event id to seconds) to a stored " +
			"timeline. Locked events keep their start; later events shift to make room. " +
			"The stored timeline and, when present, the render plan are updated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reflowRun(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.measuredPath, "measured", "", "JSON file of event id to measured seconds")
	cmd.Flags().StringSliceVar(&opts.lockIDs, "lock", nil, "Event ids already rendered")
	cmd.Flags().DurationVar(&opts.lockThrough, "lock-through", 0, "Lock every event starting before this offset")
	cmd.Flags().BoolVar(&opts.skipPlan, "no-plan", false, "Only update the stored timeline")
	return cmd
}

func reflowRun(cmd *cobra.Command, cctx *commandContext, ref string, opts reflowOptions) error {
	if opts.measuredPath == "" && len(opts.lockIDs) == 0 && opts.lockThrough <= 0 {
		return errors.New("nothing to do: pass --measured, --lock or --lock-through")
	}
	measured, err := loadMeasured(opts.measuredPath)
	if err != nil {
		return err
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return err
	}

	return cctx.withStore(func(store *runstore.Store) error {
		ctx := cmd.Context()
		run, err := store.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		ctx = services.WithRunID(ctx, run.ID)
		logger := logging.WithContext(ctx, logger)

		original, err := run.Timeline()
		if err != nil {
			return err
		}
		synchronizer := timeline.NewSynchronizer(original)
		if len(opts.lockIDs) > 0 {
			ids := make([]timeline.EventID, 0, len(opts.lockIDs))
			for _, id := range opts.lockIDs {
				ids = append(ids, timeline.EventID(id))
			}
			if err := synchronizer.Lock(ids...); err != nil {
				return err
			}
		}
		locked := 0
		if opts.lockThrough > 0 {
			locked = synchronizer.LockThrough(opts.lockThrough)
		}
		updated := synchronizer.Snapshot()
		if len(measured) > 0 {
			if updated, err = synchronizer.Reflow(measured); err != nil {
				return err
			}
		}

		if err := store.UpdateTimeline(ctx, run.ID, updated); err != nil {
			return err
		}
		if run.OutputDir != "" && !opts.skipPlan {
			writer := &render.PlanWriter{Dir: run.OutputDir, Logger: logger}
			if _, err := writer.Consume(ctx, updated); err != nil {
				return err
			}
		}

		shifted := countShifted(original, updated)
		logger.Info("run re-flowed",
			logging.String(logging.FieldEventType, "reflow_completed"),
			logging.Int("measured", len(measured)),
			logging.Int("shifted", shifted),
			logging.Duration("duration", updated.Duration()),
		)

		cfg, err := cctx.ensureConfig()
		if err != nil {
			return err
		}
		notify(ctx, cfg, logger, notifications.EventReflowCompleted, notifications.Payload{
			"archive":  filepath.Base(run.Archive),
			"shifted":  shifted,
			"duration": updated.Duration(),
		})

		out := cmd.OutOrStdout()
		colorize := shouldColorize(out)
		fmt.Fprintf(out, "Run %s re-flowed\n", run.ShortID())
		fmt.Fprintln(out, renderStatusLine("Measured", statusInfo, strconv.Itoa(len(measured)), colorize))
		if locked > 0 {
			fmt.Fprintln(out, renderStatusLine("Locked", statusInfo, strconv.Itoa(locked), colorize))
		}
		fmt.Fprintln(out, renderStatusLine("Shifted", statusInfo, strconv.Itoa(shifted), colorize))
		fmt.Fprintln(out, renderStatusLine("Duration", statusOK,
			fmt.Sprintf("%s -> %s", formatDuration(original.Duration()), formatDuration(updated.Duration())), colorize))
		return nil
	})
}

// loadMeasured reads a JSON object of event id to seconds.
func loadMeasured(path string) (map[timeline.EventID]time.Duration, error) {
	if path == "" {
		return nil, nil
	}
	var raw map[timeline.EventID]float64
	if err := readJSONFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load measured durations: %w", err)
	}
	measured := make(map[timeline.EventID]time.Duration, len(raw))
	for id, seconds := range raw {
		measured[id] = time.Duration(seconds * float64(time.Second))
	}
	return measured, nil
}

func countShifted(before, after *timeline.Timeline) int {
	n := 0
	for ev := range after.All() {
		if prev, ok := before.Event(ev.ID); ok && prev.Start != ev.Start {
			n++
		}
	}
	return n
}
