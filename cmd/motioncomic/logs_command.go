package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"motioncomic/internal/logs"
	"motioncomic/internal/runstore"
)

type logsOptions struct {
	lines  int
	follow bool
	level  string
	raw    bool
}

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs <run>",
		Short: "Show the log of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var runID string
			if err := ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				runID = run.ID
				return nil
			}); err != nil {
				return err
			}
			return streamLog(cmd.Context(), cmd.OutOrStdout(), logs.RunLogPath(cfg.Paths.LogDir, runID), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print JSON lines unchanged")
	return cmd
}

func streamLog(ctx context.Context, out io.Writer, path string, opts logsOptions) error {
	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: opts.lines})
	if err != nil {
		return err
	}
	printLogLines(out, result.Lines, opts)
	if !opts.follow {
		return nil
	}

	offset := result.Offset
	for {
		next, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		printLogLines(out, next.Lines, opts)
		offset = next.Offset
	}
}

func printLogLines(out io.Writer, lines []string, opts logsOptions) {
	for _, line := range lines {
		rec, ok := logs.Parse(line)
		if ok && !rec.AtLeast(opts.level) {
			continue
		}
		if opts.raw || !ok {
			fmt.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, rec.String())
	}
}
