package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"motioncomic/internal/runstore"
)

var runStatuses = []runstore.Status{runstore.StatusRunning, runstore.StatusCompleted, runstore.StatusFailed}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFlags []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if jsonOut {
					summaries := make([]runSummary, 0, len(runs))
					for _, run := range runs {
						summaries = append(summaries, newRunSummary(run, nil))
					}
					return writeJSON(out, summaries)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ShortID(),
						run.CreatedAt.Local().Format("2006-01-02 15:04"),
						string(run.Status),
						strconv.Itoa(run.PageCount),
						strconv.Itoa(run.PanelCount),
						formatDuration(run.Duration),
						run.Archive,
					})
				}
				fmt.Fprintln(out, renderTable("",
					[]string{"ID", "Created", "Status", "Pages", "Panels", "Duration", "Archive"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(runStatuses))
				for _, status := range runStatuses {
					if n := stats[status]; n > 0 {
						parts = append(parts, fmt.Sprintf("%d %s", n, status))
					}
				}
				fmt.Fprintf(out, "Total: %s\n", strings.Join(parts, ", "))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Only list runs with these statuses")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")

	cmd.AddCommand(newRunsRemoveCommand(ctx))
	return cmd
}

func newRunsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <run>...",
		Short: "Delete stored runs and their diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				out := cmd.OutOrStdout()
				for _, ref := range args {
					run, err := store.Resolve(cmd.Context(), ref)
					if err != nil {
						return err
					}
					removed, err := store.Remove(cmd.Context(), run.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed run %s: %s\n", run.ShortID(), yesNo(removed))
				}
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]runstore.Status, error) {
	out := make([]runstore.Status, 0, len(values))
	for _, value := range values {
		status := runstore.Status(strings.ToLower(strings.TrimSpace(value)))
		if !slices.Contains(runStatuses, status) {
			return nil, fmt.Errorf("unknown run status %q", value)
		}
		out = append(out, status)
	}
	return out, nil
}
