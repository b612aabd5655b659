package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"motioncomic/internal/runstore"
	"motioncomic/internal/timeline"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var track string

	cmd := &cobra.Command{
		Use:   "show <run>",
		Short: "Show a stored run with its timeline and diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter []timeline.Track
			if strings.TrimSpace(track) != "" {
				parsed, err := timeline.ParseTrack(track)
				if err != nil {
					return err
				}
				filter = append(filter, parsed)
			} else {
				filter = timeline.Tracks()
			}

			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				diags, err := store.Diagnostics(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				summary := newRunSummary(run, diags)

				if jsonOut {
					payload := struct {
						runSummary
						Timeline json.RawMessage `json:"timeline,omitempty"`
					}{runSummary: summary}
					if len(run.TimelineJSON) > 0 {
						payload.Timeline = json.RawMessage(run.TimelineJSON)
					}
					return writeJSON(out, payload)
				}

				printRunSummary(out, summary, shouldColorize(out))
				if len(run.TimelineJSON) > 0 {
					tl, err := run.Timeline()
					if err != nil {
						return err
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, eventsTable(tl, filter))
				}
				if len(diags) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, diagnosticsTable(diags))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run and its timeline as JSON")
	cmd.Flags().StringVar(&track, "track", "", "Only show events on this track (visual, voice, sfx)")
	return cmd
}

func eventsTable(tl *timeline.Timeline, tracks []timeline.Track) string {
	var rows [][]string
	for _, track := range tracks {
		for ev := range tl.Track(track) {
			rows = append(rows, []string{
				formatDuration(ev.Start),
				formatDuration(ev.End()),
				ev.Track.String(),
				string(ev.ID),
				eventFlags(ev),
				eventDetail(ev),
			})
		}
	}
	return renderTable(fmt.Sprintf("Timeline %s", formatDuration(tl.Duration())),
		[]string{"Start", "End", "Track", "Event", "Flags", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func eventFlags(ev timeline.Event) string {
	var flags []string
	if ev.Locked {
		flags = append(flags, "locked")
	}
	if ev.Measured {
		flags = append(flags, "measured")
	}
	return strings.Join(flags, ",")
}

func eventDetail(ev timeline.Event) string {
	switch ev.Track {
	case timeline.TrackVisual:
		if ev.Transition > 0 {
			return fmt.Sprintf("%s, %s transition", ev.Effect, formatDuration(ev.Transition))
		}
		return string(ev.Effect)
	default:
		text := ev.Text
		if ev.Voice != "" {
			text = fmt.Sprintf("[%s] %s", ev.Voice, text)
		}
		return text
	}
}
