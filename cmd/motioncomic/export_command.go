package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"motioncomic/internal/fileutil"
	"motioncomic/internal/render"
	"motioncomic/internal/runstore"
	"motioncomic/internal/scene"
	"motioncomic/internal/timeline"
)

var exportFormats = map[string]func(w io.Writer, run *runstore.Run, tl *timeline.Timeline) error{
	"json": func(w io.Writer, _ *runstore.Run, tl *timeline.Timeline) error {
		data, err := timeline.Marshal(tl)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	},
	"srt": func(w io.Writer, _ *runstore.Run, tl *timeline.Timeline) error {
		return timeline.WriteSRT(w, tl)
	},
	"concat": func(w io.Writer, run *runstore.Run, tl *timeline.Timeline) error {
		return timeline.WriteConcat(w, tl, func(id scene.PanelID) string {
			if run.OutputDir == "" {
				return render.PanelPath(id)
			}
			return filepath.Join(run.OutputDir, filepath.FromSlash(render.PanelPath(id)))
		})
	},
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <run>",
		Short: "Export a stored timeline as JSON, SRT subtitles or an ffconcat script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, ok := exportFormats[strings.ToLower(strings.TrimSpace(format))]
			if !ok {
				return fmt.Errorf("unsupported export format %q (want json, srt or concat)", format)
			}
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				tl, err := run.Timeline()
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return write(cmd.OutOrStdout(), run, tl)
				}
				if err := fileutil.WriteAtomic(output, 0o644, func(w io.Writer) error {
					return write(w, run, tl)
				}); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, srt or concat")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
