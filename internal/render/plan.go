package render

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"motioncomic/internal/fileutil"
	"motioncomic/internal/logging"
	"motioncomic/internal/raster"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/timeline"
)

// Output file names inside a plan directory.
const (
	TimelineFile = "timeline.json"
	SubtitleFile = "subtitles.srt"
	ConcatFile   = "panels.ffconcat"
	PanelDir     = "panels"
)

// PanelPath returns the slash-separated path of a panel still relative to
// the plan directory.
func PanelPath(id scene.PanelID) string {
	return path.Join(PanelDir, string(id)+".png")
}

// PlanWriter writes a render plan into Dir. Existing files are replaced
// atomically.
type PlanWriter struct {
	Dir    string
	Stills StillSource
	Logger *slog.Logger
}

// Consume implements Adapter. Without Stills the concat script still refers
// to panels/<id>.png so stills can be supplied afterwards.
func (w *PlanWriter) Consume(ctx context.Context, tl *timeline.Timeline) (Result, error) {
	var result Result
	if tl == nil {
		return result, services.Wrap(services.ErrValidation, "render", "consume", "timeline is required", nil)
	}
	logger := logging.NewComponentLogger(w.Logger, "render")
	logger = logging.WithContext(ctx, logger)

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "render", "create output dir", w.Dir, err)
	}

	data, err := timeline.Marshal(tl)
	if err != nil {
		return result, err
	}
	if err := w.write(&result, TimelineFile, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	}); err != nil {
		return result, err
	}
	if err := w.write(&result, SubtitleFile, func(out io.Writer) error {
		return timeline.WriteSRT(out, tl)
	}); err != nil {
		return result, err
	}

	if w.Stills != nil {
		if err := w.writeStills(ctx, &result, tl.Panels()); err != nil {
			return result, err
		}
	}

	if err := w.write(&result, ConcatFile, func(out io.Writer) error {
		return timeline.WriteConcat(out, tl, PanelPath)
	}); err != nil {
		return result, err
	}

	logger.Info("render plan written",
		logging.String(logging.FieldEventType, "render_plan"),
		logging.String("output_dir", w.Dir),
		logging.Int("files", len(result.Files)),
		logging.Int("events", tl.Len()),
		logging.Duration("duration", tl.Duration()),
	)
	return result, nil
}

func (w *PlanWriter) writeStills(ctx context.Context, result *Result, panels []scene.PanelID) error {
	if err := os.MkdirAll(filepath.Join(w.Dir, PanelDir), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "create panel dir", w.Dir, err)
	}
	for _, id := range panels {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := w.Stills.Still(ctx, id)
		if err != nil {
			return err
		}
		data, err := raster.EncodePNG(img)
		if err != nil {
			return services.Wrap(services.ErrCollaborator, "render", "encode still", string(id), err)
		}
		if err := w.write(result, PanelPath(id), func(out io.Writer) error {
			_, err := out.Write(data)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *PlanWriter) write(result *Result, name string, fill func(io.Writer) error) error {
	target := filepath.Join(w.Dir, filepath.FromSlash(name))
	if err := fileutil.WriteAtomic(target, 0o644, fill); err != nil {
		return services.Wrap(services.ErrCollaborator, "render", "write", name, err)
	}
	result.Files = append(result.Files, target)
	return nil
}
