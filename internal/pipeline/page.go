package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"motioncomic/internal/archive"
	"motioncomic/internal/diagnostics"
	"motioncomic/internal/logging"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
)

// stageError tags a page failure with the stage that produced it.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func atStage(stage string, err error) error {
	return &stageError{stage: stage, err: err}
}

// failedStage names the stage a page error came from.
func failedStage(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return "page"
}

// processPage runs detect, resolve, classify, OCR and associate for one
// page. Recognition failures are recorded on report and the affected
// sub-region continues with empty text. Returned errors carry their stage
// (see failedStage) and either skip the page or abort the run.
func (r *Runner) processPage(ctx context.Context, logger *slog.Logger, src archive.Source, index int, report *diagnostics.Report) (scene.PageScene, error) {
	ctx = services.WithPage(ctx, index)
	logger = logger.With(logging.Page(index))
	out := scene.PageScene{Page: index}

	page, err := src.Decode(ctx, index)
	if err != nil {
		return out, atStage("decode", err)
	}

	candidates := slices.Collect(r.stages.Detector.Detect(page))
	for _, c := range candidates {
		if !c.Synthetic {
			continue
		}
		report.Degraded("detect", index, c.ID, "no panels detected; page used as a single panel")
		logging.WarnWithContext(logger, "detector found no panels", "detector_fallback",
			logging.Panel(c.ID),
			logging.String(logging.FieldImpact, "page renders as one full-page panel"),
			logging.String(logging.FieldErrorHint, "check gutter settings in [detection]"),
		)
	}

	resolved, err := r.stages.Resolver.Resolve(page, candidates)
	if err != nil {
		return out, atStage("reading_order", err)
	}
	out.Regions = resolved.All()
	if len(candidates) > 0 && len(resolved.Accepted) == 0 {
		report.Degraded("reading_order", index, "", "all %d candidates rejected", len(candidates))
	}
	logger.Debug("page resolved",
		logging.String(logging.FieldEventType, "page_resolved"),
		logging.Int("candidates", len(candidates)),
		logging.Int("panels", len(resolved.Accepted)),
		logging.Int("rejected", len(resolved.Rejected)),
	)

	for _, panel := range resolved.Accepted {
		subs := r.stages.Classifier.Classify(page, panel)
		units := make([]scene.TextUnit, 0, len(subs))
		for _, sub := range subs {
			if !sub.Kind.HasText() {
				continue
			}
			unit, err := r.stages.Extractor.Extract(ctx, page, sub)
			if err != nil {
				if isCanceled(err) {
					return out, atStage("ocr", err)
				}
				report.Record("ocr", index, panel.ID, err)
				logger.Debug("recognition failed",
					logging.String(logging.FieldEventType, "ocr_failed"),
					logging.Panel(panel.ID),
					logging.String("sub_region", string(sub.ID)),
					logging.Error(err),
				)
			}
			if unit.ID != "" {
				units = append(units, unit)
			}
		}

		ps, err := r.stages.Associator.Associate(panel, page.Area(), subs, units)
		if err != nil {
			return out, atStage("associate", err)
		}
		out.Panels = append(out.Panels, ps)
	}
	return out, nil
}
