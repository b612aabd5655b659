// Package pipeline drives one archive through every stage: pages are
// decoded and analysed in parallel, then merged in page order and scheduled
// into a single timeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"motioncomic/internal/archive"
	"motioncomic/internal/classify"
	"motioncomic/internal/detection"
	"motioncomic/internal/diagnostics"
	"motioncomic/internal/dialogue"
	"motioncomic/internal/logging"
	"motioncomic/internal/ocr"
	"motioncomic/internal/readingorder"
	"motioncomic/internal/scene"
	"motioncomic/internal/services"
	"motioncomic/internal/stageexec"
	"motioncomic/internal/timeline"
)

// ErrAllPagesFailed is returned when an archive has pages but none of them
// could be processed.
var ErrAllPagesFailed = fmt.Errorf("%w: every page failed", services.ErrUpstreamDegradation)

// Config controls page parallelism and the failure policy.
type Config struct {
	// Workers bounds the number of pages processed at once.
	Workers int
	// AbortOnPageFailure stops the run at the first page that cannot be
	// decoded instead of recording a diagnostic and skipping it.
	AbortOnPageFailure bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Stages bundles the collaborators of a run. Every field is required; see
// DefaultStages.
type Stages struct {
	Detector   detection.Detector
	Resolver   *readingorder.Resolver
	Classifier classify.Classifier
	Extractor  ocr.Extractor
	Associator *dialogue.Associator
	Builder    *timeline.Builder
}

// DefaultStages wires the classical detector with fallback, the default
// resolver, classifier, associator and builder, and extractor.
func DefaultStages(extractor ocr.Extractor) Stages {
	return Stages{
		Detector:   detection.WithFallback(detection.NewGutterDetector()),
		Resolver:   readingorder.NewResolver(),
		Classifier: classify.NewHeuristicClassifier(),
		Extractor:  extractor,
		Associator: dialogue.NewAssociator(),
		Builder:    timeline.NewBuilder(timeline.DefaultConfig(), nil),
	}
}

func (s Stages) validate() error {
	switch {
	case s.Detector == nil:
		return errors.New("detector is required")
	case s.Resolver == nil:
		return errors.New("resolver is required")
	case s.Classifier == nil:
		return errors.New("classifier is required")
	case s.Extractor == nil:
		return errors.New("extractor is required")
	case s.Associator == nil:
		return errors.New("associator is required")
	case s.Builder == nil:
		return errors.New("builder is required")
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	Archive  string
	Timeline *timeline.Timeline
	// Pages holds the scenes of every page that was processed, in page
	// order. Failed pages are absent.
	Pages       []scene.PageScene
	PageCount   int
	PagesFailed []int
	Diagnostics []diagnostics.Diagnostic
}

// Panels returns the accepted panel scenes of every page in reading order.
func (r *Result) Panels() []scene.PanelScene {
	var out []scene.PanelScene
	for _, page := range r.Pages {
		out = append(out, page.Panels...)
	}
	return out
}

// Runner executes runs. It is safe for concurrent use.
type Runner struct {
	config Config
	stages Stages
	logger *slog.Logger
}

// New creates a runner.
func New(config Config, stages Stages, logger *slog.Logger) (*Runner, error) {
	if err := stages.validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "", err)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Runner{
		config: config,
		stages: stages,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// pageSlot is the private output of one page worker.
type pageSlot struct {
	scene  scene.PageScene
	report *diagnostics.Report
	failed bool
}

// Run processes every page of src and builds the timeline. Only structural
// integrity errors, cancellation and, with AbortOnPageFailure, a page
// failure abort the run; all other problems become diagnostics on the
// result.
func (r *Runner) Run(ctx context.Context, src archive.Source) (*Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	result := &Result{Archive: src.Name(), PageCount: src.Len()}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("archive", result.Archive),
		logging.Int("pages", result.PageCount),
	)
	if result.PageCount == 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", fmt.Sprintf("archive %s has no pages", result.Archive), nil)
	}

	slots := make([]pageSlot, result.PageCount)
	err := stageexec.Run(ctx, logger, "pages", func(ctx context.Context, logger *slog.Logger) ([]logging.Attr, error) {
		if err := r.processPages(ctx, logger, src, slots); err != nil {
			return nil, err
		}
		return []logging.Attr{logging.Int("pages", len(slots))}, nil
	})
	if err != nil {
		return nil, err
	}

	report := diagnostics.NewReport()
	for i, slot := range slots {
		report.Merge(slot.report)
		if slot.failed {
			result.PagesFailed = append(result.PagesFailed, i)
			continue
		}
		result.Pages = append(result.Pages, slot.scene)
	}
	result.Diagnostics = report.Items()
	if len(result.PagesFailed) == result.PageCount {
		logging.ErrorWithContext(logger, "no page could be processed", "run_failed",
			logging.Int("pages_failed", len(result.PagesFailed)),
			logging.String(logging.FieldErrorHint, "check the archive for corrupt or unsupported images"),
		)
		return result, ErrAllPagesFailed
	}

	panels := result.Panels()
	err = stageexec.Run(ctx, logger, "build", func(_ context.Context, _ *slog.Logger) ([]logging.Attr, error) {
		tl, err := r.stages.Builder.Build(result.Archive, panels)
		if err != nil {
			return nil, err
		}
		if err := timeline.ValidateAgainst(tl, panels); err != nil {
			return nil, err
		}
		result.Timeline = tl
		return []logging.Attr{
			logging.Int("panels", len(panels)),
			logging.Int("events", tl.Len()),
			logging.Duration("duration", tl.Duration()),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("pages", result.PageCount),
		logging.Int("pages_failed", len(result.PagesFailed)),
		logging.Int("panels", len(panels)),
		logging.Int("diagnostics", len(result.Diagnostics)),
		logging.Duration("duration", result.Timeline.Duration()),
	)
	return result, nil
}

// processPages fans pages out to the worker pool. Each worker owns its slot;
// the slots are read only after Wait.
func (r *Runner) processPages(ctx context.Context, logger *slog.Logger, src archive.Source, slots []pageSlot) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	sampler := logging.NewProgressSampler(25)
	var done atomic.Int64
	total := len(slots)

	for i := range slots {
		g.Go(func() error {
			report := diagnostics.NewReport()
			slots[i].report = report

			ps, err := r.processPage(gctx, logger, src, i, report)
			if err != nil {
				if services.IsFatal(err) || isCanceled(err) {
					return err
				}
				stage := failedStage(err)
				slots[i].failed = true
				report.Record(stage, i, "", err)
				logging.WarnWithContext(logger, "page skipped", "page_skipped",
					logging.Page(i),
					logging.String(logging.FieldStage, stage),
					logging.Error(err),
					logging.String(logging.FieldImpact, "page is left out of the timeline"),
					logging.String(logging.FieldErrorHint, "check the page image in the archive"),
				)
				if r.config.AbortOnPageFailure {
					return err
				}
			} else {
				slots[i].scene = ps
			}

			if n := int(done.Add(1)); sampler.Observe(n, total) {
				logger.Info("pages processed",
					logging.String(logging.FieldEventType, "pages_progress"),
					logging.Int("done", n),
					logging.Int("total", total),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
