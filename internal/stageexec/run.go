// Package stageexec runs run-level pipeline steps with uniform start,
// completion and failure logging.
package stageexec

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"motioncomic/internal/logging"
	"motioncomic/internal/services"
)

// Func is one step. Attributes it returns are appended to the completion
// log line.
type Func func(ctx context.Context, logger *slog.Logger) ([]logging.Attr, error)

// Run executes fn under the stage name, tagging ctx and the logger with it.
// Failures are logged once with their category and returned unchanged.
func Run(ctx context.Context, logger *slog.Logger, stage string, fn Func) error {
	stageCtx := services.WithStage(ctx, stage)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()

	attrs, err := fn(stageCtx, stageLogger)
	if err != nil {
		return handleFailure(stageLogger, err)
	}

	attrs = append(attrs,
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started)),
	)
	stageLogger.Info("stage completed", logging.Args(attrs...)...)
	return nil
}

func handleFailure(logger *slog.Logger, stageErr error) error {
	message := strings.TrimSpace(services.Details(stageErr))
	if message == "" {
		message = "stage failed"
	}
	category := services.Classify(stageErr)
	hint := "check logs for details"
	switch category {
	case services.CategoryStructural:
		hint = "upstream stage produced inconsistent output; report the archive that triggered it"
	case services.CategoryCanceled:
		hint = "run was interrupted; rerun to resume"
	case services.CategoryValidation, services.CategoryNotFound:
		hint = "check the archive path and format"
	}
	logging.ErrorWithContext(logger, "stage failed", "stage_failure",
		logging.String("error_category", string(category)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, hint),
		logging.Error(stageErr),
	)
	return stageErr
}
