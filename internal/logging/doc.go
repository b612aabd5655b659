// Package logging assembles structured slog loggers and formatting helpers used
// across motioncomic.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code tags log lines
// with the run id, page index and stage name carried on the context. A no-op
// logger serves tests and wiring code that cannot fail.
package logging
