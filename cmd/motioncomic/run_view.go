package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"motioncomic/internal/diagnostics"
	"motioncomic/internal/runstore"
)

type runSummary struct {
	ID          string                   `json:"id"`
	Archive     string                   `json:"archive"`
	Status      runstore.Status          `json:"status"`
	PageCount   int                      `json:"page_count"`
	PagesFailed int                      `json:"pages_failed"`
	PanelCount  int                      `json:"panel_count"`
	DurationSec float64                  `json:"duration_seconds"`
	Error       string                   `json:"error,omitempty"`
	OutputDir   string                   `json:"output_dir,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

func newRunSummary(run *runstore.Run, diags []diagnostics.Diagnostic) runSummary {
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	return runSummary{
		ID:          run.ID,
		Archive:     run.Archive,
		Status:      run.Status,
		PageCount:   run.PageCount,
		PagesFailed: run.PagesFailed,
		PanelCount:  run.PanelCount,
		DurationSec: run.Duration.Seconds(),
		Error:       run.ErrorMessage,
		OutputDir:   run.OutputDir,
		CreatedAt:   run.CreatedAt,
		Diagnostics: diags,
	}
}

func printRunSummary(w io.Writer, s runSummary, colorize bool) {
	fmt.Fprintf(w, "Run %s (%s)\n", s.ID, s.Archive)
	fmt.Fprintln(w, renderStatusLine("Status", runStatusKind(s.Status), string(s.Status), colorize))

	pages := fmt.Sprintf("%d processed", s.PageCount-s.PagesFailed)
	pageKind := statusOK
	if s.PagesFailed > 0 {
		pages += fmt.Sprintf(", %d failed", s.PagesFailed)
		pageKind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Pages", pageKind, pages, colorize))
	fmt.Fprintln(w, renderStatusLine("Panels", statusInfo, strconv.Itoa(s.PanelCount), colorize))
	fmt.Fprintln(w, renderStatusLine("Duration", statusInfo, formatDuration(time.Duration(s.DurationSec*float64(time.Second))), colorize))
	if s.Error != "" {
		fmt.Fprintln(w, renderStatusLine("Error", statusError, s.Error, colorize))
	}
	if s.OutputDir != "" {
		fmt.Fprintln(w, renderStatusLine("Output", statusInfo, s.OutputDir, colorize))
	}
	diagKind := statusOK
	if len(s.Diagnostics) > 0 {
		diagKind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Diagnostics", diagKind, strconv.Itoa(len(s.Diagnostics)), colorize))
}

func diagnosticsTable(diags []diagnostics.Diagnostic) string {
	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		page := "-"
		if d.Page != diagnostics.NoPage {
			page = strconv.Itoa(d.Page)
		}
		rows = append(rows, []string{string(d.Kind), d.Stage, page, string(d.Panel), d.Message})
	}
	return renderTable("Diagnostics",
		[]string{"Kind", "Stage", "Page", "Panel", "Message"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// formatDuration renders d as seconds with millisecond precision.
func formatDuration(d time.Duration) string {
	s := strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s + "s"
}
