// Package preflight provides readiness checks for the directories and
// external tools motioncomic depends on.
//
// The CLI "motioncomic preflight" command prints every result; "run" calls
// RunAll first and refuses to start when a required check fails, so a long
// archive is never half processed because the output directory is read-only.
//
// Optional tools (ffmpeg for rendering the concat plan, a RAR extractor for
// CBR input) are reported but never block a run.
package preflight
