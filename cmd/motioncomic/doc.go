// Package main hosts the motioncomic CLI entrypoint and command graph.
//
// The Cobra command tree turns an archive into a stored run, renders the
// run's plan to disk, and exposes stored runs for inspection, re-flow with
// measured speech, and export. Configuration resolution, run storage and
// logging setup live in the command context so subcommands stay small.
//
// Add functionality to the internal packages first and surface it here
// through a dedicated command or flag.
package main
