// Package timeline schedules panels, dialogue and sound cues onto a single
// three-track timeline and keeps it synchronized as measured durations
// arrive from rendering.
//
// A Timeline is an immutable arena of events in backbone order: for every
// panel, in page then reading order, one visual event followed by the voice
// events of its dialogue lines and the sfx events of its sound cues. Events
// on the same track never overlap. Build produces the initial schedule from
// estimates; Reflow recomputes it after replacing estimates with measured
// durations, never moving an event at or after a locked (already rendered)
// event earlier than it was.
package timeline
