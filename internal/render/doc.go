// Package render hands a finished timeline to a renderer.
//
// Adapter is the contract: a renderer consumes the timeline and may report
// measured durations back, which the caller feeds to a timeline
// Synchronizer. PlanWriter is the shipped adapter. It writes the timeline
// JSON, an SRT subtitle track and an ffmpeg concat script, plus one PNG
// still per panel when a StillSource is configured, so any external tool
// can produce the final video.
package render
