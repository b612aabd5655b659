// Package dialogue turns the recognized text of one panel into ordered
// dialogue lines and sound cues.
//
// Text units are merged into lines when their boxes stack vertically with a
// small gap (multi-balloon speech), ordered with the same row convention the
// reading-order resolver applies to panels, and tagged with a speaker from
// an optional SpeakerSignal. Unknown speakers are a valid outcome.
package dialogue
