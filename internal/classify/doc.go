// Package classify partitions accepted panels into typed sub-regions.
//
// HeuristicClassifier works on a downsampled grayscale copy of the panel
// interior. Bright connected components that enclose ink are balloons:
// near-rectangular ones are captions, rounded ones are dialogue, and a
// narrow protrusion below a rounded balloon (its tail) raises confidence.
// Rows of large, dense dark glyphs outside any balloon are sound effects.
// Everything else is artwork, which produces no sub-region.
//
// RefineKind re-types a text region once its text is known, so lettering
// like "BOOM!" inside a balloon is treated as a sound effect.
package classify
