// Package detection locates panel candidates on a page.
//
// Detectors return a lazy, finite sequence of pending PanelRegion values.
// An empty sequence means detection failed to find structure; it is not an
// error. WithFallback turns that case into one synthetic full-page panel.
//
// # Gutter detection
//
// GutterDetector binarizes the page against a white threshold and runs a
// recursive XY-cut: a region is split along runs of near-white rows
// (gutters between panel tiers) and then along near-white columns (gutters
// between panels of a tier) until no gutter remains. Leaves that are too
// small, too large or too thin are dropped.
package detection
