// Package geometry provides the axis-aligned box arithmetic shared by panel
// detection, reading-order resolution, and sub-region classification.
//
// Boxes live in raster coordinates: X grows to the right and Y grows
// downward, so [Box.Top] is the smaller Y value. All comparisons that decide
// whether two regions "overlap" use positive intersection area; boxes that
// only share an edge are disjoint.
package geometry
