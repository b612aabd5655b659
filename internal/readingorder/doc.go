// Package readingorder turns a page's panel candidates into an ordered set of
// accepted panels.
//
// Resolution runs in four steps:
//
//  1. Near-duplicate candidates are suppressed by IoU, keeping the
//     higher-confidence one. Residual overlaps are clipped from the
//     lower-ranked region's effective box.
//  2. Remaining panels are clustered into rows by vertical-center
//     proximity. Panels that span several rows, or most of the page width,
//     form a row of their own.
//  3. Each row is sorted horizontally according to the reading direction.
//  4. Rows are read top to bottom and orders assigned strictly increasing.
//
// Rejected candidates are returned with a reason and never dropped.
package readingorder
