// Package services defines shared failure markers and context helpers used by
// every pipeline stage.
//
// Key responsibilities:
//   - Sentinel errors for the failure taxonomy (structural integrity,
//     upstream degradation, collaborator failure) plus the Wrap helper that
//     adds stage and operation context.
//   - Classify, which maps an error onto the diagnostic category recorded in
//     run reports.
//   - Context helpers that stamp run IDs, stage names and page indexes for
//     logging.
//
// Only structural integrity failures abort a run; everything else degrades.
package services
