// Package logs reads the per-run JSON log files written next to stored runs.
//
// Tail streams a file with bounded memory, supports negative offsets for
// "last N lines" reads and can wait for new lines in follow mode. Parse turns
// one JSON line back into a Record for filtering and compact display.
package logs
