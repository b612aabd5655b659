// Package runstore persists pipeline runs in SQLite.
//
// A run row holds the archive name, status, page and panel counts and the
// serialized timeline; the diagnostics of the run live in a child table.
// Re-flow replaces the stored timeline in place, so a run always reflects
// the latest measured schedule.
//
// Schema changes are new files under migrations/; applied versions are
// recorded in schema_migrations.
package runstore
