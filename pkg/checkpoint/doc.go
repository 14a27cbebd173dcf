// Package checkpoint persists harvest progress as immutable batch part
// files so an interrupted run can resume with minimal rework.
//
// Parts are named {prefix}_part_{index:06d}.jsonl. The prefix namespaces
// concurrently running harvester processes; the index is derived once at
// startup from the files already on disk and incremented in memory for
// the rest of the run. Parts are append-only and never rewritten — only
// the consolidated output (pkg/merge) is ever replaced, and that
// atomically.
//
// A killed process loses at most the records buffered since the last
// flush; those identifiers are simply re-fetched on the next run.
package checkpoint
