// Package sync implements the two-phase reconciliation between the
// Markdown tree on disk and the graph store / search index described by
// spec.md §4.5: a scan-and-checksum pass, a pure diff against the store's
// recorded file state, a structural upsert phase, and a relation backfill
// phase. A single sync.Engine enforces the single-writer contract from
// spec.md §5 with a repository-level mutex; reads never take this lock.
package sync
