// Package contextbuilder expands a `memory://` reference into a bounded
// subgraph: a seed set resolved from a permalink, glob, or recency window,
// then a breadth-first expansion over incident relations up to a requested
// depth. The traversal itself runs as a single recursive SQL query against
// the search index; the builder is read-only and never mutates the store.
package contextbuilder
