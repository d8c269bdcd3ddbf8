// Package http provides a thin REST façade over the knowledge graph core.
//
// Routes mount under a configurable base path (empty by default):
//   - Entities: /knowledge/entities, /knowledge/entities/{permalink...}
//   - Search: /search
//   - Context: /memory/{uri...}, /memory/recent
//   - Sync: /sync
//
// The façade exercises the same GraphStore, SearchIndex, SyncEngine, and
// ContextBuilder interfaces the CLI dispatches through; it adds no business
// logic of its own beyond request decoding and error-to-status mapping.
package http
