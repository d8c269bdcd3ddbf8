// Package synccmd wraps the sync engine's Sync and Rebuild operations in
// command.Commander handlers that apply the shared validation, timeout and
// logging steps before calling the engine.
package synccmd

const (
	syncMessageType         = "memory.sync"
	rebuildIndexMessageType = "memory.rebuild_index"
)

// SyncCommand triggers one scan-diff-apply pass over the configured root.
// It takes no parameters: the root directory is fixed at startup by
// runtimeconfig, not chosen per call.
type SyncCommand struct{}

// Type implements command.Message.
func (SyncCommand) Type() string { return syncMessageType }

// Validate implements command.Message; SyncCommand has no fields to check.
func (SyncCommand) Validate() error { return nil }

// RebuildIndexCommand drops and repopulates the search index from the graph
// store's current contents, without rescanning the filesystem.
type RebuildIndexCommand struct{}

// Type implements command.Message.
func (RebuildIndexCommand) Type() string { return rebuildIndexMessageType }

// Validate implements command.Message; RebuildIndexCommand has no fields to
// check.
func (RebuildIndexCommand) Validate() error { return nil }
