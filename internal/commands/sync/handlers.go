package synccmd

import (
	"context"
	"time"

	"github.com/evolv3ai/basic-memory/internal/commands"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

var (
	_ command.Commander[SyncCommand]         = (*SyncHandler)(nil)
	_ command.Commander[RebuildIndexCommand] = (*RebuildIndexHandler)(nil)
)

// SyncHandler runs one sync pass through interfaces.SyncEngine.
type SyncHandler struct {
	engine  interfaces.SyncEngine
	logger  interfaces.Logger
	timeout time.Duration
}

// SyncHandlerOption customises the sync handler.
type SyncHandlerOption func(*SyncHandler)

// SyncWithTimeout overrides the default execution timeout.
func SyncWithTimeout(timeout time.Duration) SyncHandlerOption {
	return func(h *SyncHandler) { h.timeout = timeout }
}

// NewSyncHandler creates a handler bound to the supplied sync engine.
func NewSyncHandler(engine interfaces.SyncEngine, logger interfaces.Logger, opts ...SyncHandlerOption) *SyncHandler {
	h := &SyncHandler{
		engine:  engine,
		logger:  commands.EnsureLogger(logger),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[SyncCommand].
func (h *SyncHandler) Execute(ctx context.Context, msg SyncCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	report, err := h.engine.Sync(ctx)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	h.logger.Info("memory.command.sync.completed",
		"new_count", len(report.New),
		"modified_count", len(report.Modified),
		"deleted_count", len(report.Deleted),
		"moved_count", len(report.Moved),
		"unchanged_count", report.Unchanged,
		"failed_count", len(report.Failed),
		"duration_ms", report.Duration.Milliseconds(),
	)
	for _, failure := range report.Failed {
		h.logger.Warn("memory.command.sync.file_failed", "path", failure.Path, "error", failure.Err)
	}
	return nil
}

// CLIHandler exposes the handler for CLI registration.
func (h *SyncHandler) CLIHandler() any { return h }

// CLIOptions describes the CLI metadata for sync.
func (h *SyncHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"sync"},
		Group:       "memory",
		Description: "Reconcile the markdown tree with the knowledge graph and search index",
	}
}

// RebuildIndexHandler drops and repopulates the search index via
// interfaces.SyncEngine.
type RebuildIndexHandler struct {
	engine  interfaces.SyncEngine
	logger  interfaces.Logger
	timeout time.Duration
}

// RebuildIndexHandlerOption customises the rebuild handler.
type RebuildIndexHandlerOption func(*RebuildIndexHandler)

// RebuildWithTimeout overrides the default execution timeout.
func RebuildWithTimeout(timeout time.Duration) RebuildIndexHandlerOption {
	return func(h *RebuildIndexHandler) { h.timeout = timeout }
}

// NewRebuildIndexHandler creates a handler bound to the supplied sync engine.
func NewRebuildIndexHandler(engine interfaces.SyncEngine, logger interfaces.Logger, opts ...RebuildIndexHandlerOption) *RebuildIndexHandler {
	h := &RebuildIndexHandler{
		engine:  engine,
		logger:  commands.EnsureLogger(logger),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[RebuildIndexCommand].
func (h *RebuildIndexHandler) Execute(ctx context.Context, msg RebuildIndexCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	if err := h.engine.Rebuild(ctx); err != nil {
		return commands.WrapExecuteError(err)
	}
	h.logger.Info("memory.command.rebuild_index.completed")
	return nil
}

// CLIHandler exposes the handler for CLI registration.
func (h *RebuildIndexHandler) CLIHandler() any { return h }

// CLIOptions describes the CLI metadata for rebuild-index.
func (h *RebuildIndexHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"rebuild-index"},
		Group:       "memory",
		Description: "Drop and repopulate the search index from the graph store",
	}
}
