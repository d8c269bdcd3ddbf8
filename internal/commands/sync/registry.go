package synccmd

import (
	"context"
	"errors"

	"github.com/evolv3ai/basic-memory/internal/commands"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterCommands.
type HandlerSet struct {
	Sync   *SyncHandler
	Rebuild *RebuildIndexHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	syncOpts    []SyncHandlerOption
	rebuildOpts []RebuildIndexHandlerOption
}

// WithSyncOptions forwards options to the SyncHandler constructor.
func WithSyncOptions(opts ...SyncHandlerOption) Option {
	return func(cfg *options) { cfg.syncOpts = append(cfg.syncOpts, opts...) }
}

// WithRebuildOptions forwards options to the RebuildIndexHandler constructor.
func WithRebuildOptions(opts ...RebuildIndexHandlerOption) Option {
	return func(cfg *options) { cfg.rebuildOpts = append(cfg.rebuildOpts, opts...) }
}

// RegisterCommands builds the sync command handlers and registers them with
// the provided registry. A HandlerSet containing the constructed handlers is
// returned so callers can wire additional integrations (dispatcher, cron).
func RegisterCommands(reg CommandRegistry, engine interfaces.SyncEngine, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if engine == nil {
		return nil, errors.New("sync command registration: engine is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "sync")

	syncHandler := NewSyncHandler(engine, logger, cfg.syncOpts...)
	rebuildHandler := NewRebuildIndexHandler(engine, logger, cfg.rebuildOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(syncHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(rebuildHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{Sync: syncHandler, Rebuild: rebuildHandler}, nil
}

// RegisterSyncCron wires the sync handler into a cron registrar using the
// supplied command configuration. The handler runs with a background context.
func RegisterSyncCron(reg CronRegistrar, handler *SyncHandler, cfg command.HandlerConfig) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), SyncCommand{})
	})
}
