package logging

import (
	"context"
	"strings"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

const (
	rootModule     = "memory"
	graphModule    = "memory.graph"
	searchModule   = "memory.search"
	resolverModule = "memory.resolver"
	syncModule     = "memory.sync"
	contextModule  = "memory.context"
	markdownModule = "memory.markdown"
)

const (
	fieldSyncPath   = "file_path"
	fieldSyncAction = "sync_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// GraphLogger returns the logger namespace reserved for the graph store.
func GraphLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, graphModule)
}

// SearchLogger returns the logger namespace reserved for the search index.
func SearchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, searchModule)
}

// ResolverLogger returns the logger namespace reserved for link resolution.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// SyncLogger returns the logger namespace reserved for the sync engine.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// ContextLogger returns the logger namespace reserved for context building.
func ContextLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contextModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown parsing.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// WithSyncContext enriches the provided logger with common sync fields such as
// file path and the action taken for that file. Empty values are ignored.
func WithSyncContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSyncPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
