package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRepoRootRequired indicates no project root was configured for scanning.
var ErrRepoRootRequired = errors.New("memory config: repo root is required")

// ErrDatabasePathRequired indicates no SQLite database path was configured.
var ErrDatabasePathRequired = errors.New("memory config: database path is required")

// ErrDefaultEntityTypeRequired indicates no fallback entity type was configured.
var ErrDefaultEntityTypeRequired = errors.New("memory config: default entity type is required")

// ErrContextMaxDepthInvalid indicates the context builder's depth bound is out of range.
var ErrContextMaxDepthInvalid = errors.New("memory config: context max depth must be between 1 and 10")

// ErrSyncConcurrencyInvalid indicates the sync engine's worker count is invalid.
var ErrSyncConcurrencyInvalid = errors.New("memory config: sync concurrency must be positive")

// ErrLoggingProviderRequired indicates logging is enabled without a provider.
var ErrLoggingProviderRequired = errors.New("memory config: logging provider is required when logging feature is enabled")

// ErrLoggingProviderUnknown indicates an unsupported logging provider name.
var ErrLoggingProviderUnknown = errors.New("memory config: logging provider is invalid")

// ErrLoggingLevelInvalid indicates an unsupported logging level name.
var ErrLoggingLevelInvalid = errors.New("memory config: logging level is invalid")

// ErrLoggingFormatInvalid indicates an unsupported logging format name.
var ErrLoggingFormatInvalid = errors.New("memory config: logging format is invalid")

// Config aggregates the settings needed to run the sync engine, search index,
// link resolver, and context builder against a single project directory.
type Config struct {
	// RepoRoot is the directory scanned for Markdown files.
	RepoRoot string
	// DatabasePath is the SQLite file backing the graph store and search index.
	DatabasePath      string
	DefaultEntityType string
	Sync              SyncConfig
	Search            SearchConfig
	Context           ContextConfig
	Features          Features
	Logging           LoggingConfig
}

// SyncConfig controls filesystem scanning behaviour.
type SyncConfig struct {
	IgnoreGlobs []string
	Concurrency int
}

// SearchConfig holds search page-size settings. Validate checks them; the
// search index and the HTTP search endpoint do not read them.
type SearchConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// ContextConfig holds context traversal defaults and bounds. Validate checks
// them; the context builder and the memory:// URI parser do not read them
// and apply their own defaults.
type ContextConfig struct {
	DefaultDepth      int
	MaxDepth          int
	DefaultMaxResults int
}

// Features holds subsystem toggles. Only Logger is consulted (by bootstrap);
// HTTP and Caching are not read.
type Features struct {
	HTTP    bool
	Logger  bool
	Caching bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a local single-project setup.
func DefaultConfig() Config {
	return Config{
		RepoRoot:          ".",
		DatabasePath:      ".basic-memory/memory.db",
		DefaultEntityType: "note",
		Sync: SyncConfig{
			IgnoreGlobs: []string{".git/**", ".basic-memory/**", "node_modules/**"},
			Concurrency: 1,
		},
		Search: SearchConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Context: ContextConfig{
			DefaultDepth:      1,
			MaxDepth:          3,
			DefaultMaxResults: 10,
		},
		Features: Features{
			HTTP:    false,
			Logger:  false,
			Caching: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.RepoRoot) == "" {
		return ErrRepoRootRequired
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return ErrDatabasePathRequired
	}
	if strings.TrimSpace(cfg.DefaultEntityType) == "" {
		return ErrDefaultEntityTypeRequired
	}
	if cfg.Sync.Concurrency <= 0 {
		return ErrSyncConcurrencyInvalid
	}
	if cfg.Context.MaxDepth < 1 || cfg.Context.MaxDepth > 10 {
		return ErrContextMaxDepthInvalid
	}
	if cfg.Context.DefaultDepth < 1 || cfg.Context.DefaultDepth > cfg.Context.MaxDepth {
		return ErrContextMaxDepthInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

// DurationOrDefault returns d when positive, otherwise the fallback.
func DurationOrDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
