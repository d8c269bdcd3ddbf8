package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
)

func TestConfigValidate_AcceptsDefaults(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresRepoRoot(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = "  "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrRepoRootRequired) {
		t.Fatalf("expected ErrRepoRootRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresDatabasePath(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DatabasePath = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrDatabasePathRequired) {
		t.Fatalf("expected ErrDatabasePathRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresPositiveSyncConcurrency(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Sync.Concurrency = 0

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrSyncConcurrencyInvalid) {
		t.Fatalf("expected ErrSyncConcurrencyInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsContextDepthOutOfRange(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Context.MaxDepth = 20

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrContextMaxDepthInvalid) {
		t.Fatalf("expected ErrContextMaxDepthInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsDefaultDepthAboveMax(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Context.DefaultDepth = cfg.Context.MaxDepth + 1

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrContextMaxDepthInvalid) {
		t.Fatalf("expected ErrContextMaxDepthInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
