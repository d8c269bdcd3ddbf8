// Package bootstrap assembles a runtimeconfig.Config into a fully wired
// memoryctl module: database connection, graph store, search index, link
// resolver, sync engine, context builder, and logger provider.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evolv3ai/basic-memory/internal/commands"
	synccmd "github.com/evolv3ai/basic-memory/internal/commands/sync"
	"github.com/evolv3ai/basic-memory/internal/contextbuilder"
	"github.com/evolv3ai/basic-memory/internal/graph"
	"github.com/evolv3ai/basic-memory/internal/logging"
	"github.com/evolv3ai/basic-memory/internal/logging/console"
	"github.com/evolv3ai/basic-memory/internal/logging/gologger"
	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/internal/resolver"
	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
	"github.com/evolv3ai/basic-memory/internal/search"
	syncpkg "github.com/evolv3ai/basic-memory/internal/sync"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Module groups every component wired from a runtimeconfig.Config, ready for
// a CLI subcommand or HTTP façade to dispatch through.
type Module struct {
	Config runtimeconfig.Config

	DB       *bun.DB
	Store    interfaces.GraphStore
	Index    interfaces.SearchIndex
	Resolver interfaces.LinkResolver
	Sync     interfaces.SyncEngine
	Context  interfaces.ContextBuilder
	Logger   interfaces.LoggerProvider
	// Scanner is exposed separately from Sync so read-only CLI commands (like
	// status) can compute a Diff without applying it.
	Scanner *syncpkg.Scanner

	Handlers *synccmd.HandlerSet
}

// Close releases the underlying database connection.
func (m *Module) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

// Build opens the configured SQLite database, runs migrations, and wires
// every component named in cfg. Callers own the returned Module's lifetime
// and must call Close when done.
func Build(ctx context.Context, cfg runtimeconfig.Config) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: invalid config: %w", err)
	}

	provider, err := buildLoggerProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: logger provider: %w", err)
	}

	sqlDB, err := openDatabase(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())

	if err := graph.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrate graph schema: %w", err)
	}
	if err := search.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrate search schema: %w", err)
	}

	store := graph.NewStore(db)
	index := search.NewIndex(db)
	linkResolver := resolver.New(store, index)

	scanner, err := syncpkg.NewScanner(os.DirFS(cfg.RepoRoot), markdown.LoaderConfig{
		IgnoreGlobs: cfg.Sync.IgnoreGlobs,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: new scanner: %w", err)
	}
	parser := markdown.NewParser(cfg.DefaultEntityType)

	syncLogger := logging.SyncLogger(provider)
	engine := syncpkg.New(scanner, store, index, parser, linkResolver, syncLogger, syncpkg.Config{
		DefaultEntityType: cfg.DefaultEntityType,
	})

	builder := contextbuilder.New(db, store, index)

	handlers, err := synccmd.RegisterCommands(nil, engine, provider)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: register sync commands: %w", err)
	}

	return &Module{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Index:    index,
		Resolver: linkResolver,
		Sync:     engine,
		Context:  builder,
		Logger:   provider,
		Scanner:  scanner,
		Handlers: handlers,
	}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return sql.Open("sqlite3", path+"?_foreign_keys=on")
}

func buildLoggerProvider(cfg runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	switch cfg.Logging.Provider {
	case "", "console":
		return console.NewProvider(console.Options{}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
	default:
		return nil, fmt.Errorf("unsupported logging provider %q", cfg.Logging.Provider)
	}
}

// CommandLogger exposes commands.CommandLogger for CLI subcommands that need
// a module-scoped logger outside the sync/rebuild handler set.
func CommandLogger(m *Module, module string) interfaces.Logger {
	if m == nil {
		return logging.NoOp()
	}
	return commands.CommandLogger(m.Logger, module)
}
