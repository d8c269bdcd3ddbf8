package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
	syncpkg "github.com/evolv3ai/basic-memory/internal/sync"
)

func runStatus(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("memoryctl status", flag.ContinueOnError)
	root, dbPath := rootFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = *root
	cfg.DatabasePath = *dbPath

	module, err := buildModule(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl status: %v\n", err)
		return exitUnrecoverable
	}
	defer module.Close()

	scanned, err := module.Scanner.Scan(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl status: %v\n", err)
		return exitUnrecoverable
	}
	entities, err := module.Store.ListEntities(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl status: %v\n", err)
		return exitUnrecoverable
	}

	diff := syncpkg.ComputeDiff(entities, scanned)

	view := struct {
		New       []string          `json:"new"`
		Modified  []string          `json:"modified"`
		Moves     map[string]string `json:"moves"`
		Deleted   []string          `json:"deleted"`
		Unchanged int               `json:"unchanged"`
	}{
		Moves: map[string]string{},
	}
	for _, f := range diff.New {
		view.New = append(view.New, f.RelPath)
	}
	for _, f := range diff.Modified {
		view.Modified = append(view.Modified, f.RelPath)
	}
	for _, e := range diff.Deleted {
		view.Deleted = append(view.Deleted, e.FilePath)
	}
	for _, m := range diff.Moved {
		view.Moves[m.OldEntity.FilePath] = m.New.RelPath
	}
	view.Unchanged = diff.Unchanged

	encoded, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl status: %v\n", err)
		return exitUnrecoverable
	}
	fmt.Println(string(encoded))
	return exitSuccess
}
