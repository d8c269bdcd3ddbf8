package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

func runSearch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("memoryctl search", flag.ContinueOnError)
	root, dbPath := rootFlags(fs)
	query := fs.String("q", "", "Full-text query")
	kinds := fs.String("type", "", "Comma separated result kinds (entity,observation,relation)")
	permalink := fs.String("permalink", "", "Permalink glob filter")
	after := fs.String("after", "", "Only include rows created after this (flexible date grammar)")
	limit := fs.Int("limit", 10, "Maximum results")
	offset := fs.Int("offset", 0, "Result offset")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = *root
	cfg.DatabasePath = *dbPath

	module, err := buildModule(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl search: %v\n", err)
		return exitUnrecoverable
	}
	defer module.Close()

	q := interfaces.SearchQuery{
		Text:          *query,
		PermalinkGlob: *permalink,
		Limit:         *limit,
		Offset:        *offset,
	}
	for _, part := range strings.Split(*kinds, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			q.Types = append(q.Types, interfaces.SearchResultKind(trimmed))
		}
	}
	if strings.TrimSpace(*after) != "" {
		parsed, err := markdown.ParseFlexibleDate(*after, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "memoryctl search: invalid --after: %v\n", err)
			return exitUserError
		}
		q.After = parsed
	}

	results, err := module.Index.Search(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl search: %v\n", err)
		return exitUnrecoverable
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl search: %v\n", err)
		return exitUnrecoverable
	}
	fmt.Println(string(encoded))
	return exitSuccess
}
