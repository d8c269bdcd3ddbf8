package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/internal/contextbuilder"
	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
)

func runContext(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("memoryctl context", flag.ContinueOnError)
	root, dbPath := rootFlags(fs)
	uri := fs.String("uri", "recent", "memory:// path (without the scheme), e.g. design/auth or recent")
	depth := fs.Int("depth", 0, "Traversal depth (0 uses the built-in default)")
	timeframe := fs.String("timeframe", "", "Recency window, e.g. 7d")
	maxResults := fs.Int("max-results", 0, "Maximum seed entities (0 uses the built-in default)")
	entityType := fs.String("type", "", "Entity type filter (recent mode) or \"related\" for depth-1 relation mode")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = *root
	cfg.DatabasePath = *dbPath

	module, err := buildModule(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl context: %v\n", err)
		return exitUnrecoverable
	}
	defer module.Close()

	values := url.Values{}
	if *depth > 0 {
		values.Set("depth", strconv.Itoa(*depth))
	}
	if strings.TrimSpace(*timeframe) != "" {
		values.Set("timeframe", *timeframe)
	}
	if *maxResults > 0 {
		values.Set("max_results", strconv.Itoa(*maxResults))
	}
	if strings.TrimSpace(*entityType) != "" {
		values.Set("type", *entityType)
	}

	raw := "memory://" + strings.TrimPrefix(*uri, "/")
	if encoded := values.Encode(); encoded != "" {
		raw += "?" + encoded
	}

	req, err := contextbuilder.ParseURI(raw, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl context: %v\n", err)
		return exitUserError
	}

	result, err := module.Context.Build(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl context: %v\n", err)
		return exitUnrecoverable
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl context: %v\n", err)
		return exitUnrecoverable
	}
	fmt.Println(string(encoded))
	return exitSuccess
}
