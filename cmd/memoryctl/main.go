// Command memoryctl drives the knowledge graph from the command line:
// syncing the markdown tree, inspecting pending changes, searching the
// index, and expanding memory:// context queries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/evolv3ai/basic-memory/cmd/memoryctl/internal/bootstrap"
)

var buildModule = bootstrap.Build

const (
	exitSuccess       = 0
	exitUserError     = 1
	exitSyncFailures  = 2
	exitUnrecoverable = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUserError
	}

	sub := args[0]
	rest := args[1:]
	ctx := context.Background()

	switch sub {
	case "sync":
		return runSync(ctx, rest)
	case "status":
		return runStatus(ctx, rest)
	case "search":
		return runSearch(ctx, rest)
	case "context":
		return runContext(ctx, rest)
	case "-h", "--help", "help":
		printUsage()
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "memoryctl: unknown command %q\n", sub)
		printUsage()
		return exitUserError
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: memoryctl <command> [flags]

commands:
  sync      reconcile the markdown tree with the graph and search index
  status    report pending changes without applying them
  search    run a lexical search against the index
  context   expand a memory:// URI into a bounded subgraph`)
}

func rootFlags(fs *flag.FlagSet) (*string, *string) {
	root := fs.String("root", ".", "Markdown tree root")
	db := fs.String("db", ".basic-memory/memory.db", "SQLite database path")
	return root, db
}
