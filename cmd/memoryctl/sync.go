package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/evolv3ai/basic-memory/internal/runtimeconfig"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

type syncReportView struct {
	New      []string          `json:"new"`
	Modified []string          `json:"modified"`
	Moved    map[string]string `json:"moves"`
	Deleted  []string          `json:"deleted"`
	Failed   []failedFileView  `json:"failed"`
}

type failedFileView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func runSync(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("memoryctl sync", flag.ContinueOnError)
	root, dbPath := rootFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = *root
	cfg.DatabasePath = *dbPath

	module, err := buildModule(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl sync: %v\n", err)
		return exitUnrecoverable
	}
	defer module.Close()

	report, err := module.Sync.Sync(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl sync: %v\n", err)
		return exitUnrecoverable
	}

	if err := printSyncReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "memoryctl sync: %v\n", err)
		return exitUnrecoverable
	}

	if len(report.Failed) > 0 {
		return exitSyncFailures
	}
	return exitSuccess
}

func printSyncReport(report interfaces.SyncReport) error {
	view := syncReportView{
		New:      report.New,
		Modified: report.Modified,
		Moved:    report.Moved,
		Deleted:  report.Deleted,
	}
	for _, f := range report.Failed {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		view.Failed = append(view.Failed, failedFileView{Path: f.Path, Error: msg})
	}
	encoded, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
