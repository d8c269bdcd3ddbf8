package sync

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/evolv3ai/basic-memory/internal/markdown"
)

// FileKind classifies a scanned file for the apply phase: Markdown files are
// parsed into observations/relations, everything else is tracked as an
// opaque entity keyed by checksum only (spec.md §4.5's "non-markdown files
// are tracked as opaque entities").
type FileKind string

const (
	FileKindMarkdown FileKind = "markdown"
	FileKindOpaque   FileKind = "opaque"
)

// ScannedFile is one discovered file with its content, checksum, and kind.
type ScannedFile struct {
	RelPath  string
	Source   []byte
	Checksum string
	Kind     FileKind
}

// Scanner walks a filesystem tree and returns every non-ignored file,
// building on internal/markdown.Loader's checksum-and-sort walk but widened
// from a `*.md`-only pattern to the whole tree, since the sync engine must
// also track non-Markdown files by checksum.
type Scanner struct {
	loader *markdown.Loader
}

// NewScanner constructs a Scanner over the supplied filesystem, ignoring any
// path with a dot-prefixed segment (spec.md §6: "Any path starting with `.`
// is ignored") in addition to the caller-supplied ignore globs.
func NewScanner(fsys fs.FS, cfg markdown.LoaderConfig) (*Scanner, error) {
	cfg.Pattern = "*"
	loader, err := markdown.NewLoader(fsys, cfg)
	if err != nil {
		return nil, err
	}
	return &Scanner{loader: loader}, nil
}

// Scan walks the configured tree and returns every discovered file in
// lexicographic path order, as internal/markdown.Loader already guarantees.
func (s *Scanner) Scan(ctx context.Context) ([]ScannedFile, error) {
	files, err := s.loader.ScanDirectory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ScannedFile, 0, len(files))
	for _, f := range files {
		if isHidden(f.RelPath) {
			continue
		}
		out = append(out, ScannedFile{
			RelPath:  f.RelPath,
			Source:   f.Source,
			Checksum: f.Checksum,
			Kind:     classify(f.RelPath),
		})
	}
	return out, nil
}

func classify(relPath string) FileKind {
	if strings.EqualFold(filepath.Ext(relPath), ".md") {
		return FileKindMarkdown
	}
	return FileKindOpaque
}

func isHidden(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
