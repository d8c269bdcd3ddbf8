package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// LoaderConfig configures how Markdown files are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is stored by NewLoader but not used to locate files; discovery
	// and reads are relative to the root of the loader's fs.FS.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob,
	// evaluated against the file's base name (defaults to "*.md").
	Pattern string
	// IgnoreGlobs excludes matching relative paths from the scan. A `*`
	// segment does not cross a `/`; `**` does.
	IgnoreGlobs []string
}

// Loader walks a filesystem tree and produces checksummed file contents for
// every Markdown file that is not excluded.
type Loader struct {
	fs          fs.FS
	basePath    string
	pattern     string
	ignoreGlobs []glob.Glob
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) (*Loader, error) {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}

	compiled := make([]glob.Glob, 0, len(cfg.IgnoreGlobs))
	for _, pat := range cfg.IgnoreGlobs {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, fmt.Errorf("markdown loader: invalid ignore glob %q: %w", pat, err)
		}
		compiled = append(compiled, g)
	}

	return &Loader{
		fs:          filesystem,
		basePath:    filepath.Clean(cfg.BasePath),
		pattern:     pattern,
		ignoreGlobs: compiled,
	}, nil
}

// ScannedFile is one discovered Markdown file's content and checksum.
type ScannedFile struct {
	// RelPath is slash-separated and relative to the root of the loader's fs.FS.
	RelPath  string
	Source   []byte
	Checksum string
	ModTime  int64
}

// LoadFile reads a single file relative to the root of the loader's fs.FS.
func (l *Loader) LoadFile(ctx context.Context, relPath string) (*ScannedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.ToSlash(filepath.Clean(relPath))
	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	return &ScannedFile{
		RelPath:  rel,
		Source:   data,
		Checksum: checksum(data),
		ModTime:  info.ModTime().Unix(),
	}, nil
}

// ScanDirectory walks the loader's base path and returns every matching,
// non-ignored file, sorted lexicographically by relative path so callers get
// a deterministic processing order.
func (l *Loader) ScanDirectory(ctx context.Context) ([]*ScannedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*ScannedFile

	walkErr := fs.WalkDir(l.fs, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel := filepath.ToSlash(path)

		if d.IsDir() {
			if rel != "." && l.isIgnored(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if l.isIgnored(rel) || !l.matchesPattern(rel) {
			return nil
		}

		file, err := l.LoadFile(ctx, rel)
		if err != nil {
			return err
		}
		results = append(results, file)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RelPath < results[j].RelPath
	})

	return results, nil
}

func (l *Loader) matchesPattern(path string) bool {
	match, err := filepath.Match(l.pattern, filepath.Base(path))
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) isIgnored(path string) bool {
	for _, g := range l.ignoreGlobs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
