// Package resolver maps the free-text target of a `[[Link]]` reference to a
// concrete entity permalink, trying progressively looser matches until one
// succeeds.
package resolver

import (
	"context"
	"strings"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// Resolver implements interfaces.LinkResolver over a graph store and search
// index, running the five-step resolution order: exact permalink, exact
// file path, normalized permalink, case-insensitive title (ties broken by
// most-recently-updated), and finally a glob pattern search.
type Resolver struct {
	store interfaces.GraphStore
	index interfaces.SearchIndex
}

var _ interfaces.LinkResolver = (*Resolver)(nil)

// New constructs a Resolver over an already-migrated graph store and search
// index.
func New(store interfaces.GraphStore, index interfaces.SearchIndex) *Resolver {
	return &Resolver{store: store, index: index}
}

// Resolve implements interfaces.LinkResolver.
func (r *Resolver) Resolve(ctx context.Context, linkText string) (string, bool, error) {
	target := strings.TrimSpace(linkText)
	if target == "" {
		return "", false, nil
	}

	if e, ok, err := r.byPermalink(ctx, target); ok || err != nil {
		return e, ok, err
	}
	if e, ok, err := r.byFilePath(ctx, target); ok || err != nil {
		return e, ok, err
	}
	if e, ok, err := r.byNormalizedPermalink(ctx, target); ok || err != nil {
		return e, ok, err
	}
	if e, ok, err := r.byTitle(ctx, target); ok || err != nil {
		return e, ok, err
	}
	return r.byPattern(ctx, target)
}

func (r *Resolver) byPermalink(ctx context.Context, target string) (string, bool, error) {
	e, err := r.store.GetEntityByPermalink(ctx, target)
	if err == nil {
		return e.Permalink, true, nil
	}
	if interfaces.IsNotFound(err) {
		return "", false, nil
	}
	return "", false, err
}

func (r *Resolver) byFilePath(ctx context.Context, target string) (string, bool, error) {
	e, err := r.store.GetEntityByFilePath(ctx, target)
	if err == nil {
		return e.Permalink, true, nil
	}
	if interfaces.IsNotFound(err) {
		return "", false, nil
	}
	return "", false, err
}

func (r *Resolver) byNormalizedPermalink(ctx context.Context, target string) (string, bool, error) {
	normalized := markdown.NormalizePermalink(target)
	if normalized == target {
		// Already tried verbatim in byPermalink; avoid a duplicate lookup.
		return "", false, nil
	}
	e, err := r.store.GetEntityByPermalink(ctx, normalized)
	if err == nil {
		return e.Permalink, true, nil
	}
	if interfaces.IsNotFound(err) {
		return "", false, nil
	}
	return "", false, err
}

func (r *Resolver) byTitle(ctx context.Context, target string) (string, bool, error) {
	entities, err := r.store.ListEntities(ctx)
	if err != nil {
		return "", false, err
	}
	lower := strings.ToLower(target)
	var best interfaces.Entity
	found := false
	for _, e := range entities {
		if strings.ToLower(e.Title) != lower {
			continue
		}
		if !found || e.Modified.After(best.Modified) {
			best = e
			found = true
		}
	}
	if !found {
		return "", false, nil
	}
	return best.Permalink, true, nil
}

// patternSearchLimit is generous enough that a handful of entity,
// observation, and relation rows sharing the same permalink still collapse
// to a correct ambiguity check after deduplication.
const patternSearchLimit = 50

func (r *Resolver) byPattern(ctx context.Context, target string) (string, bool, error) {
	results, err := r.index.Search(ctx, interfaces.SearchQuery{PermalinkGlob: target, Limit: patternSearchLimit})
	if err != nil {
		return "", false, err
	}
	permalinks := uniquePermalinks(results)
	if len(permalinks) != 1 {
		return "", false, nil
	}
	return permalinks[0], true, nil
}

func uniquePermalinks(results []interfaces.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var out []string
	for _, res := range results {
		if _, ok := seen[res.Permalink]; ok {
			continue
		}
		seen[res.Permalink] = struct{}{}
		out = append(out, res.Permalink)
	}
	return out
}
