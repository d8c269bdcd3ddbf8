package contextbuilder

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evolv3ai/basic-memory/internal/markdown"
	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

const defaultMaxResults = 50

// ParseURI parses a `memory://` reference into a ContextRequest, following
// spec.md §4.6's grammar: a concrete permalink, a glob pattern containing
// `*`, or the special `recent` path with `type`/`depth`/`timeframe`/
// `max_results` query parameters.
func ParseURI(raw string, now time.Time) (interfaces.ContextRequest, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "memory://")
	if trimmed == "" {
		return interfaces.ContextRequest{}, fmt.Errorf("contextbuilder: empty memory:// uri")
	}

	path := trimmed
	query := ""
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		path = trimmed[:i]
		query = trimmed[i+1:]
	}
	path = strings.Trim(path, "/")

	values, err := url.ParseQuery(query)
	if err != nil {
		return interfaces.ContextRequest{}, fmt.Errorf("contextbuilder: invalid query in %q: %w", raw, err)
	}

	req := interfaces.ContextRequest{
		Depth:      2,
		MaxResults: defaultMaxResults,
		Timeframe:  values.Get("timeframe"),
		EntityType: values.Get("type"),
	}

	if d := values.Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return interfaces.ContextRequest{}, fmt.Errorf("contextbuilder: invalid depth %q", d)
		}
		req.Depth = n
	}
	if m := values.Get("max_results"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n <= 0 {
			return interfaces.ContextRequest{}, fmt.Errorf("contextbuilder: invalid max_results %q", m)
		}
		req.MaxResults = n
	}

	switch {
	case path == "recent":
		req.Mode = interfaces.ContextModeRecent
	case values.Get("type") == "related":
		req.Mode = interfaces.ContextModeRelated
		req.Depth = 1
		req.Target = markdown.NormalizePermalink(path)
	case strings.ContainsAny(path, "*"):
		req.Mode = interfaces.ContextModeGlob
		req.Target = path
	default:
		req.Mode = interfaces.ContextModeExact
		req.Target = markdown.NormalizePermalink(path)
	}

	return req, nil
}

// SinceFromTimeframe resolves a ContextRequest's raw timeframe string into
// an absolute cutoff, using the same flexible date grammar the Markdown
// Parser uses for frontmatter dates. An empty timeframe means no cutoff.
func SinceFromTimeframe(timeframe string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(timeframe) == "" {
		return time.Time{}, nil
	}
	return markdown.ParseFlexibleDate(timeframe, now)
}
