package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// frontMatterEnvelope captures the recognised frontmatter keys plus an
// inline map for anything else, mirroring the way entity_parser.py treats
// title/type/permalink/created/modified/tags as known fields and leaves the
// rest untouched.
//
// Tags decodes into `any` rather than []string because the frontmatter may
// write tags either as a YAML sequence or as a single comma-separated
// scalar; normalizeTags reconciles both forms the way entity_parser.py's
// parse_tags does.
type frontMatterEnvelope struct {
	Title     string         `yaml:"title"`
	Type      string         `yaml:"type"`
	Permalink string         `yaml:"permalink"`
	Created   string         `yaml:"created"`
	Modified  string         `yaml:"modified"`
	Tags      any            `yaml:"tags"`
	Custom    map[string]any `yaml:",inline"`
}

// normalizeTags accepts either a YAML sequence or a comma-separated scalar
// for the tags field, trimming whitespace and dropping empty entries in
// both cases. Any other shape yields no tags rather than an error, since a
// malformed tags value should not fail the whole file's parse.
func normalizeTags(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		var tags []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	case []any:
		var tags []string
		for _, item := range v {
			if trimmed := strings.TrimSpace(fmt.Sprint(item)); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	case []string:
		var tags []string
		for _, item := range v {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	default:
		return nil
	}
}

// parsedFrontMatter is the envelope decoded from one file, before defaults
// are applied.
type parsedFrontMatter struct {
	Title     string
	Type      string
	Permalink string
	Created   string
	Modified  string
	Tags      []string
	Raw       map[string]any
}

// parseFrontMatter extracts YAML frontmatter and the remaining Markdown
// body from source bytes. A file with no frontmatter delimiters returns a
// zero-value frontmatter and the full source as body.
func parseFrontMatter(source []byte) (parsedFrontMatter, []byte, error) {
	var env frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return parsedFrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	tags := normalizeTags(env.Tags)

	raw := cloneMap(env.Custom)
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Type != "" {
		raw["type"] = env.Type
	}
	if env.Permalink != "" {
		raw["permalink"] = env.Permalink
	}
	if env.Created != "" {
		raw["created"] = env.Created
	}
	if env.Modified != "" {
		raw["modified"] = env.Modified
	}
	if len(tags) > 0 {
		raw["tags"] = append([]string(nil), tags...)
	}

	return parsedFrontMatter{
		Title:     env.Title,
		Type:      env.Type,
		Permalink: env.Permalink,
		Created:   env.Created,
		Modified:  env.Modified,
		Tags:      tags,
		Raw:       raw,
	}, body, nil
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
