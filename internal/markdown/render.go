package markdown

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// Renderer implements interfaces.MarkdownRenderer, re-serialising a Document
// into Markdown bytes that reproduce the same structured fields when parsed
// again (the round-trip rule).
type Renderer struct{}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// Render assembles frontmatter, the stored body, and any store-only
// observations/relations into Markdown source.
func (Renderer) Render(doc *interfaces.Document) ([]byte, error) {
	var b strings.Builder

	frontMatter := buildFrontMatterMap(doc)
	encoded, err := yaml.Marshal(frontMatter)
	if err != nil {
		return nil, fmt.Errorf("markdown render frontmatter: %w", err)
	}

	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimRight(doc.Body, "\n"))
	b.WriteString("\n")

	inline := inlineSets(doc.Body)

	var appendix strings.Builder
	for _, obs := range doc.Observations {
		if inline.observations[observationKey(obs)] {
			continue
		}
		appendix.WriteString(renderObservationLine(obs))
		appendix.WriteString("\n")
	}
	for _, rel := range doc.Relations {
		if inline.relations[relationKey(rel)] {
			continue
		}
		appendix.WriteString(renderRelationLine(rel))
		appendix.WriteString("\n")
	}

	if appendix.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(appendix.String())
	}

	return []byte(b.String()), nil
}

func buildFrontMatterMap(doc *interfaces.Document) map[string]any {
	out := make(map[string]any, len(doc.RawFrontMatter)+6)
	for k, v := range doc.RawFrontMatter {
		out[k] = v
	}
	out["title"] = doc.Title
	out["type"] = doc.Type
	out["permalink"] = doc.Permalink
	if !doc.Created.IsZero() {
		out["created"] = doc.Created.Format("2006-01-02T15:04:05Z07:00")
	}
	if !doc.Modified.IsZero() {
		out["modified"] = doc.Modified.Format("2006-01-02T15:04:05Z07:00")
	}
	if len(doc.Tags) > 0 {
		tags := append([]string(nil), doc.Tags...)
		sort.Strings(tags)
		out["tags"] = tags
	}
	return out
}

func renderObservationLine(obs interfaces.ParsedObservation) string {
	var b strings.Builder
	b.WriteString("- [")
	b.WriteString(obs.Category)
	b.WriteString("] ")
	b.WriteString(obs.Content)
	for _, tag := range obs.Tags {
		b.WriteString(" #")
		b.WriteString(tag)
	}
	if obs.Context != "" {
		b.WriteString(" (")
		b.WriteString(obs.Context)
		b.WriteString(")")
	}
	return b.String()
}

func renderRelationLine(rel interfaces.ParsedRelation) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(rel.RelationType)
	b.WriteString(" [[")
	b.WriteString(rel.TargetName)
	b.WriteString("]]")
	if rel.Context != "" {
		b.WriteString(" (")
		b.WriteString(rel.Context)
		b.WriteString(")")
	}
	return b.String()
}

// inlineSets re-scans body for the observations/relations it already
// contains so the renderer only appends the ones that are store-only.
type inlineKeySets struct {
	observations map[string]bool
	relations    map[string]bool
}

func inlineSets(body string) inlineKeySets {
	obs, rels, _ := scanBody([]byte(body))
	sets := inlineKeySets{
		observations: make(map[string]bool, len(obs)),
		relations:    make(map[string]bool, len(rels)),
	}
	for _, o := range obs {
		sets.observations[observationKey(o)] = true
	}
	for _, r := range rels {
		sets.relations[relationKey(r)] = true
	}
	return sets
}

func observationKey(o interfaces.ParsedObservation) string {
	return o.Category + "\x00" + o.Content
}

func relationKey(r interfaces.ParsedRelation) string {
	return r.RelationType + "\x00" + r.TargetName
}
