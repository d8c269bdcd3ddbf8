package markdown

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestParserFillsDefaultsWhenFrontMatterOmitsThem(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewParser("note")
	p.Now = fixedClock(clock)

	raw := []byte("No frontmatter here, just a title-worthy file.\n")

	doc, err := p.Parse("notes/search-design.md", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Title != "Search Design" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.Type != "note" {
		t.Fatalf("type = %q", doc.Type)
	}
	if doc.Permalink != "notes/search-design" {
		t.Fatalf("permalink = %q", doc.Permalink)
	}
	if !doc.Created.Equal(clock) {
		t.Fatalf("created = %v, want %v", doc.Created, clock)
	}
	if !doc.Modified.Equal(clock) {
		t.Fatalf("modified = %v, want %v", doc.Modified, clock)
	}
}

func TestParserHonoursExplicitFrontMatter(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewParser("note")
	p.Now = fixedClock(clock)

	raw := []byte(`---
title: Custom Title
type: project
permalink: custom/path
created: 2024-01-01T00:00:00Z
tags:
  - one
  - two
---

## Observations

- [tech] Something #infra
`)

	doc, err := p.Parse("whatever/path.md", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Title != "Custom Title" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.Type != "project" {
		t.Fatalf("type = %q", doc.Type)
	}
	if doc.Permalink != "custom/path" {
		t.Fatalf("permalink = %q", doc.Permalink)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !doc.Created.Equal(want) {
		t.Fatalf("created = %v, want %v", doc.Created, want)
	}
	if !doc.Modified.Equal(clock) {
		t.Fatalf("modified should default to clock, got %v", doc.Modified)
	}
	if len(doc.Tags) != 2 {
		t.Fatalf("tags = %v", doc.Tags)
	}
	if len(doc.Observations) != 1 {
		t.Fatalf("expected 1 observation, got %+v", doc.Observations)
	}
}

func TestParserInvalidCreatedDateFallsBackToClock(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewParser("note")
	p.Now = fixedClock(clock)

	raw := []byte(`---
title: Bad Date
created: not-a-real-date-at-all
---

body
`)

	doc, err := p.Parse("bad.md", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.Created.Equal(clock) {
		t.Fatalf("expected fallback to clock, got %v", doc.Created)
	}
}

func TestPermalinkFromPathNormalisesSegments(t *testing.T) {
	got := permalinkFromPath("Notes/My Great Idea.md")
	if got != "notes/my-great-idea" {
		t.Fatalf("permalinkFromPath = %q", got)
	}
}
