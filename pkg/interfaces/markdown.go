package interfaces

import "time"

// Document is the fully-parsed representation of one Markdown file: its
// recognised frontmatter, body prose, and the observations/relations
// extracted from its bullet lists.
type Document struct {
	FilePath     string
	Checksum     string
	LastModified time.Time

	Title     string
	Type      EntityType
	Permalink string
	Created   time.Time
	Modified  time.Time
	Tags      []string
	// RawFrontMatter holds every frontmatter key as parsed, including those
	// also mapped onto the recognised fields above, preserved for the
	// round-trip renderer.
	RawFrontMatter map[string]any

	Body         string
	Observations []ParsedObservation
	Relations    []ParsedRelation

	// Errors accumulates line-scoped parse problems; a non-empty slice does
	// not mean the document was rejected, only that some lines could not be
	// understood.
	Errors []*ParseError
}

// ParsedObservation is an observation as scanned from a file, before it is
// attached to a persisted entity ID.
type ParsedObservation struct {
	Category ObservationCategory
	Content  string
	Tags     []string
	Context  string
}

// ParsedRelation is a relation as scanned from a file, before its target is
// resolved to a persisted entity ID.
type ParsedRelation struct {
	RelationType RelationType
	TargetName   string
	Context      string
}

// MarkdownParser converts raw Markdown bytes into a structured Document.
type MarkdownParser interface {
	Parse(path string, raw []byte) (*Document, error)
}

// MarkdownRenderer re-serialises a Document (frontmatter, body, and any
// store-only observations/relations) back into Markdown bytes, satisfying
// the round-trip rule: re-parsing the rendered output reproduces the same
// structured fields.
type MarkdownRenderer interface {
	Render(doc *Document) ([]byte, error)
}
