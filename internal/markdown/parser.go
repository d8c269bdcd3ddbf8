package markdown

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// Parser implements interfaces.MarkdownParser by combining frontmatter
// decoding with the body's observation/relation scan, filling in any
// recognised frontmatter field the file itself left blank.
type Parser struct {
	// DefaultEntityType is used when a file's frontmatter omits `type`.
	DefaultEntityType string
	// Now supplies the clock used for `created`/`modified` defaults and is
	// overridable in tests; defaults to time.Now when nil.
	Now func() time.Time
}

// NewParser constructs a Parser with the supplied default entity type.
func NewParser(defaultEntityType string) *Parser {
	return &Parser{DefaultEntityType: defaultEntityType}
}

var _ interfaces.MarkdownParser = (*Parser)(nil)

// Parse implements interfaces.MarkdownParser.
func (p *Parser) Parse(path string, raw []byte) (*interfaces.Document, error) {
	fm, body, err := parseFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	clock := now()

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = titleFromPath(path)
	}

	entityType := strings.TrimSpace(fm.Type)
	if entityType == "" {
		entityType = p.DefaultEntityType
	}

	permalink := strings.TrimSpace(fm.Permalink)
	if permalink == "" {
		permalink = permalinkFromPath(path)
	}

	created := clock
	if fm.Created != "" {
		if t, err := ParseFlexibleDate(fm.Created, clock); err == nil {
			created = t
		}
	}

	modified := clock
	if fm.Modified != "" {
		if t, err := ParseFlexibleDate(fm.Modified, clock); err == nil {
			modified = t
		}
	}

	observations, relations, parseErrs := scanBody(body)

	doc := &interfaces.Document{
		FilePath:       path,
		LastModified:   clock,
		Title:          title,
		Type:           entityType,
		Permalink:      permalink,
		Created:        created,
		Modified:       modified,
		Tags:           append([]string(nil), fm.Tags...),
		RawFrontMatter: fm.Raw,
		Body:           string(body),
		Observations:   observations,
		Relations:      relations,
		Errors:         parseErrs,
	}
	for _, e := range doc.Errors {
		e.Path = path
	}

	return doc, nil
}

func titleFromPath(path string) string {
	return TitleFromPath(path)
}

// TitleFromPath derives a human-readable title from a file's base name,
// replacing separators with spaces and title-casing the result. The sync
// engine reuses this for opaque (non-Markdown) entities, which have no
// frontmatter to supply a title.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.Title(base) //nolint:staticcheck // simple ASCII title-casing is sufficient here
}

func permalinkFromPath(path string) string {
	return DerivePermalink(path)
}

// DerivePermalink derives a stable permalink from a repo-relative file path
// by stripping its extension and normalizing each path segment. The sync
// engine reuses this for non-Markdown (opaque) files and for recomputing a
// moved file's permalink without reparsing its contents.
func DerivePermalink(path string) string {
	rel := strings.TrimSuffix(filepath.ToSlash(path), filepath.Ext(path))
	return NormalizePermalink(rel)
}

// NormalizePermalink applies the same per-segment slug normalization used to
// derive a permalink from a file path to an arbitrary `/`-joined string,
// lowercasing, replacing non-alphanumerics with `-`, and collapsing runs in
// each segment. The link resolver reuses it to normalize free-text link
// targets before matching them against stored permalinks.
func NormalizePermalink(s string) string {
	segments := strings.Split(filepath.ToSlash(s), "/")
	for i, seg := range segments {
		segments[i] = slug.Normalize(seg)
	}
	return strings.Join(segments, "/")
}
