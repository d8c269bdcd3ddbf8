// Package markdown parses and renders the Markdown files that back the
// knowledge graph: frontmatter, body prose, and the observation/relation
// bullet lists embedded in each file.
package markdown
