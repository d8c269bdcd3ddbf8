package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

var bodyEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// observationPattern matches "- [category] content #tag1 #tag2 (context)".
// Trailing tags and context are optional; the bracketed category is
// required, so a bullet without one is not an observation.
var observationPattern = regexp.MustCompile(`^\[([A-Za-z][\w-]*)\]\s*(.+)$`)

// relationPattern matches "- relation type [[Target]] (context)". The
// relation type is a free-text verb phrase ("relates to", "is used by"),
// not a single token, so it allows multiple whitespace-separated words.
var relationPattern = regexp.MustCompile(`^([A-Za-z][\w-]*(?:\s+[A-Za-z][\w-]*)*)\s+\[\[([^\]]+)\]\]\s*(\(.*\))?\s*$`)

// trailingContextPattern extracts a parenthesised trailing annotation.
var trailingContextPattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

// tagPattern extracts inline #hashtag tokens.
var tagPattern = regexp.MustCompile(`#([\w-]+)`)

// scanBody walks the Markdown body's list structure and classifies each
// top-level list item as an observation, a relation, or plain prose,
// matching the same grammar the original parser enforced. An item that
// contains `[[` with no closing `]]` produces a line-scoped
// *interfaces.ParseError instead of aborting the scan; any other item that
// matches neither grammar (including one with `]]` but no opening `[[`) is
// treated as prose and produces no error.
func scanBody(body []byte) ([]interfaces.ParsedObservation, []interfaces.ParsedRelation, []*interfaces.ParseError) {
	reader := gmtext.NewReader(body)
	root := bodyEngine.Parser().Parse(reader)

	var observations []interfaces.ParsedObservation
	var relations []interfaces.ParsedRelation
	var errs []*interfaces.ParseError

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := listItemText(item, body)
		if line == "" {
			return ast.WalkSkipChildren, nil
		}

		lineNo := lineNumber(body, item)

		if m := observationPattern.FindStringSubmatch(line); m != nil {
			obs, err := parseObservation(m[1], m[2])
			if err != nil {
				errs = append(errs, &interfaces.ParseError{Line: lineNo, Message: err.Error()})
			} else {
				observations = append(observations, obs)
			}
			return ast.WalkSkipChildren, nil
		}

		if m := relationPattern.FindStringSubmatch(line); m != nil {
			relations = append(relations, interfaces.ParsedRelation{
				RelationType: m[1],
				TargetName:   strings.TrimSpace(m[2]),
				Context:      trimParens(m[3]),
			})
			return ast.WalkSkipChildren, nil
		}

		if strings.Contains(line, "[[") && !strings.Contains(line, "]]") {
			errs = append(errs, &interfaces.ParseError{Line: lineNo, Message: "unterminated relation link: missing closing ]]"})
		}

		return ast.WalkSkipChildren, nil
	})

	return observations, relations, errs
}

func parseObservation(category, rest string) (interfaces.ParsedObservation, error) {
	content := rest
	context := ""

	if m := trailingContextPattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
		context = m[2]
	}

	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		tags = append(tags, m[1])
	}
	content = strings.TrimSpace(tagPattern.ReplaceAllString(content, ""))
	content = strings.Join(strings.Fields(content), " ")

	return interfaces.ParsedObservation{
		Category: category,
		Content:  content,
		Tags:     tags,
		Context:  context,
	}, nil
}

func trimParens(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.TrimSpace(s)
}

// listItemText reconstructs the raw single-line text of a list item from
// its source segments, skipping any nested list. The caller does not descend
// into list items, so nested sub-items are not classified.
func listItemText(item *ast.ListItem, source []byte) string {
	var b strings.Builder
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, isList := child.(*ast.List); isList {
			continue
		}
		lines := child.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
	}
	return strings.TrimSpace(b.String())
}

func lineNumber(source []byte, node ast.Node) int {
	var offset int
	switch n := node.(type) {
	case *ast.ListItem:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			lines := child.Lines()
			if lines.Len() > 0 {
				offset = lines.At(0).Start
				break
			}
		}
	}
	return strings.Count(string(source[:offset]), "\n") + 1
}
