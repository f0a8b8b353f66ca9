package symbols

import (
	"regexp"
	"strings"
)

// docTag is one parsed `@tag ...` line out of a doc comment.
type docTag struct {
	Tag  string
	Type string
	Name string
	Rest string
}

var docTagPattern = regexp.MustCompile(`(?m)^\s*\*?\s*@(\w+)\s*(.*)$`)

// parseDocTags scans a doc comment body for `@param`, `@return`, `@var`,
// `@property`, and `@method` tags (§4.4). Each tag's free-form remainder
// is split on whitespace into an optional leading type expression and
// name, following the subject grammar's `@tag Type $name description`
// convention; `@return` has no name, only a type.
func parseDocTags(doc string) []docTag {
	var tags []docTag
	for _, m := range docTagPattern.FindAllStringSubmatch(doc, -1) {
		tag := strings.ToLower(m[1])
		rest := strings.TrimSpace(m[2])
		fields := strings.Fields(rest)

		var typ, name string
		switch tag {
		case "return":
			if len(fields) > 0 {
				typ = fields[0]
			}
		case "param", "var", "property", "property-read", "property-write", "method":
			if len(fields) > 0 {
				typ = fields[0]
				if len(fields) > 1 && strings.HasPrefix(fields[1], "$") {
					name = strings.TrimPrefix(fields[1], "$")
				}
			}
		}

		tags = append(tags, docTag{Tag: tag, Type: typ, Name: name, Rest: rest})
	}
	return tags
}

// stripCommentMarkers trims the subject grammar's comment delimiters so
// doc tag text doesn't carry leading `*`s or `/** */` fencing.
func stripCommentMarkers(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSuffix(text, "*/")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// isDocComment reports whether a comment's raw text looks like a
// documentation comment (`/** ... */`) as opposed to a plain `//` or
// `/* */` comment — only doc comments attach to declarations (§4.4).
func isDocComment(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "/**")
}
