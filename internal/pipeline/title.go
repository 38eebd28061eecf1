package pipeline

import "strings"

// DefaultTitle is used when a document has no level-1 heading.
const DefaultTitle = "Document"

// ResolveTitle returns the text of the first line that starts with "# "
// once trimmed, or DefaultTitle. Deeper headings never match.
func ResolveTitle(markdown string) string {
	for line := range strings.Lines(markdown) {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return DefaultTitle
}
